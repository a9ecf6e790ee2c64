package services

import (
	"context"

	"github.com/Dias221467/FoodShare/internal/models"
	"github.com/Dias221467/FoodShare/pkg/apperror"
	"github.com/Dias221467/FoodShare/pkg/geo"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NotificationService computes which users should be told about a
// listing. Delivery itself is owned by an external mailer consuming this
// result.
type NotificationService struct {
	listingRepo ListingStore
	userRepo    UserStore
}

// NewNotificationService creates a new instance of NotificationService.
func NewNotificationService(listingRepo ListingStore, userRepo UserStore) *NotificationService {
	return &NotificationService{
		listingRepo: listingRepo,
		userRepo:    userRepo,
	}
}

// Recipient is one user eligible for a new-listing notification.
type Recipient struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// ListingSummary identifies the listing recipients are notified about.
type ListingSummary struct {
	ID             primitive.ObjectID `json:"id"`
	Title          string             `json:"title"`
	PickupLocation models.Location    `json:"pickup_location"`
}

// EligibilityResult is the recipient list for one listing.
type EligibilityResult struct {
	Listing    ListingSummary `json:"listing"`
	Recipients []Recipient    `json:"recipients"`
	Count      int            `json:"count"`
}

// EligibleRecipients returns the verified users, excluding the donor, who
// have notifications enabled and live within their configured distance of
// the listing's pickup location. Users without a stored location pass the
// distance check.
func (s *NotificationService) EligibleRecipients(ctx context.Context, listingID string) (*EligibilityResult, error) {
	objID, err := primitive.ObjectIDFromHex(listingID)
	if err != nil {
		return nil, apperror.Validation("id", "invalid listing id")
	}

	listing, err := s.listingRepo.GetListingByID(ctx, objID)
	if err != nil {
		return nil, err
	}

	users, err := s.userRepo.FindVerifiedExcept(ctx, listing.DonorID)
	if err != nil {
		return nil, err
	}

	recipients := make([]Recipient, 0, len(users))
	for _, user := range users {
		if !user.NotificationPreferences.Enabled {
			continue
		}
		if user.Location.HasCoordinates() && listing.PickupLocation.HasCoordinates() {
			distance := geo.DistanceKm(
				*user.Location.Latitude, *user.Location.Longitude,
				*listing.PickupLocation.Latitude, *listing.PickupLocation.Longitude,
			)
			if distance > user.NotificationPreferences.MaxDistance {
				continue
			}
		}
		recipients = append(recipients, Recipient{Name: user.Name, Email: user.Email})
	}

	logrus.WithFields(logrus.Fields{
		"listing_id": listing.ID.Hex(),
		"count":      len(recipients),
	}).Info("Computed notification recipients")

	return &EligibilityResult{
		Listing: ListingSummary{
			ID:             listing.ID,
			Title:          listing.Title,
			PickupLocation: listing.PickupLocation,
		},
		Recipients: recipients,
		Count:      len(recipients),
	}, nil
}
