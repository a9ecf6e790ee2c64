package services

import (
	"context"
	"time"

	"github.com/Dias221467/FoodShare/internal/models"
	"github.com/Dias221467/FoodShare/pkg/apperror"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// maxExpiryAhead bounds how far into the future a listing may expire.
const maxExpiryAhead = 30 * 24 * time.Hour

// ListingService encapsulates the business logic for food listings,
// including the claim transition.
type ListingService struct {
	repo     ListingStore
	userRepo UserStore
}

// NewListingService creates a new instance of ListingService.
func NewListingService(repo ListingStore, userRepo UserStore) *ListingService {
	return &ListingService{
		repo:     repo,
		userRepo: userRepo,
	}
}

// CreateListingInput carries the donor-supplied fields of a new listing.
type CreateListingInput struct {
	Title          string          `json:"title"`
	Description    string          `json:"description"`
	FoodType       string          `json:"food_type"`
	Quantity       string          `json:"quantity"`
	ExpiryDateTime time.Time       `json:"expiry_date_time"`
	DietaryInfo    []string        `json:"dietary_info"`
	Allergens      []string        `json:"allergens"`
	PickupLocation models.Location `json:"pickup_location"`
	Images         []string        `json:"images"`
}

// CreateListing validates the input and persists a new available listing.
// Only donors with a verified email may post.
func (s *ListingService) CreateListing(ctx context.Context, donorID primitive.ObjectID, input CreateListingInput) (*models.Listing, error) {
	donor, err := s.userRepo.GetUserByID(ctx, donorID)
	if err != nil {
		return nil, err
	}
	if !donor.IsVerified {
		logrus.WithField("userID", donorID.Hex()).Warn("Unverified user attempted to create a listing")
		return nil, apperror.ErrNotVerified
	}

	if err := validateListingInput(input, time.Now()); err != nil {
		return nil, err
	}

	listing := &models.Listing{
		DonorID:        donorID,
		Title:          input.Title,
		Description:    input.Description,
		FoodType:       input.FoodType,
		Quantity:       input.Quantity,
		ExpiryDateTime: input.ExpiryDateTime,
		DietaryInfo:    input.DietaryInfo,
		Allergens:      input.Allergens,
		PickupLocation: input.PickupLocation,
		Images:         input.Images,
		Status:         models.StatusAvailable,
	}

	created, err := s.repo.CreateListing(ctx, listing)
	if err != nil {
		logrus.WithError(err).Error("Failed to create listing")
		return nil, err
	}

	return created, nil
}

// GetListing retrieves a single listing by its hex ID.
func (s *ListingService) GetListing(ctx context.Context, id string) (*models.Listing, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, apperror.Validation("id", "invalid listing id")
	}
	return s.repo.GetListingByID(ctx, objID)
}

// ClaimListing transitions an available listing to claimed on behalf of
// the claimant. Exactly one concurrent claimant succeeds; the rest get
// ErrConflict. Claiming your own listing is not prevented here.
func (s *ListingService) ClaimListing(ctx context.Context, id string, claimantID primitive.ObjectID) (*models.Listing, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, apperror.Validation("id", "invalid listing id")
	}

	listing, err := s.repo.ClaimListing(ctx, objID, claimantID)
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"listing_id": listing.ID.Hex(),
		"user_id":    claimantID.Hex(),
	}).Info("Listing claimed")
	return listing, nil
}

// UpdateListing applies a content update to a listing owned by the caller.
// Status and claimant are not updatable through this path.
func (s *ListingService) UpdateListing(ctx context.Context, id string, callerID primitive.ObjectID, updates map[string]interface{}) (*models.Listing, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, apperror.Validation("id", "invalid listing id")
	}

	listing, err := s.repo.GetListingByID(ctx, objID)
	if err != nil {
		return nil, err
	}
	if listing.DonorID != callerID {
		return nil, apperror.ErrForbidden
	}

	fields, err := normalizeListingUpdates(updates)
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, apperror.Validation("updates", "no updatable fields provided")
	}

	return s.repo.UpdateListing(ctx, objID, fields)
}

// normalizeListingUpdates coerces the updatable fields to their stored
// types and enforces the same bounds as listing creation. Unknown fields
// are ignored; a known field with a bad type or value is rejected.
func normalizeListingUpdates(updates map[string]interface{}) (map[string]interface{}, error) {
	fields := map[string]interface{}{}

	for _, name := range []string{"title", "description", "food_type", "quantity"} {
		value, ok := updates[name]
		if !ok {
			continue
		}
		str, ok := value.(string)
		if !ok {
			return nil, apperror.Validation(name, "must be a string")
		}
		fields[name] = str
	}

	for _, name := range []string{"dietary_info", "allergens", "images"} {
		value, ok := updates[name]
		if !ok {
			continue
		}
		list, err := toStringSlice(name, value)
		if err != nil {
			return nil, err
		}
		fields[name] = list
	}

	if title, ok := fields["title"].(string); ok {
		if err := validateTitle(title); err != nil {
			return nil, err
		}
	}
	if description, ok := fields["description"].(string); ok {
		if err := validateDescription(description); err != nil {
			return nil, err
		}
	}
	if foodType, ok := fields["food_type"].(string); ok {
		if err := validateFoodType(foodType); err != nil {
			return nil, err
		}
	}
	if quantity, ok := fields["quantity"].(string); ok {
		if err := validateQuantity(quantity); err != nil {
			return nil, err
		}
	}

	return fields, nil
}

// toStringSlice accepts both []string and the []interface{} that a JSON
// decode produces.
func toStringSlice(field string, value interface{}) ([]string, error) {
	switch v := value.(type) {
	case []string:
		return v, nil
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, item := range v {
			str, ok := item.(string)
			if !ok {
				return nil, apperror.Validation(field, "must be a list of strings")
			}
			out = append(out, str)
		}
		return out, nil
	case nil:
		return []string{}, nil
	}
	return nil, apperror.Validation(field, "must be a list of strings")
}

// DeleteListing removes a listing owned by the caller. This is the
// owner's administrative delete; expiry never deletes records.
func (s *ListingService) DeleteListing(ctx context.Context, id string, callerID primitive.ObjectID) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return apperror.Validation("id", "invalid listing id")
	}

	listing, err := s.repo.GetListingByID(ctx, objID)
	if err != nil {
		return err
	}
	if listing.DonorID != callerID {
		return apperror.ErrForbidden
	}

	return s.repo.DeleteListing(ctx, objID)
}

// GetListingsByDonor returns all listings posted by the given user.
func (s *ListingService) GetListingsByDonor(ctx context.Context, donorID primitive.ObjectID) ([]models.Listing, error) {
	return s.repo.FindByDonor(ctx, donorID)
}

// GetClaimedListings returns all listings claimed by the given user.
func (s *ListingService) GetClaimedListings(ctx context.Context, userID primitive.ObjectID) ([]models.Listing, error) {
	return s.repo.FindClaimedBy(ctx, userID)
}

func validateListingInput(input CreateListingInput, now time.Time) error {
	if err := validateTitle(input.Title); err != nil {
		return err
	}
	if err := validateDescription(input.Description); err != nil {
		return err
	}
	if err := validateFoodType(input.FoodType); err != nil {
		return err
	}
	if err := validateQuantity(input.Quantity); err != nil {
		return err
	}
	if !input.ExpiryDateTime.After(now) {
		return apperror.Validation("expiry_date_time", "expiry date must be in the future")
	}
	if input.ExpiryDateTime.After(now.Add(maxExpiryAhead)) {
		return apperror.Validation("expiry_date_time", "expiry date cannot be more than 30 days ahead")
	}
	loc := input.PickupLocation
	if !loc.HasCoordinates() {
		return apperror.Validation("pickup_location", "latitude and longitude are required")
	}
	if *loc.Latitude < -90 || *loc.Latitude > 90 {
		return apperror.Validation("pickup_location.latitude", "invalid latitude")
	}
	if *loc.Longitude < -180 || *loc.Longitude > 180 {
		return apperror.Validation("pickup_location.longitude", "invalid longitude")
	}
	if n := len(loc.Address); n < 5 || n > 200 {
		return apperror.Validation("pickup_location.address", "address must be 5-200 characters")
	}
	return nil
}

func validateTitle(title string) error {
	if n := len(title); n < 3 || n > 100 {
		return apperror.Validation("title", "title must be 3-100 characters")
	}
	return nil
}

func validateDescription(description string) error {
	if n := len(description); n < 10 || n > 500 {
		return apperror.Validation("description", "description must be 10-500 characters")
	}
	return nil
}

func validateFoodType(foodType string) error {
	if !models.IsValidFoodType(foodType) {
		return apperror.Validation("food_type", "invalid food type")
	}
	return nil
}

func validateQuantity(quantity string) error {
	if n := len(quantity); n < 1 || n > 50 {
		return apperror.Validation("quantity", "quantity must be 1-50 characters")
	}
	return nil
}
