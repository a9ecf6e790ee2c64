package services

import (
	"context"

	"github.com/Dias221467/FoodShare/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ListingStore is the persistence surface the listing services depend on.
// Satisfied by repository.ListingRepository and, in tests, by
// repository.MemoryListingStore.
type ListingStore interface {
	CreateListing(ctx context.Context, listing *models.Listing) (*models.Listing, error)
	GetListingByID(ctx context.Context, id primitive.ObjectID) (*models.Listing, error)
	FindAvailable(ctx context.Context) ([]models.Listing, error)
	ClaimListing(ctx context.Context, id, userID primitive.ObjectID) (*models.Listing, error)
	UpdateListing(ctx context.Context, id primitive.ObjectID, fields map[string]interface{}) (*models.Listing, error)
	DeleteListing(ctx context.Context, id primitive.ObjectID) error
	FindByDonor(ctx context.Context, donorID primitive.ObjectID) ([]models.Listing, error)
	FindClaimedBy(ctx context.Context, userID primitive.ObjectID) ([]models.Listing, error)
}

// UserStore is the persistence surface the user services depend on.
type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) (*models.User, error)
	GetUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByVerifyToken(ctx context.Context, token string) (*models.User, error)
	GetCredentialsByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateUser(ctx context.Context, id primitive.ObjectID, fields map[string]interface{}) (*models.User, error)
	FindVerifiedExcept(ctx context.Context, except primitive.ObjectID) ([]models.User, error)
}

// EmailSender delivers a plain-text email. Delivery failures are treated
// as best-effort by callers.
type EmailSender interface {
	Send(to, subject, body string) error
}
