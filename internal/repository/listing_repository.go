package repository

import (
	"context"
	"errors"
	"time"

	"github.com/Dias221467/FoodShare/internal/models"
	"github.com/Dias221467/FoodShare/pkg/apperror"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ListingRepository handles database operations related to food listings.
type ListingRepository struct {
	collection *mongo.Collection
}

// NewListingRepository creates a new instance of ListingRepository.
func NewListingRepository(db *mongo.Database) *ListingRepository {
	return &ListingRepository{
		collection: db.Collection("listings"),
	}
}

// CreateListing inserts a new listing into the database.
func (r *ListingRepository) CreateListing(ctx context.Context, listing *models.Listing) (*models.Listing, error) {
	listing.CreatedAt = time.Now()
	listing.UpdatedAt = time.Now()
	if listing.Status == "" {
		listing.Status = models.StatusAvailable
	}

	result, err := r.collection.InsertOne(ctx, listing)
	if err != nil {
		logrus.WithError(err).Error("Failed to insert listing")
		return nil, apperror.ErrUnavailable
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		logrus.Error("Failed to cast inserted listing ID")
		return nil, apperror.ErrUnavailable
	}
	listing.ID = insertedID

	logrus.WithField("listing_id", listing.ID.Hex()).Info("Listing created successfully")
	return listing, nil
}

// GetListingByID fetches a listing by its ID.
func (r *ListingRepository) GetListingByID(ctx context.Context, id primitive.ObjectID) (*models.Listing, error) {
	var listing models.Listing

	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&listing)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperror.ErrNotFound
		}
		logrus.WithError(err).WithField("listing_id", id.Hex()).Error("Failed to find listing by ID")
		return nil, apperror.ErrUnavailable
	}

	return &listing, nil
}

// FindAvailable fetches all available listings, newest first.
func (r *ListingRepository) FindAvailable(ctx context.Context) ([]models.Listing, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"status": models.StatusAvailable}, findOptions)
	if err != nil {
		logrus.WithError(err).Error("Failed to fetch available listings")
		return nil, apperror.ErrUnavailable
	}
	defer cursor.Close(ctx)

	var listings []models.Listing
	for cursor.Next(ctx) {
		var listing models.Listing
		if err := cursor.Decode(&listing); err != nil {
			logrus.WithError(err).Error("Failed to decode listing")
			return nil, apperror.ErrUnavailable
		}
		listings = append(listings, listing)
	}

	return listings, nil
}

// ClaimListing atomically transitions an available listing to claimed and
// records the claimant. The status filter makes this a compare-and-set:
// under concurrent claims exactly one caller matches the document, the
// rest observe ErrConflict.
func (r *ListingRepository) ClaimListing(ctx context.Context, id, userID primitive.ObjectID) (*models.Listing, error) {
	filter := bson.M{"_id": id, "status": models.StatusAvailable}
	update := bson.M{"$set": bson.M{
		"status":     models.StatusClaimed,
		"claimed_by": userID,
		"updated_at": time.Now(),
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var listing models.Listing
	err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&listing)
	if err == nil {
		logrus.WithFields(logrus.Fields{
			"listing_id": id.Hex(),
			"user_id":    userID.Hex(),
		}).Info("Listing claimed successfully")
		return &listing, nil
	}

	if !errors.Is(err, mongo.ErrNoDocuments) {
		logrus.WithError(err).WithField("listing_id", id.Hex()).Error("Failed to claim listing")
		return nil, apperror.ErrUnavailable
	}

	// No available document matched: distinguish a missing listing from
	// one that already reached a terminal status.
	if _, err := r.GetListingByID(ctx, id); err != nil {
		return nil, err
	}
	return nil, apperror.ErrConflict
}

// MarkExpired transitions every available listing whose expiry has passed
// to expired in a single bulk update and returns the number transitioned.
func (r *ListingRepository) MarkExpired(ctx context.Context, now time.Time) (int64, error) {
	filter := bson.M{
		"status":           models.StatusAvailable,
		"expiry_date_time": bson.M{"$lt": now},
	}
	update := bson.M{"$set": bson.M{
		"status":     models.StatusExpired,
		"updated_at": now,
	}}

	result, err := r.collection.UpdateMany(ctx, filter, update)
	if err != nil {
		logrus.WithError(err).Error("Failed to mark expired listings")
		return 0, apperror.ErrUnavailable
	}

	return result.ModifiedCount, nil
}

// UpdateListing applies a partial update to a listing's content fields.
func (r *ListingRepository) UpdateListing(ctx context.Context, id primitive.ObjectID, fields map[string]interface{}) (*models.Listing, error) {
	fields["updated_at"] = time.Now()
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var listing models.Listing
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": fields}, opts).Decode(&listing)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperror.ErrNotFound
		}
		logrus.WithError(err).WithField("listing_id", id.Hex()).Error("Failed to update listing")
		return nil, apperror.ErrUnavailable
	}

	logrus.WithField("listing_id", id.Hex()).Info("Listing updated successfully")
	return &listing, nil
}

// DeleteListing removes a listing from the database.
func (r *ListingRepository) DeleteListing(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		logrus.WithError(err).WithField("listing_id", id.Hex()).Error("Failed to delete listing")
		return apperror.ErrUnavailable
	}
	if result.DeletedCount == 0 {
		return apperror.ErrNotFound
	}

	logrus.WithField("listing_id", id.Hex()).Info("Listing deleted successfully")
	return nil
}

// FindByDonor fetches all listings posted by the given user, newest first.
func (r *ListingRepository) FindByDonor(ctx context.Context, donorID primitive.ObjectID) ([]models.Listing, error) {
	return r.findAll(ctx, bson.M{"donor_id": donorID})
}

// FindClaimedBy fetches all listings claimed by the given user, newest first.
func (r *ListingRepository) FindClaimedBy(ctx context.Context, userID primitive.ObjectID) ([]models.Listing, error) {
	return r.findAll(ctx, bson.M{"claimed_by": userID})
}

func (r *ListingRepository) findAll(ctx context.Context, filter bson.M) ([]models.Listing, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		logrus.WithError(err).Error("Failed to fetch listings")
		return nil, apperror.ErrUnavailable
	}
	defer cursor.Close(ctx)

	var listings []models.Listing
	for cursor.Next(ctx) {
		var listing models.Listing
		if err := cursor.Decode(&listing); err != nil {
			logrus.WithError(err).Error("Failed to decode listing")
			return nil, apperror.ErrUnavailable
		}
		listings = append(listings, listing)
	}

	return listings, nil
}
