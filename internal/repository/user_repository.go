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

// hidePassword excludes the password hash from the standard read path.
// Authentication goes through GetCredentialsByEmail instead.
var hidePassword = bson.M{"hashed_password": 0}

// UserRepository handles database operations related to users.
type UserRepository struct {
	collection *mongo.Collection
}

// NewUserRepository creates a new instance of UserRepository.
func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{
		collection: db.Collection("users"),
	}
}

// CreateUser inserts a new user into the database.
func (r *UserRepository) CreateUser(ctx context.Context, user *models.User) (*models.User, error) {
	user.CreatedAt = time.Now()
	user.UpdatedAt = time.Now()

	result, err := r.collection.InsertOne(ctx, user)
	if err != nil {
		logrus.WithError(err).Error("Failed to insert user into database")
		return nil, apperror.ErrUnavailable
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		logrus.Error("Failed to cast inserted ID to ObjectID")
		return nil, apperror.ErrUnavailable
	}
	user.ID = insertedID

	logrus.WithField("userID", user.ID.Hex()).Info("User inserted successfully")
	return user, nil
}

// GetUserByID retrieves a user by their ID, without the password hash.
func (r *UserRepository) GetUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

// GetUserByEmail retrieves a user by email, without the password hash.
func (r *UserRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

// GetUserByVerifyToken retrieves a user by their email verification token.
func (r *UserRepository) GetUserByVerifyToken(ctx context.Context, token string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"verify_token": token})
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	var user models.User
	opts := options.FindOne().SetProjection(hidePassword)
	err := r.collection.FindOne(ctx, filter, opts).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperror.ErrNotFound
		}
		logrus.WithError(err).Warn("Failed to find user")
		return nil, apperror.ErrUnavailable
	}
	return &user, nil
}

// GetCredentialsByEmail retrieves a user including the password hash.
// This is the only accessor that exposes the hash; it exists solely for
// authentication checks.
func (r *UserRepository) GetCredentialsByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.collection.FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperror.ErrNotFound
		}
		logrus.WithError(err).Warn("Failed to find user credentials")
		return nil, apperror.ErrUnavailable
	}
	return &user, nil
}

// UpdateUser applies a partial update to a user's fields.
func (r *UserRepository) UpdateUser(ctx context.Context, id primitive.ObjectID, fields map[string]interface{}) (*models.User, error) {
	fields["updated_at"] = time.Now()
	opts := options.FindOneAndUpdate().
		SetReturnDocument(options.After).
		SetProjection(hidePassword)

	var user models.User
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": fields}, opts).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperror.ErrNotFound
		}
		logrus.WithError(err).WithField("userID", id.Hex()).Error("Failed to update user")
		return nil, apperror.ErrUnavailable
	}

	logrus.WithField("userID", id.Hex()).Info("User updated successfully")
	return &user, nil
}

// FindVerifiedExcept fetches all verified users except the given one,
// typically the donor of a listing being announced.
func (r *UserRepository) FindVerifiedExcept(ctx context.Context, except primitive.ObjectID) ([]models.User, error) {
	filter := bson.M{
		"is_verified": true,
		"_id":         bson.M{"$ne": except},
	}

	opts := options.Find().SetProjection(hidePassword)
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		logrus.WithError(err).Error("Failed to fetch verified users")
		return nil, apperror.ErrUnavailable
	}
	defer cursor.Close(ctx)

	var users []models.User
	for cursor.Next(ctx) {
		var user models.User
		if err := cursor.Decode(&user); err != nil {
			logrus.WithError(err).Error("Failed to decode user")
			return nil, apperror.ErrUnavailable
		}
		users = append(users, user)
	}

	return users, nil
}
