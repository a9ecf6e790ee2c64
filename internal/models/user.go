package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NotificationPreferences controls which new-listing alerts a user receives.
type NotificationPreferences struct {
	Enabled     bool     `bson:"enabled" json:"enabled"`
	MaxDistance float64  `bson:"max_distance" json:"max_distance"`
	FoodTypes   []string `bson:"food_types,omitempty" json:"food_types,omitempty"`
}

// User represents an account on the food sharing platform.
// HashedPassword and VerifyToken are never serialized to JSON; the
// password is additionally excluded from the standard read path and only
// fetched through the repository's credentials accessor.
type User struct {
	ID                      primitive.ObjectID      `bson:"_id,omitempty" json:"id"`
	Name                    string                  `bson:"name" json:"name"`
	Email                   string                  `bson:"email" json:"email"`
	HashedPassword          string                  `bson:"hashed_password,omitempty" json:"-"`
	Phone                   string                  `bson:"phone,omitempty" json:"phone,omitempty"`
	Location                Location                `bson:"location,omitempty" json:"location"`
	IsVerified              bool                    `bson:"is_verified" json:"is_verified"`
	VerifyToken             string                  `bson:"verify_token,omitempty" json:"-"`
	NotificationPreferences NotificationPreferences `bson:"notification_preferences" json:"notification_preferences"`
	CreatedAt               time.Time               `bson:"created_at" json:"created_at"`
	UpdatedAt               time.Time               `bson:"updated_at" json:"updated_at"`
}

// PublicUser is the minimal user shape embedded in responses about
// other people, e.g. a listing's donor.
type PublicUser struct {
	ID    primitive.ObjectID `json:"id"`
	Name  string             `json:"name"`
	Email string             `json:"email"`
}
