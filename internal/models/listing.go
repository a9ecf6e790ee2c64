package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Listing statuses. A listing starts out available and moves exactly once
// to claimed or expired; both are terminal.
const (
	StatusAvailable = "available"
	StatusClaimed   = "claimed"
	StatusExpired   = "expired"
)

// FoodTypes is the fixed set of categories a listing must belong to.
var FoodTypes = []string{
	"Vegetables",
	"Fruits",
	"Dairy",
	"Bakery",
	"Cooked Food",
	"Packaged Food",
	"Other",
}

// IsValidFoodType reports whether t is one of the allowed categories.
func IsValidFoodType(t string) bool {
	for _, ft := range FoodTypes {
		if ft == t {
			return true
		}
	}
	return false
}

// Location is a geographic point with a human-readable address.
// Latitude and longitude are pointers so that records without
// coordinates stay representable.
type Location struct {
	Latitude  *float64 `bson:"latitude,omitempty" json:"latitude,omitempty"`
	Longitude *float64 `bson:"longitude,omitempty" json:"longitude,omitempty"`
	Address   string   `bson:"address" json:"address"`
}

// HasCoordinates reports whether both latitude and longitude are set.
func (l Location) HasCoordinates() bool {
	return l.Latitude != nil && l.Longitude != nil
}

// Listing represents a single food donation posted by a donor.
type Listing struct {
	ID             primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	DonorID        primitive.ObjectID  `bson:"donor_id" json:"donor_id"`
	Title          string              `bson:"title" json:"title"`
	Description    string              `bson:"description" json:"description"`
	FoodType       string              `bson:"food_type" json:"food_type"`
	Quantity       string              `bson:"quantity" json:"quantity"`
	ExpiryDateTime time.Time           `bson:"expiry_date_time" json:"expiry_date_time"`
	DietaryInfo    []string            `bson:"dietary_info,omitempty" json:"dietary_info,omitempty"`
	Allergens      []string            `bson:"allergens,omitempty" json:"allergens,omitempty"`
	PickupLocation Location            `bson:"pickup_location" json:"pickup_location"`
	Status         string              `bson:"status" json:"status"`
	ClaimedBy      *primitive.ObjectID `bson:"claimed_by,omitempty" json:"claimed_by,omitempty"`
	Images         []string            `bson:"images,omitempty" json:"images,omitempty"`
	CreatedAt      time.Time           `bson:"created_at" json:"created_at"`
	UpdatedAt      time.Time           `bson:"updated_at" json:"updated_at"`
}

// ListingView is the read-only shape returned by discovery queries.
// Distance is only present when the requester supplied a coordinate.
type ListingView struct {
	Listing
	Distance *float64 `json:"distance,omitempty"`
}
