package jobs

import (
	"context"
	"testing"
	"time"

	"github.com/Dias221467/FoodShare/internal/models"
	"github.com/Dias221467/FoodShare/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func addListing(t *testing.T, store *repository.MemoryListingStore, status string, expiry time.Time) *models.Listing {
	t.Helper()
	lat, lon := 43.2389, 76.8897
	listing := &models.Listing{
		DonorID:        primitive.NewObjectID(),
		Title:          "Fresh Tomatoes",
		Description:    "Two kilograms of ripe tomatoes",
		FoodType:       "Vegetables",
		Quantity:       "2 kg",
		Status:         status,
		ExpiryDateTime: expiry,
		PickupLocation: models.Location{Latitude: &lat, Longitude: &lon, Address: "15 Abay Avenue"},
	}
	created, err := store.CreateListing(context.Background(), listing)
	require.NoError(t, err)
	return created
}

func TestSweepTransitionsOverdueListings(t *testing.T) {
	store := repository.NewMemoryListingStore()
	sweeper := NewExpirySweeper(store)
	now := time.Now()

	// Expired one second ago: must transition.
	overdue := addListing(t, store, models.StatusAvailable, now.Add(-time.Second))
	// Still valid: must stay available.
	fresh := addListing(t, store, models.StatusAvailable, now.Add(time.Hour))
	// Claimed listings are terminal and untouched even when overdue.
	claimed := addListing(t, store, models.StatusClaimed, now.Add(-time.Hour))

	count, err := sweeper.Sweep(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	got, err := store.GetListingByID(context.Background(), overdue.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusExpired, got.Status)

	got, err = store.GetListingByID(context.Background(), fresh.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusAvailable, got.Status)

	got, err = store.GetListingByID(context.Background(), claimed.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusClaimed, got.Status)
}

func TestSweepIsIdempotent(t *testing.T) {
	store := repository.NewMemoryListingStore()
	sweeper := NewExpirySweeper(store)
	now := time.Now()

	addListing(t, store, models.StatusAvailable, now.Add(-time.Minute))
	addListing(t, store, models.StatusAvailable, now.Add(-time.Hour))

	count, err := sweeper.Sweep(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	count, err = sweeper.Sweep(context.Background(), now)
	require.NoError(t, err)
	assert.Zero(t, count, "a second sweep with the same now must transition nothing")
}

func TestSweepExactExpiryInstantIsNotOverdue(t *testing.T) {
	store := repository.NewMemoryListingStore()
	sweeper := NewExpirySweeper(store)
	now := time.Now()

	// Expiry strictly before now transitions; an exact match does not.
	addListing(t, store, models.StatusAvailable, now)

	count, err := sweeper.Sweep(context.Background(), now)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestSweepStoreFailure(t *testing.T) {
	store := repository.NewMemoryListingStore()
	store.FailAll = true
	sweeper := NewExpirySweeper(store)

	count, err := sweeper.Sweep(context.Background(), time.Now())
	assert.Error(t, err)
	assert.Zero(t, count)
}
