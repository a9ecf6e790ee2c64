package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Dias221467/FoodShare/internal/models"
	"github.com/Dias221467/FoodShare/internal/repository"
	"github.com/Dias221467/FoodShare/internal/services"
	jwtutil "github.com/Dias221467/FoodShare/pkg/jwt"
	"github.com/Dias221467/FoodShare/pkg/middleware"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const testSecret = "test-secret"

type testEnv struct {
	router   *mux.Router
	listings *repository.MemoryListingStore
	users    *repository.MemoryUserStore
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	listingStore := repository.NewMemoryListingStore()
	userStore := repository.NewMemoryUserStore()

	listingService := services.NewListingService(listingStore, userStore)
	discoveryService := services.NewDiscoveryService(listingStore)
	handler := NewListingHandler(listingService, discoveryService, t.TempDir())

	router := mux.NewRouter()
	router.HandleFunc("/api/listings", handler.GetListingsHandler).Methods("GET")
	router.HandleFunc("/api/listings/{id}", handler.GetListingHandler).Methods("GET")

	protected := router.PathPrefix("/api/listings").Subrouter()
	protected.Use(middleware.AuthMiddleware(testSecret))
	protected.HandleFunc("", handler.CreateListingHandler).Methods("POST")
	protected.HandleFunc("/{id}/claim", handler.ClaimListingHandler).Methods("POST")

	return &testEnv{router: router, listings: listingStore, users: userStore}
}

func (e *testEnv) addVerifiedUser(t *testing.T, name string) *models.User {
	t.Helper()
	user, err := e.users.CreateUser(context.Background(), &models.User{
		Name:       name,
		Email:      name + "@example.com",
		IsVerified: true,
	})
	require.NoError(t, err)
	return user
}

func (e *testEnv) addListing(t *testing.T, donorID primitive.ObjectID, title string, lat, lon float64) *models.Listing {
	t.Helper()
	listing, err := e.listings.CreateListing(context.Background(), &models.Listing{
		DonorID:        donorID,
		Title:          title,
		Description:    "Fresh and ready for pickup today",
		FoodType:       "Vegetables",
		Quantity:       "2 kg",
		ExpiryDateTime: time.Now().Add(24 * time.Hour),
		PickupLocation: models.Location{Latitude: &lat, Longitude: &lon, Address: "15 Abay Avenue"},
	})
	require.NoError(t, err)
	return listing
}

func bearerToken(t *testing.T, user *models.User) string {
	t.Helper()
	token, err := jwtutil.GenerateToken(user.ID.Hex(), user.Email, testSecret, time.Hour)
	require.NoError(t, err)
	return "Bearer " + token
}

func TestGetListingsHandler(t *testing.T) {
	env := newTestEnv(t)
	donor := env.addVerifiedUser(t, "donor")
	env.addListing(t, donor.ID, "Far Tomatoes", 1, 0)
	env.addListing(t, donor.ID, "Near Tomatoes", 0.1, 0)

	t.Run("plain feed", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/listings", nil)
		rec := httptest.NewRecorder()
		env.router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)

		var body struct {
			Success  bool                 `json:"success"`
			Count    int                  `json:"count"`
			Listings []models.ListingView `json:"listings"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.True(t, body.Success)
		assert.Equal(t, 2, body.Count)
		for _, l := range body.Listings {
			assert.Nil(t, l.Distance)
		}
	})

	t.Run("distance ranked feed", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/listings?latitude=0&longitude=0", nil)
		rec := httptest.NewRecorder()
		env.router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)

		var body struct {
			Listings []models.ListingView `json:"listings"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		require.Len(t, body.Listings, 2)
		assert.Equal(t, "Near Tomatoes", body.Listings[0].Title)
		require.NotNil(t, body.Listings[0].Distance)
	})

	t.Run("max distance cutoff", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/listings?latitude=0&longitude=0&maxDistance=50", nil)
		rec := httptest.NewRecorder()
		env.router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)

		var body struct {
			Count int `json:"count"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, 1, body.Count)
	})

	t.Run("invalid coordinates rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/listings?latitude=abc&longitude=0", nil)
		rec := httptest.NewRecorder()
		env.router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestCreateListingHandler(t *testing.T) {
	env := newTestEnv(t)
	donor := env.addVerifiedUser(t, "donor")

	payload := map[string]interface{}{
		"title":            "Fresh Tomatoes",
		"description":      "Two kilograms of ripe tomatoes",
		"food_type":        "Vegetables",
		"quantity":         "2 kg",
		"expiry_date_time": time.Now().Add(48 * time.Hour).Format(time.RFC3339),
		"pickup_location": map[string]interface{}{
			"latitude":  43.2389,
			"longitude": 76.8897,
			"address":   "15 Abay Avenue, Almaty",
		},
	}
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	t.Run("requires auth", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/listings", bytes.NewReader(body))
		rec := httptest.NewRecorder()
		env.router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("creates listing", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/listings", bytes.NewReader(body))
		req.Header.Set("Authorization", bearerToken(t, donor))
		rec := httptest.NewRecorder()
		env.router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusCreated, rec.Code)

		var resp struct {
			Listing models.Listing `json:"listing"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, models.StatusAvailable, resp.Listing.Status)
		assert.Equal(t, donor.ID, resp.Listing.DonorID)
	})

	t.Run("too many images rejected", func(t *testing.T) {
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		require.NoError(t, mw.WriteField("title", "Fresh Tomatoes"))
		for i := 0; i < 6; i++ {
			part, err := mw.CreateFormFile("images", fmt.Sprintf("photo-%d.png", i))
			require.NoError(t, err)
			_, err = part.Write([]byte("png-bytes"))
			require.NoError(t, err)
		}
		require.NoError(t, mw.Close())

		req := httptest.NewRequest(http.MethodPost, "/api/listings", &buf)
		req.Header.Set("Authorization", bearerToken(t, donor))
		req.Header.Set("Content-Type", mw.FormDataContentType())
		rec := httptest.NewRecorder()
		env.router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "at most 5 images")
	})

	t.Run("validation error names the field", func(t *testing.T) {
		bad := map[string]interface{}{}
		for k, v := range payload {
			bad[k] = v
		}
		bad["expiry_date_time"] = time.Now().Add(40 * 24 * time.Hour).Format(time.RFC3339)
		badBody, err := json.Marshal(bad)
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodPost, "/api/listings", bytes.NewReader(badBody))
		req.Header.Set("Authorization", bearerToken(t, donor))
		rec := httptest.NewRecorder()
		env.router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusBadRequest, rec.Code)

		var resp struct {
			Field string `json:"field"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "expiry_date_time", resp.Field)
	})
}

func TestClaimListingHandler(t *testing.T) {
	env := newTestEnv(t)
	donor := env.addVerifiedUser(t, "donor")
	claimant := env.addVerifiedUser(t, "claimant")
	listing := env.addListing(t, donor.ID, "Fresh Tomatoes", 43.24, 76.89)

	claim := func(user *models.User) *httptest.ResponseRecorder {
		url := fmt.Sprintf("/api/listings/%s/claim", listing.ID.Hex())
		req := httptest.NewRequest(http.MethodPost, url, nil)
		req.Header.Set("Authorization", bearerToken(t, user))
		rec := httptest.NewRecorder()
		env.router.ServeHTTP(rec, req)
		return rec
	}

	rec := claim(claimant)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Listing models.Listing `json:"listing"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, models.StatusClaimed, resp.Listing.Status)
	require.NotNil(t, resp.Listing.ClaimedBy)
	assert.Equal(t, claimant.ID, *resp.Listing.ClaimedBy)

	// A second claim loses the race and sees a conflict.
	other := env.addVerifiedUser(t, "other")
	rec = claim(other)
	assert.Equal(t, http.StatusConflict, rec.Code)

	t.Run("unknown listing", func(t *testing.T) {
		url := fmt.Sprintf("/api/listings/%s/claim", primitive.NewObjectID().Hex())
		req := httptest.NewRequest(http.MethodPost, url, nil)
		req.Header.Set("Authorization", bearerToken(t, claimant))
		rec := httptest.NewRecorder()
		env.router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}
