package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/Dias221467/FoodShare/internal/models"
	"github.com/Dias221467/FoodShare/internal/services"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

const (
	maxUploadImages = 5
	maxImageSize    = 5 << 20 // 5MB per image
)

var (
	errImageTooLarge = errors.New("image exceeds the 5MB limit")
	errImageType     = errors.New("only JPEG and PNG images are allowed")
	errTooManyImages = errors.New("at most 5 images per listing")
)

// ListingHandler handles HTTP requests related to food listings.
type ListingHandler struct {
	Service   *services.ListingService
	Discovery *services.DiscoveryService
	UploadDir string
}

// NewListingHandler creates a new instance of ListingHandler.
func NewListingHandler(service *services.ListingService, discovery *services.DiscoveryService, uploadDir string) *ListingHandler {
	return &ListingHandler{
		Service:   service,
		Discovery: discovery,
		UploadDir: uploadDir,
	}
}

// GetListingsHandler serves the public discovery feed. Query parameters:
// latitude, longitude, maxDistance, foodType, search.
func (h *ListingHandler) GetListingsHandler(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	var requester *services.Coordinate
	if latStr, lonStr := query.Get("latitude"), query.Get("longitude"); latStr != "" && lonStr != "" {
		lat, latErr := strconv.ParseFloat(latStr, 64)
		lon, lonErr := strconv.ParseFloat(lonStr, 64)
		if latErr != nil || lonErr != nil {
			http.Error(w, "Invalid latitude or longitude", http.StatusBadRequest)
			return
		}
		requester = &services.Coordinate{Latitude: lat, Longitude: lon}
	}

	filters := services.DiscoveryFilters{
		FoodType: query.Get("foodType"),
		Query:    query.Get("search"),
	}
	if maxStr := query.Get("maxDistance"); maxStr != "" {
		max, err := strconv.ParseFloat(maxStr, 64)
		if err != nil {
			http.Error(w, "Invalid maxDistance", http.StatusBadRequest)
			return
		}
		filters.MaxDistance = &max
	}

	views, err := h.Discovery.Discover(r.Context(), requester, filters)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"count":    len(views),
		"listings": views,
	})
}

// GetListingHandler returns a single listing by ID.
func (h *ListingHandler) GetListingHandler(w http.ResponseWriter, r *http.Request) {
	listing, err := h.Service.GetListing(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"listing": listing,
	})
}

// CreateListingHandler creates a listing for the authenticated donor.
// Accepts either a JSON body or multipart form-data with up to 5 images.
func (h *ListingHandler) CreateListingHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := authenticatedUserID(w, r)
	if !ok {
		return
	}

	var input services.CreateListingInput
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		parsed, err := h.parseMultipartListing(r)
		if err != nil {
			logrus.WithError(err).Warn("Failed to parse multipart listing")
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		input = *parsed
	} else {
		if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
			logrus.WithError(err).Warn("Failed to decode listing creation request")
			http.Error(w, "Invalid request payload", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()
	}

	listing, err := h.Service.CreateListing(r.Context(), userID, input)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"success": true,
		"listing": listing,
	})
}

// UpdateListingHandler applies a content update to an owned listing.
func (h *ListingHandler) UpdateListingHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := authenticatedUserID(w, r)
	if !ok {
		return
	}

	var updates map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&updates); err != nil {
		http.Error(w, "Invalid update payload", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	listing, err := h.Service.UpdateListing(r.Context(), mux.Vars(r)["id"], userID, updates)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"listing": listing,
	})
}

// DeleteListingHandler removes an owned listing.
func (h *ListingHandler) DeleteListingHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := authenticatedUserID(w, r)
	if !ok {
		return
	}

	if err := h.Service.DeleteListing(r.Context(), mux.Vars(r)["id"], userID); err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Listing removed successfully",
	})
}

// ClaimListingHandler claims an available listing for the caller.
func (h *ListingHandler) ClaimListingHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := authenticatedUserID(w, r)
	if !ok {
		return
	}

	listing, err := h.Service.ClaimListing(r.Context(), mux.Vars(r)["id"], userID)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"listing": listing,
	})
}

// parseMultipartListing reads listing fields and images from form-data.
// The pickup location comes either as a JSON "pickupLocation" field or as
// flat latitude/longitude/address fields.
func (h *ListingHandler) parseMultipartListing(r *http.Request) (*services.CreateListingInput, error) {
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		return nil, err
	}

	input := services.CreateListingInput{
		Title:       r.FormValue("title"),
		Description: r.FormValue("description"),
		FoodType:    r.FormValue("foodType"),
		Quantity:    r.FormValue("quantity"),
	}

	if expiry := r.FormValue("expiryDateTime"); expiry != "" {
		parsed, err := time.Parse(time.RFC3339, expiry)
		if err != nil {
			return nil, err
		}
		input.ExpiryDateTime = parsed
	}

	if raw := r.FormValue("pickupLocation"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &input.PickupLocation); err != nil {
			return nil, err
		}
	} else {
		loc := models.Location{Address: r.FormValue("address")}
		if lat, err := strconv.ParseFloat(r.FormValue("latitude"), 64); err == nil {
			loc.Latitude = &lat
		}
		if lon, err := strconv.ParseFloat(r.FormValue("longitude"), 64); err == nil {
			loc.Longitude = &lon
		}
		input.PickupLocation = loc
	}

	files := r.MultipartForm.File["images"]
	if len(files) > maxUploadImages {
		return nil, errTooManyImages
	}
	for _, header := range files {
		path, err := h.saveImage(header)
		if err != nil {
			return nil, err
		}
		input.Images = append(input.Images, path)
	}

	return &input, nil
}

func (h *ListingHandler) saveImage(header *multipart.FileHeader) (string, error) {
	if header.Size > maxImageSize {
		return "", errImageTooLarge
	}
	contentType := header.Header.Get("Content-Type")
	if contentType != "image/jpeg" && contentType != "image/png" {
		return "", errImageType
	}

	file, err := header.Open()
	if err != nil {
		return "", err
	}
	defer file.Close()

	if err := os.MkdirAll(h.UploadDir, os.ModePerm); err != nil {
		return "", err
	}

	fileName := uuid.NewString() + filepath.Ext(header.Filename)
	savePath := filepath.Join(h.UploadDir, fileName)

	out, err := os.Create(savePath)
	if err != nil {
		return "", err
	}
	defer out.Close()

	if _, err := io.Copy(out, file); err != nil {
		return "", err
	}

	return "/uploads/" + fileName, nil
}
