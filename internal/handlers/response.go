package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Dias221467/FoodShare/pkg/apperror"
	"github.com/sirupsen/logrus"
)

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logrus.WithError(err).Error("Failed to encode response")
	}
}

// respondError maps service errors onto HTTP status codes and a uniform
// {"success": false, ...} body.
func respondError(w http.ResponseWriter, err error) {
	var vErr *apperror.ValidationError
	switch {
	case errors.As(err, &vErr):
		respondJSON(w, http.StatusBadRequest, map[string]interface{}{
			"success": false,
			"field":   vErr.Field,
			"message": vErr.Message,
		})
	case errors.Is(err, apperror.ErrNotFound):
		respondJSON(w, http.StatusNotFound, map[string]interface{}{
			"success": false,
			"message": "Not found",
		})
	case errors.Is(err, apperror.ErrConflict):
		respondJSON(w, http.StatusConflict, map[string]interface{}{
			"success": false,
			"message": "Listing is no longer available",
		})
	case errors.Is(err, apperror.ErrForbidden):
		respondJSON(w, http.StatusForbidden, map[string]interface{}{
			"success": false,
			"message": "Not authorized to perform this action",
		})
	case errors.Is(err, apperror.ErrNotVerified):
		respondJSON(w, http.StatusForbidden, map[string]interface{}{
			"success":               false,
			"message":               "Please verify your email before creating listings",
			"requires_verification": true,
		})
	case errors.Is(err, apperror.ErrUnavailable):
		respondJSON(w, http.StatusServiceUnavailable, map[string]interface{}{
			"success": false,
			"message": "Service temporarily unavailable",
		})
	default:
		respondJSON(w, http.StatusInternalServerError, map[string]interface{}{
			"success": false,
			"message": err.Error(),
		})
	}
}
