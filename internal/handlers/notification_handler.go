package handlers

import (
	"net/http"

	"github.com/Dias221467/FoodShare/internal/services"
	"github.com/gorilla/mux"
)

// NotificationHandler exposes the notification-eligibility query consumed
// by the external mailer.
type NotificationHandler struct {
	Service *services.NotificationService
}

// NewNotificationHandler creates a new instance of NotificationHandler.
func NewNotificationHandler(service *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{Service: service}
}

// GetEligibleRecipientsHandler returns the users who should be emailed
// about the given listing.
func (h *NotificationHandler) GetEligibleRecipientsHandler(w http.ResponseWriter, r *http.Request) {
	if _, ok := authenticatedUserID(w, r); !ok {
		return
	}

	result, err := h.Service.EligibleRecipients(r.Context(), mux.Vars(r)["listingId"])
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}
