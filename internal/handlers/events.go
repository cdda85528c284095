package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"eventure-gateway/internal/middleware"
	"eventure-gateway/internal/models"
	"eventure-gateway/internal/services"

	"github.com/go-chi/chi/v5"
)

// EventsHandler proxies authenticated event reads to the backend for the
// browsing customer.
type EventsHandler struct {
	api services.EventureAPI
}

// NewEventsHandler creates a new events handler
func NewEventsHandler(api services.EventureAPI) *EventsHandler {
	return &EventsHandler{api: api}
}

// ListEvents returns the event listing.
func (h *EventsHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	sc := middleware.GetSessionContext(r.Context())
	if sc == nil {
		http.Error(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	events, err := h.api.ListEvents(r.Context(), sc.Token)
	if err != nil {
		h.renderError(w, err, "Failed to load events")
		return
	}

	writeJSON(w, events)
}

// GetEvent returns a single event by ID.
func (h *EventsHandler) GetEvent(w http.ResponseWriter, r *http.Request) {
	sc := middleware.GetSessionContext(r.Context())
	if sc == nil {
		http.Error(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	eventID := chi.URLParam(r, "id")
	event, err := h.api.GetEvent(r.Context(), sc.Token, eventID)
	if err != nil {
		if errors.Is(err, models.ErrEventNotFound) {
			http.Error(w, "Event not found", http.StatusNotFound)
			return
		}
		h.renderError(w, err, "Failed to load event")
		return
	}

	writeJSON(w, event)
}

func (h *EventsHandler) renderError(w http.ResponseWriter, err error, message string) {
	if errors.Is(err, models.ErrSessionExpired) {
		http.Error(w, "Session expired", http.StatusUnauthorized)
		return
	}
	log.Printf("Events proxy: %s: %v", message, err)
	http.Error(w, message, http.StatusBadGateway)
}

// writeJSON writes a JSON response
func writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Failed to encode JSON response: %v", err)
	}
}
