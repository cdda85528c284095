package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"eventure-gateway/internal/middleware"
	"eventure-gateway/internal/models"
	"eventure-gateway/internal/repositories"
	"eventure-gateway/internal/services"

	"github.com/gorilla/sessions"
)

// AuditReader serves the booking history endpoint.
type AuditReader interface {
	GetByUser(ctx context.Context, userID string, limit int) ([]*repositories.AuditRecord, error)
}

// BookingHandler exposes the booking reconciliation flow over HTTP: the
// confirm endpoint plus the landing routes the payment processor redirects
// back to.
type BookingHandler struct {
	flow  *services.BookingFlow
	audit AuditReader
	store sessions.Store
}

// NewBookingHandler creates a new booking handler
func NewBookingHandler(flow *services.BookingFlow, audit AuditReader, store sessions.Store) *BookingHandler {
	return &BookingHandler{
		flow:  flow,
		audit: audit,
		store: store,
	}
}

// confirmRequest is the confirm endpoint's JSON body.
type confirmRequest struct {
	EventID     string `json:"eventId"`
	TicketCount int    `json:"ticketCount"`
}

// ConfirmBooking handles a customer confirming a ticket quantity. Zero-cost
// bookings complete immediately; paid ones answer with the processor's
// approval URL to navigate to.
func (h *BookingHandler) ConfirmBooking(w http.ResponseWriter, r *http.Request) {
	sc := middleware.GetSessionContext(r.Context())
	if sc == nil {
		http.Error(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	eventID, ticketCount, err := parseConfirmRequest(r)
	if err != nil {
		http.Error(w, "Invalid booking request", http.StatusBadRequest)
		return
	}

	result := h.flow.Confirm(r.Context(), sc, middleware.GetSessionKey(r.Context()), eventID, ticketCount)
	h.respond(w, r, result)
}

// PaymentSuccess is the landing route the payment processor redirects to
// after approval. It finalizes the pending intent; an empty or corrupt slot
// lands on the generic error page without calling the backend.
func (h *BookingHandler) PaymentSuccess(w http.ResponseWriter, r *http.Request) {
	sc := middleware.GetSessionContext(r.Context())
	if sc == nil {
		// Finalize still runs: the claim happens first, and the backend
		// rejects the tokenless confirmation with a 401.
		sc = &models.SessionContext{}
	}

	result := h.flow.Finalize(r.Context(), sc, middleware.GetSessionKey(r.Context()))
	h.respond(w, r, result)
}

// PaymentCancel is the landing route for a payment cancelled at the
// processor. Its only job is to drop the pending intent and send the user
// home.
func (h *BookingHandler) PaymentCancel(w http.ResponseWriter, r *http.Request) {
	result := h.flow.CancelPayment(r.Context(), middleware.GetSessionKey(r.Context()))
	h.respond(w, r, result)
}

// cancelRequest is the cancel-booking endpoint's JSON body.
type cancelRequest struct {
	BookingID string `json:"bookingId"`
}

// CancelBooking cancels a confirmed booking via the backend.
func (h *BookingHandler) CancelBooking(w http.ResponseWriter, r *http.Request) {
	sc := middleware.GetSessionContext(r.Context())
	if sc == nil {
		http.Error(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	var req cancelRequest
	if isJSONRequest(r) {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid cancellation request", http.StatusBadRequest)
			return
		}
	} else {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}
		req.BookingID = r.FormValue("booking_id")
	}

	if req.BookingID == "" {
		http.Error(w, "Booking ID is required", http.StatusBadRequest)
		return
	}

	result := h.flow.CancelBooking(r.Context(), sc, req.BookingID)
	h.respond(w, r, result)
}

// historyEntry is one row of the booking history response.
type historyEntry struct {
	EventID          string  `json:"eventId"`
	TicketCount      int     `json:"ticketCount"`
	TotalTicketPrice float64 `json:"totalTicketPrice"`
	BookingID        string  `json:"bookingId,omitempty"`
	Outcome          string  `json:"outcome"`
	Detail           string  `json:"detail,omitempty"`
	CreatedAt        string  `json:"createdAt"`
}

// BookingHistory returns the caller's recent booking attempts, newest first.
func (h *BookingHandler) BookingHistory(w http.ResponseWriter, r *http.Request) {
	sc := middleware.GetSessionContext(r.Context())
	if sc == nil {
		http.Error(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	records, err := h.audit.GetByUser(r.Context(), sc.UserID, limit)
	if err != nil {
		log.Printf("Failed to load booking history for user %s: %v", sc.UserID, err)
		http.Error(w, "Failed to load booking history", http.StatusInternalServerError)
		return
	}

	entries := make([]historyEntry, 0, len(records))
	for _, record := range records {
		entries = append(entries, historyEntry{
			EventID:          record.EventID,
			TicketCount:      record.TicketCount,
			TotalTicketPrice: record.TotalTicketPrice,
			BookingID:        record.BookingID,
			Outcome:          string(record.Outcome),
			Detail:           record.Detail,
			CreatedAt:        record.CreatedAt.Format(time.RFC3339),
		})
	}

	writeJSON(w, entries)
}

// flowResponse is the JSON rendering of a flow decision for fetch clients.
type flowResponse struct {
	Success   bool   `json:"success"`
	Redirect  string `json:"redirect"`
	Message   string `json:"message,omitempty"`
	BookingID string `json:"bookingId,omitempty"`
}

// respond renders a flow result: JSON for fetch clients, flash-and-redirect
// for browser form posts.
func (h *BookingHandler) respond(w http.ResponseWriter, r *http.Request, result *services.FlowResult) {
	if wantsJSON(r) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(flowResponse{
			Success:   result.Success,
			Redirect:  result.Redirect,
			Message:   result.Message,
			BookingID: result.BookingID,
		}); err != nil {
			log.Printf("Failed to encode flow response: %v", err)
		}
		return
	}

	if result.Message != "" {
		h.addFlash(w, r, result)
	}

	http.Redirect(w, r, result.Redirect, http.StatusSeeOther)
}

// addFlash queues the result message as the toast shown on the next page.
func (h *BookingHandler) addFlash(w http.ResponseWriter, r *http.Request, result *services.FlowResult) {
	session, err := h.store.Get(r, "session")
	if err != nil {
		return
	}

	key := "flash_error"
	if result.Success {
		key = "flash_success"
	}
	session.AddFlash(result.Message, key)
	if err := session.Save(r, w); err != nil {
		log.Printf("Failed to save flash message: %v", err)
	}
}

func parseConfirmRequest(r *http.Request) (string, int, error) {
	if isJSONRequest(r) {
		var req confirmRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return "", 0, err
		}
		return req.EventID, req.TicketCount, nil
	}

	if err := r.ParseForm(); err != nil {
		return "", 0, err
	}

	ticketCount, err := strconv.Atoi(r.FormValue("ticket_count"))
	if err != nil {
		return "", 0, err
	}

	return r.FormValue("event_id"), ticketCount, nil
}

func isJSONRequest(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "application/json")
}

func wantsJSON(r *http.Request) bool {
	accept := r.Header.Get("Accept")
	return strings.Contains(accept, "application/json") || isJSONRequest(r)
}
