package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"eventure-gateway/internal/middleware"
	"eventure-gateway/internal/models"
	"eventure-gateway/internal/repositories"
	"eventure-gateway/internal/services"

	"github.com/gorilla/sessions"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubEventureAPI is a canned-response backend for handler tests.
type stubEventureAPI struct {
	event       *models.Event
	approvalURL string
	bookResult  *models.BookingResult
	bookErr     error
	cancelMsg   string
	cancelErr   error
}

func (s *stubEventureAPI) GetEvent(ctx context.Context, token, eventID string) (*models.Event, error) {
	if s.event == nil {
		return nil, models.ErrEventNotFound
	}
	return s.event, nil
}

func (s *stubEventureAPI) ListEvents(ctx context.Context, token string) ([]*models.Event, error) {
	return nil, nil
}

func (s *stubEventureAPI) CreatePayment(ctx context.Context, token, amount string) (string, error) {
	return s.approvalURL, nil
}

func (s *stubEventureAPI) BookEvent(ctx context.Context, token string, intent *models.BookingIntent) (*models.BookingResult, error) {
	if s.bookErr != nil {
		return nil, s.bookErr
	}
	return s.bookResult, nil
}

func (s *stubEventureAPI) CancelBooking(ctx context.Context, token, bookingID, userID string) (string, error) {
	if s.cancelErr != nil {
		return "", s.cancelErr
	}
	return s.cancelMsg, nil
}

// stubIntentStore is an in-memory single-slot store.
type stubIntentStore struct {
	mu    sync.Mutex
	slots map[string]*models.BookingIntent
}

func newStubIntentStore() *stubIntentStore {
	return &stubIntentStore{slots: make(map[string]*models.BookingIntent)}
}

func (s *stubIntentStore) Save(ctx context.Context, sessionKey string, intent *models.BookingIntent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.slots[sessionKey] = intent
	return nil
}

func (s *stubIntentStore) Load(ctx context.Context, sessionKey string) (*models.BookingIntent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if intent, ok := s.slots[sessionKey]; ok {
		return intent, nil
	}
	return &models.BookingIntent{}, nil
}

func (s *stubIntentStore) Take(ctx context.Context, sessionKey string) (*models.BookingIntent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	intent, ok := s.slots[sessionKey]
	if !ok {
		return nil, models.ErrNoIntent
	}
	delete(s.slots, sessionKey)
	return intent, nil
}

func (s *stubIntentStore) Clear(ctx context.Context, sessionKey string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.slots, sessionKey)
	return nil
}

func newTestBookingHandler(api *stubEventureAPI, store *stubIntentStore) *BookingHandler {
	flow := services.NewBookingFlow(api, store, nil)
	return NewBookingHandler(flow, &stubAuditReader{}, sessions.NewCookieStore([]byte("test-secret")))
}

// stubAuditReader serves canned history rows.
type stubAuditReader struct {
	records []*repositories.AuditRecord
}

func (s *stubAuditReader) GetByUser(ctx context.Context, userID string, limit int) ([]*repositories.AuditRecord, error) {
	return s.records, nil
}

// withSession attaches an authenticated session context and intent-slot key
// to the request, the way the auth middleware would.
func withSession(r *http.Request, sc *models.SessionContext) *http.Request {
	ctx := context.WithValue(r.Context(), middleware.SessionKeyContextKey, "sess-1")
	if sc != nil {
		ctx = context.WithValue(ctx, middleware.SessionContextKey, sc)
	}
	return r.WithContext(ctx)
}

func authedSession() *models.SessionContext {
	return &models.SessionContext{UserID: "user-1", Token: "token-1"}
}

func TestBookingHandler_ConfirmBooking(t *testing.T) {
	t.Run("paid booking answers with approval url", func(t *testing.T) {
		api := &stubEventureAPI{
			event:       &models.Event{ID: "event-1", TicketPrice: 25.00, AvailableTickets: 10},
			approvalURL: "https://paypal.example/approve/abc",
		}
		store := newStubIntentStore()
		handler := newTestBookingHandler(api, store)

		req := httptest.NewRequest(http.MethodPost, "/bookings/confirm",
			strings.NewReader(`{"eventId":"event-1","ticketCount":3}`))
		req.Header.Set("Content-Type", "application/json")
		req = withSession(req, authedSession())
		w := httptest.NewRecorder()

		handler.ConfirmBooking(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"redirect":"https://paypal.example/approve/abc"`)

		// The intent was persisted before the approval URL was handed out.
		intent, err := store.Take(context.Background(), "sess-1")
		require.NoError(t, err)
		assert.Equal(t, 75.00, intent.TotalTicketPrice)
	})

	t.Run("free booking completes immediately", func(t *testing.T) {
		api := &stubEventureAPI{
			event:      &models.Event{ID: "event-1", TicketPrice: 0, AvailableTickets: 10},
			bookResult: &models.BookingResult{BookingID: "booking-7"},
		}
		store := newStubIntentStore()
		handler := newTestBookingHandler(api, store)

		req := httptest.NewRequest(http.MethodPost, "/bookings/confirm",
			strings.NewReader(`{"eventId":"event-1","ticketCount":2}`))
		req.Header.Set("Content-Type", "application/json")
		req = withSession(req, authedSession())
		w := httptest.NewRecorder()

		handler.ConfirmBooking(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"success":true`)
		assert.Contains(t, w.Body.String(), `"bookingId":"booking-7"`)

		// Nothing is left in the slot for the free path.
		_, err := store.Take(context.Background(), "sess-1")
		assert.ErrorIs(t, err, models.ErrNoIntent)
	})

	t.Run("form post redirects with flash", func(t *testing.T) {
		api := &stubEventureAPI{
			event: &models.Event{ID: "event-1", TicketPrice: 25.00, AvailableTickets: 1},
		}
		handler := newTestBookingHandler(api, newStubIntentStore())

		form := "event_id=event-1&ticket_count=4"
		req := httptest.NewRequest(http.MethodPost, "/bookings/confirm", strings.NewReader(form))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req = withSession(req, authedSession())
		w := httptest.NewRecorder()

		handler.ConfirmBooking(w, req)

		assert.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, "/event/event-1", w.Header().Get("Location"))
		assert.NotEmpty(t, w.Header().Get("Set-Cookie"))
	})

	t.Run("unauthenticated request is rejected", func(t *testing.T) {
		handler := newTestBookingHandler(&stubEventureAPI{}, newStubIntentStore())

		req := httptest.NewRequest(http.MethodPost, "/bookings/confirm",
			strings.NewReader(`{"eventId":"event-1","ticketCount":1}`))
		req.Header.Set("Content-Type", "application/json")
		req = withSession(req, nil)
		w := httptest.NewRecorder()

		handler.ConfirmBooking(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("malformed body is rejected", func(t *testing.T) {
		handler := newTestBookingHandler(&stubEventureAPI{}, newStubIntentStore())

		req := httptest.NewRequest(http.MethodPost, "/bookings/confirm", strings.NewReader("{not json"))
		req.Header.Set("Content-Type", "application/json")
		req = withSession(req, authedSession())
		w := httptest.NewRecorder()

		handler.ConfirmBooking(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestBookingHandler_PaymentSuccess(t *testing.T) {
	t.Run("pending intent is finalized", func(t *testing.T) {
		api := &stubEventureAPI{bookResult: &models.BookingResult{BookingID: "booking-9"}}
		store := newStubIntentStore()
		handler := newTestBookingHandler(api, store)

		intent := models.NewBookingIntent("user-1", "event-1", 3, 25.00)
		require.NoError(t, store.Save(context.Background(), "sess-1", intent))

		req := httptest.NewRequest(http.MethodGet, "/payment/success", nil)
		req = withSession(req, authedSession())
		w := httptest.NewRecorder()

		handler.PaymentSuccess(w, req)

		assert.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, "/event/event-1?status=success", w.Header().Get("Location"))
	})

	t.Run("empty slot lands on the error page", func(t *testing.T) {
		handler := newTestBookingHandler(&stubEventureAPI{}, newStubIntentStore())

		req := httptest.NewRequest(http.MethodGet, "/payment/success", nil)
		req = withSession(req, authedSession())
		w := httptest.NewRecorder()

		handler.PaymentSuccess(w, req)

		assert.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, "/?status=error", w.Header().Get("Location"))
	})

	t.Run("lapsed session still consumes the intent", func(t *testing.T) {
		api := &stubEventureAPI{
			bookErr: &models.BookingConfirmationError{StatusCode: 401, SessionExpired: true},
		}
		store := newStubIntentStore()
		handler := newTestBookingHandler(api, store)

		intent := models.NewBookingIntent("user-1", "event-1", 1, 25.00)
		require.NoError(t, store.Save(context.Background(), "sess-1", intent))

		// No session context at all: the route is reachable without auth.
		req := httptest.NewRequest(http.MethodGet, "/payment/success", nil)
		req = withSession(req, nil)
		w := httptest.NewRecorder()

		handler.PaymentSuccess(w, req)

		assert.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, "/login", w.Header().Get("Location"))

		_, err := store.Take(context.Background(), "sess-1")
		assert.ErrorIs(t, err, models.ErrNoIntent)
	})
}

func TestBookingHandler_PaymentCancel(t *testing.T) {
	store := newStubIntentStore()
	handler := newTestBookingHandler(&stubEventureAPI{}, store)

	intent := models.NewBookingIntent("user-1", "event-1", 2, 25.00)
	require.NoError(t, store.Save(context.Background(), "sess-1", intent))

	req := httptest.NewRequest(http.MethodGet, "/payment/cancel", nil)
	req = withSession(req, nil)
	w := httptest.NewRecorder()

	handler.PaymentCancel(w, req)

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/?status=cancelled", w.Header().Get("Location"))

	_, err := store.Take(context.Background(), "sess-1")
	assert.ErrorIs(t, err, models.ErrNoIntent)
}

func TestBookingHandler_BookingHistory(t *testing.T) {
	flow := services.NewBookingFlow(&stubEventureAPI{}, newStubIntentStore(), nil)
	audit := &stubAuditReader{records: []*repositories.AuditRecord{
		{
			EventID:          "event-1",
			TicketCount:      3,
			TotalTicketPrice: 75.00,
			BookingID:        "booking-9",
			Outcome:          repositories.AuditFinalized,
		},
	}}
	handler := NewBookingHandler(flow, audit, sessions.NewCookieStore([]byte("test-secret")))

	req := httptest.NewRequest(http.MethodGet, "/bookings/history", nil)
	req = withSession(req, authedSession())
	w := httptest.NewRecorder()

	handler.BookingHistory(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"outcome":"finalized"`)
	assert.Contains(t, w.Body.String(), `"bookingId":"booking-9"`)
}

func TestBookingHandler_CancelBooking(t *testing.T) {
	t.Run("successful cancellation", func(t *testing.T) {
		api := &stubEventureAPI{cancelMsg: "Booking cancelled successfully."}
		handler := newTestBookingHandler(api, newStubIntentStore())

		req := httptest.NewRequest(http.MethodPost, "/bookings/cancel",
			strings.NewReader(`{"bookingId":"booking-9"}`))
		req.Header.Set("Content-Type", "application/json")
		req = withSession(req, authedSession())
		w := httptest.NewRecorder()

		handler.CancelBooking(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Booking cancelled successfully.")
	})

	t.Run("missing booking id is rejected", func(t *testing.T) {
		handler := newTestBookingHandler(&stubEventureAPI{}, newStubIntentStore())

		req := httptest.NewRequest(http.MethodPost, "/bookings/cancel", strings.NewReader(`{}`))
		req.Header.Set("Content-Type", "application/json")
		req = withSession(req, authedSession())
		w := httptest.NewRecorder()

		handler.CancelBooking(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
