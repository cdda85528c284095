package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"eventure-gateway/internal/models"
	"eventure-gateway/internal/repositories"
)

// AuditRecorder records booking flow outcomes. Recording is best-effort; the
// flow logs failures and continues.
type AuditRecorder interface {
	Record(ctx context.Context, sessionKey string, intent *models.BookingIntent, bookingID string, outcome repositories.AuditOutcome, detail string) error
}

// FlowResult is a terminal decision of the booking flow: where to send the
// user next and what to tell them. Every flow invocation ends in one of
// these; the user is never left without a destination.
type FlowResult struct {
	Redirect  string // navigation target, either an internal route or the approval URL
	External  bool   // true when Redirect is the payment processor's approval URL
	Success   bool
	Message   string
	BookingID string
}

// BookingFlow orchestrates the booking + payment reconciliation state
// machine: confirm (direct booking or payment handoff), finalize on return
// from the processor, and the cancellation landing.
type BookingFlow struct {
	api     EventureAPI
	intents repositories.IntentStore
	audit   AuditRecorder
}

// NewBookingFlow creates a new booking flow service
func NewBookingFlow(api EventureAPI, intents repositories.IntentStore, audit AuditRecorder) *BookingFlow {
	return &BookingFlow{
		api:     api,
		intents: intents,
		audit:   audit,
	}
}

// Confirm handles a customer confirming a ticket quantity for an event.
// Zero-cost bookings go straight to the backend; paid bookings get a payment
// approval URL, with the intent persisted immediately before the handoff.
func (f *BookingFlow) Confirm(ctx context.Context, sc *models.SessionContext, sessionKey, eventID string, ticketCount int) *FlowResult {
	eventPage := "/event/" + eventID

	if ticketCount < 1 {
		return &FlowResult{Redirect: eventPage, Message: "Please select at least one ticket"}
	}

	event, err := f.api.GetEvent(ctx, sc.Token, eventID)
	if err != nil {
		log.Printf("Booking confirm: failed to fetch event %s: %v", eventID, err)
		return &FlowResult{Redirect: eventPage, Message: "Unable to load event details, please try again"}
	}

	if !event.HasCapacityFor(ticketCount) {
		return &FlowResult{
			Redirect: eventPage,
			Message:  fmt.Sprintf("Only %d tickets available, but %d requested", event.AvailableTickets, ticketCount),
		}
	}

	intent := models.NewBookingIntent(sc.UserID, eventID, ticketCount, event.TicketPrice)
	if err := intent.Validate(); err != nil {
		log.Printf("Booking confirm: invalid intent for event %s: %v", eventID, err)
		return &FlowResult{Redirect: eventPage, Message: "Invalid booking request"}
	}

	if intent.IsFree() {
		return f.bookDirect(ctx, sc, sessionKey, intent)
	}

	return f.beginPayment(ctx, sc, sessionKey, intent)
}

// bookDirect is the zero-cost path: no payment handoff, nothing persisted.
func (f *BookingFlow) bookDirect(ctx context.Context, sc *models.SessionContext, sessionKey string, intent *models.BookingIntent) *FlowResult {
	eventPage := "/event/" + intent.EventID

	result, err := f.api.BookEvent(ctx, sc.Token, intent)
	if err != nil {
		log.Printf("Booking confirm: direct booking failed for event %s: %v", intent.EventID, err)
		f.record(ctx, sessionKey, intent, "", repositories.AuditFailed, err.Error())
		return &FlowResult{Redirect: eventPage, Message: bookingErrorMessage(err)}
	}

	f.record(ctx, sessionKey, intent, result.BookingID, repositories.AuditDirectBooked, "")
	return &FlowResult{
		Redirect:  eventPage + "?status=success",
		Success:   true,
		Message:   "Booking confirmed",
		BookingID: result.BookingID,
	}
}

// beginPayment is the paid path: initiate payment first, persist the intent,
// then hand the browser to the approval URL. Initiation always precedes the
// persist, and the persist always precedes the redirect.
func (f *BookingFlow) beginPayment(ctx context.Context, sc *models.SessionContext, sessionKey string, intent *models.BookingIntent) *FlowResult {
	eventPage := "/event/" + intent.EventID

	approvalURL, err := f.api.CreatePayment(ctx, sc.Token, intent.FormattedTotal())
	if err != nil {
		log.Printf("Booking confirm: payment initiation failed for event %s: %v", intent.EventID, err)
		return &FlowResult{Redirect: eventPage, Message: paymentErrorMessage(err)}
	}

	if err := f.intents.Save(ctx, sessionKey, intent); err != nil {
		// Without the stored intent the return leg has nothing to finalize,
		// so do not send the user to the processor.
		log.Printf("Booking confirm: failed to persist intent for event %s: %v", intent.EventID, err)
		return &FlowResult{Redirect: eventPage, Message: "Unable to start payment, please try again"}
	}

	return &FlowResult{Redirect: approvalURL, External: true}
}

// Finalize handles the return leg from the payment processor. The intent is
// claimed (loaded and cleared) in one step, so it is finalized at most once;
// a transient failure after the claim discards the intent rather than
// retrying.
func (f *BookingFlow) Finalize(ctx context.Context, sc *models.SessionContext, sessionKey string) *FlowResult {
	intent, err := f.intents.Take(ctx, sessionKey)
	if err != nil {
		if !errors.Is(err, models.ErrNoIntent) {
			log.Printf("Booking finalize: failed to take intent: %v", err)
		}
		return &FlowResult{Redirect: "/?status=error", Message: "No pending booking was found"}
	}

	result, err := f.api.BookEvent(ctx, sc.Token, intent)
	if err != nil {
		if models.IsSessionExpired(err) {
			f.record(ctx, sessionKey, intent, "", repositories.AuditAuthExpired, "")
			return &FlowResult{Redirect: "/login", Message: "Your session expired, please log in again"}
		}

		log.Printf("Booking finalize: confirmation failed for event %s: %v", intent.EventID, err)
		f.record(ctx, sessionKey, intent, "", repositories.AuditFailed, err.Error())
		return &FlowResult{
			Redirect: "/event/" + intent.EventID + "?status=failed",
			Message:  bookingErrorMessage(err),
		}
	}

	f.record(ctx, sessionKey, intent, result.BookingID, repositories.AuditFinalized, "")
	return &FlowResult{
		Redirect:  "/event/" + intent.EventID + "?status=success",
		Success:   true,
		Message:   "Booking confirmed",
		BookingID: result.BookingID,
	}
}

// CancelPayment handles the processor's cancellation landing: drop any
// pending intent so a later unrelated visit cannot finalize it.
func (f *BookingFlow) CancelPayment(ctx context.Context, sessionKey string) *FlowResult {
	intent, err := f.intents.Take(ctx, sessionKey)
	switch {
	case err == nil:
		f.record(ctx, sessionKey, intent, "", repositories.AuditCancelled, "payment cancelled at processor")
	case !errors.Is(err, models.ErrNoIntent):
		log.Printf("Payment cancel: failed to clear intent: %v", err)
	}

	return &FlowResult{Redirect: "/?status=cancelled", Message: "Payment cancelled, no charges were made"}
}

// CancelBooking cancels a confirmed booking via the backend. Peripheral to
// the payment flow; no intent is involved.
func (f *BookingFlow) CancelBooking(ctx context.Context, sc *models.SessionContext, bookingID string) *FlowResult {
	message, err := f.api.CancelBooking(ctx, sc.Token, bookingID, sc.UserID)
	if err != nil {
		if models.IsSessionExpired(err) {
			return &FlowResult{Redirect: "/login", Message: "Your session expired, please log in again"}
		}
		log.Printf("Booking cancel: failed for booking %s: %v", bookingID, err)
		return &FlowResult{Redirect: "/customer/tickets", Message: "Unable to cancel booking, please try again"}
	}

	if message == "" {
		message = "Booking cancelled successfully"
	}
	return &FlowResult{Redirect: "/customer/tickets", Success: true, Message: message}
}

func (f *BookingFlow) record(ctx context.Context, sessionKey string, intent *models.BookingIntent, bookingID string, outcome repositories.AuditOutcome, detail string) {
	if f.audit == nil {
		return
	}
	if err := f.audit.Record(ctx, sessionKey, intent, bookingID, outcome, detail); err != nil {
		log.Printf("Failed to record booking audit (%s): %v", outcome, err)
	}
}

// bookingErrorMessage extracts the backend-supplied message from a booking
// confirmation failure, with a generic fallback.
func bookingErrorMessage(err error) string {
	var confirmErr *models.BookingConfirmationError
	if errors.As(err, &confirmErr) && confirmErr.Message != "" {
		return confirmErr.Message
	}
	return "Booking could not be completed, please try again"
}

// paymentErrorMessage extracts the backend-supplied message from a payment
// initiation failure, with a generic fallback.
func paymentErrorMessage(err error) string {
	var paymentErr *models.PaymentInitiationError
	if errors.As(err, &paymentErr) && paymentErr.Message != "" {
		return paymentErr.Message
	}
	return "Unable to start payment, please try again"
}
