package models

import (
	"errors"
	"math"
	"strconv"
)

// BookingIntent is the client-held record of a desired booking, stashed in the
// intent store while the user completes payment on the processor's site.
// The JSON field names match the Eventure backend wire shape.
type BookingIntent struct {
	UserID           string  `json:"userId"`
	EventID          string  `json:"eventId"`
	TicketCount      int     `json:"ticketCount"`
	TicketPrice      float64 `json:"ticketPrice"`
	TotalTicketPrice float64 `json:"totalTicketPrice"`
	PaymentStatus    bool    `json:"paymentStatus"`
}

// NewBookingIntent builds an intent for the given user, event and ticket count.
// The total is computed once here and never recomputed after the intent is
// persisted.
func NewBookingIntent(userID, eventID string, ticketCount int, ticketPrice float64) *BookingIntent {
	return &BookingIntent{
		UserID:           userID,
		EventID:          eventID,
		TicketCount:      ticketCount,
		TicketPrice:      ticketPrice,
		TotalTicketPrice: float64(ticketCount) * ticketPrice,
		PaymentStatus:    true,
	}
}

// Validate validates the intent data at creation time.
func (i *BookingIntent) Validate() error {
	if i.UserID == "" {
		return errors.New("user id is required")
	}

	if i.EventID == "" {
		return errors.New("event id is required")
	}

	if i.TicketCount < 1 {
		return errors.New("ticket count must be at least 1")
	}

	if i.TicketPrice < 0 {
		return errors.New("ticket price must not be negative")
	}

	expected := float64(i.TicketCount) * i.TicketPrice
	if math.Abs(i.TotalTicketPrice-expected) > 1e-9 {
		return errors.New("total ticket price does not match ticket count times ticket price")
	}

	return nil
}

// IsEmpty reports whether the intent is the empty sentinel produced when the
// store holds nothing (or holds something unparseable). An intent without a
// user or event is never actionable.
func (i *BookingIntent) IsEmpty() bool {
	return i == nil || i.UserID == "" || i.EventID == ""
}

// IsFree reports whether the intent needs no payment handoff.
func (i *BookingIntent) IsFree() bool {
	return i.TotalTicketPrice == 0
}

// FormattedTotal returns the total formatted to exactly two decimal places,
// the monetary string contract of the payment initiation endpoint.
func (i *BookingIntent) FormattedTotal() string {
	return FormatAmount(i.TotalTicketPrice)
}

// FormatAmount formats a monetary amount to exactly two decimal places.
func FormatAmount(amount float64) string {
	return strconv.FormatFloat(amount, 'f', 2, 64)
}
