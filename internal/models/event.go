package models

import "time"

// Event represents an event as returned by the Eventure backend. The gateway
// only reads events; all writes happen on the backend.
type Event struct {
	ID               string    `json:"id"`
	EventName        string    `json:"eventName"`
	Description      string    `json:"desc"`
	OrganizerID      string    `json:"organizerId"`
	EventCapacity    int       `json:"eventCapacity"`
	AvailableTickets int       `json:"available_tickets"`
	TicketPrice      float64   `json:"ticketPrice"`
	EventDateTime    time.Time `json:"eventDateTime"`
	City             string    `json:"city"`
	State            string    `json:"state"`
	ZipCode          string    `json:"zipCode"`
	Address          string    `json:"address"`
	EventCategory    string    `json:"eventCategory"`
	EventAttendees   int       `json:"eventAttendees"`
}

// HasCapacityFor reports whether the event still advertises enough tickets for
// the requested count. This mirrors the server-side check only; the backend
// remains the final arbiter and may still reject the booking.
func (e *Event) HasCapacityFor(ticketCount int) bool {
	return ticketCount <= e.AvailableTickets
}
