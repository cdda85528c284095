package models

// BookingResult is the success payload of the backend's bookEvent endpoint.
type BookingResult struct {
	BookingID        string  `json:"bookingId"`
	TicketCount      int     `json:"ticketCount"`
	TotalTicketPrice float64 `json:"totalTicketPrice"`
	BookingStatus    string  `json:"bookingStatus"`
}

// CancelBookingRequest is the payload of the backend's cancelBooking endpoint.
type CancelBookingRequest struct {
	BookingID string `json:"bookingId"`
	UserID    string `json:"userId"`
}
