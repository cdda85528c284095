package models

import (
	"errors"
	"fmt"
)

// Common errors used throughout the application
var (
	ErrNoIntent            = errors.New("no pending booking intent")
	ErrNotAuthenticated    = errors.New("not authenticated")
	ErrSessionExpired      = errors.New("session expired")
	ErrEventNotFound       = errors.New("event not found")
	ErrInsufficientTickets = errors.New("insufficient tickets available")
	ErrInvalidInput        = errors.New("invalid input")
)

// PaymentInitiationError indicates the backend rejected a payment creation
// request or was unreachable.
type PaymentInitiationError struct {
	Message string
}

func (e *PaymentInitiationError) Error() string {
	if e.Message == "" {
		return "payment initiation failed"
	}
	return fmt.Sprintf("payment initiation failed: %s", e.Message)
}

// NewPaymentInitiationError creates a payment initiation error carrying the
// backend-supplied message, if any.
func NewPaymentInitiationError(message string) *PaymentInitiationError {
	return &PaymentInitiationError{Message: message}
}

// BookingConfirmationError indicates the backend rejected a booking, or that
// the caller's session expired while confirming it.
type BookingConfirmationError struct {
	Message        string
	StatusCode     int
	SessionExpired bool
}

func (e *BookingConfirmationError) Error() string {
	if e.SessionExpired {
		return "booking confirmation failed: session expired"
	}
	if e.Message == "" {
		return "booking confirmation failed"
	}
	return fmt.Sprintf("booking confirmation failed: %s", e.Message)
}

// IsSessionExpired reports whether err is a confirmation failure caused by an
// expired or invalid session.
func IsSessionExpired(err error) bool {
	var confirmErr *BookingConfirmationError
	if errors.As(err, &confirmErr) {
		return confirmErr.SessionExpired
	}
	return errors.Is(err, ErrSessionExpired)
}
