package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"eventure-gateway/internal/models"
)

// EventureConfig represents Eventure backend client configuration. The
// return URLs are handed to the backend on payment initiation so the
// processor redirects the browser back to this gateway's landing routes.
type EventureConfig struct {
	BaseURL    string
	Timeout    time.Duration
	SuccessURL string
	CancelURL  string
}

// EventureAPI is the surface of the Eventure backend the gateway consumes.
type EventureAPI interface {
	GetEvent(ctx context.Context, token, eventID string) (*models.Event, error)
	ListEvents(ctx context.Context, token string) ([]*models.Event, error)
	CreatePayment(ctx context.Context, token, amount string) (string, error)
	BookEvent(ctx context.Context, token string, intent *models.BookingIntent) (*models.BookingResult, error)
	CancelBooking(ctx context.Context, token, bookingID, userID string) (string, error)
}

// EventureClient calls the Eventure backend REST API. All booking business
// logic (inventory, payments capture, emails) lives behind these endpoints;
// the gateway only issues the calls and renders the outcome.
type EventureClient struct {
	config EventureConfig
	client *http.Client
}

// NewEventureClient creates a new Eventure backend client
func NewEventureClient(config EventureConfig) *EventureClient {
	timeout := config.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	return &EventureClient{
		config: config,
		client: &http.Client{Timeout: timeout},
	}
}

// paymentResponse is the create-payment endpoint's payload.
type paymentResponse struct {
	Status      string `json:"status"`
	Message     string `json:"message"`
	ErrorCode   string `json:"errorCode,omitempty"`
	ApprovalURL string `json:"approvalUrl"`
}

// backendError is the failure payload shape shared by the booking endpoints.
// Some endpoints use "message", others "error".
type backendError struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

func (e *backendError) text() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Error
}

// CreatePayment asks the backend for a payment approval URL for the given
// amount. The amount must already be formatted to exactly two decimal places.
func (c *EventureClient) CreatePayment(ctx context.Context, token, amount string) (string, error) {
	body := map[string]string{"amount": amount}
	if c.config.SuccessURL != "" {
		body["successUrl"] = c.config.SuccessURL
	}
	if c.config.CancelURL != "" {
		body["cancelUrl"] = c.config.CancelURL
	}

	resp, err := c.postJSON(ctx, token, "/api/events/create-payment", body)
	if err != nil {
		return "", fmt.Errorf("failed to send payment request: %w", err)
	}
	defer resp.Body.Close()

	var paymentResp paymentResponse
	if err := json.NewDecoder(resp.Body).Decode(&paymentResp); err != nil {
		return "", fmt.Errorf("failed to decode payment response: %w", err)
	}

	if paymentResp.Status != "success" || paymentResp.ApprovalURL == "" {
		return "", models.NewPaymentInitiationError(paymentResp.Message)
	}

	return paymentResp.ApprovalURL, nil
}

// BookEvent posts the intent to the backend's bookEvent endpoint. Both the
// zero-cost direct path and the post-payment finalization path use this call;
// the payload shape is identical.
func (c *EventureClient) BookEvent(ctx context.Context, token string, intent *models.BookingIntent) (*models.BookingResult, error) {
	resp, err := c.postJSON(ctx, token, "/api/bookEvent", intent)
	if err != nil {
		return nil, fmt.Errorf("failed to send booking request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return nil, &models.BookingConfirmationError{
			StatusCode:     resp.StatusCode,
			SessionExpired: true,
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var backendErr backendError
		_ = json.NewDecoder(resp.Body).Decode(&backendErr)
		return nil, &models.BookingConfirmationError{
			Message:    backendErr.text(),
			StatusCode: resp.StatusCode,
		}
	}

	var result models.BookingResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode booking response: %w", err)
	}

	return &result, nil
}

// CancelBooking cancels an existing booking. The backend responds with a
// plain-text confirmation message.
func (c *EventureClient) CancelBooking(ctx context.Context, token, bookingID, userID string) (string, error) {
	body := models.CancelBookingRequest{
		BookingID: bookingID,
		UserID:    userID,
	}

	resp, err := c.postJSON(ctx, token, "/api/cancelBooking", body)
	if err != nil {
		return "", fmt.Errorf("failed to send cancellation request: %w", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read cancellation response: %w", err)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		return "", models.ErrSessionExpired
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		message := strings.TrimSpace(string(payload))
		var backendErr backendError
		if json.Unmarshal(payload, &backendErr) == nil && backendErr.text() != "" {
			message = backendErr.text()
		}
		return "", fmt.Errorf("cancellation rejected: %s", message)
	}

	return strings.TrimSpace(string(payload)), nil
}

// GetEvent fetches a single event.
func (c *EventureClient) GetEvent(ctx context.Context, token, eventID string) (*models.Event, error) {
	resp, err := c.get(ctx, token, "/api/events/"+eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch event: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, models.ErrEventNotFound
	}
	if resp.StatusCode == http.StatusUnauthorized {
		return nil, models.ErrSessionExpired
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("event request failed with status %d", resp.StatusCode)
	}

	var event models.Event
	if err := json.NewDecoder(resp.Body).Decode(&event); err != nil {
		return nil, fmt.Errorf("failed to decode event response: %w", err)
	}

	return &event, nil
}

// ListEvents fetches the event listing shown to browsing customers.
func (c *EventureClient) ListEvents(ctx context.Context, token string) ([]*models.Event, error) {
	resp, err := c.get(ctx, token, "/api/events")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch events: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return nil, models.ErrSessionExpired
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("events request failed with status %d", resp.StatusCode)
	}

	var events []*models.Event
	if err := json.NewDecoder(resp.Body).Decode(&events); err != nil {
		return nil, fmt.Errorf("failed to decode events response: %w", err)
	}

	return events, nil
}

func (c *EventureClient) postJSON(ctx context.Context, token, path string, body interface{}) (*http.Response, error) {
	jsonData, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+path, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	c.setHeaders(req, token)
	req.Header.Set("Content-Type", "application/json")

	return c.client.Do(req)
}

func (c *EventureClient) get(ctx context.Context, token, path string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.BaseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	c.setHeaders(req, token)

	return c.client.Do(req)
}

func (c *EventureClient) setHeaders(req *http.Request, token string) {
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}
