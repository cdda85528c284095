package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"

	"eventure-gateway/internal/models"
)

// IntentStore is the durable single-slot store for a session's pending
// booking intent. It spans the full-page redirect to the payment processor:
// one slot per session key, last writer wins, and Take consumes the slot
// atomically so an intent is finalized at most once even if two tabs race.
type IntentStore interface {
	// Save stores the intent under the session key, overwriting any prior
	// value unconditionally.
	Save(ctx context.Context, sessionKey string, intent *models.BookingIntent) error

	// Load returns the stored intent without consuming it. A missing or
	// unparseable value yields the empty intent, never an error.
	Load(ctx context.Context, sessionKey string) (*models.BookingIntent, error)

	// Take atomically loads and clears the stored intent. Returns
	// models.ErrNoIntent when the slot is empty or holds garbage.
	Take(ctx context.Context, sessionKey string) (*models.BookingIntent, error)

	// Clear removes the slot. Clearing an empty slot is not an error.
	Clear(ctx context.Context, sessionKey string) error
}

// PostgresIntentStore keeps the intent slot in the booking_intents table. It
// is the fallback when Redis is not configured.
type PostgresIntentStore struct {
	db *sql.DB
}

// NewPostgresIntentStore creates a new Postgres-backed intent store
func NewPostgresIntentStore(db *sql.DB) *PostgresIntentStore {
	return &PostgresIntentStore{db: db}
}

func (s *PostgresIntentStore) Save(ctx context.Context, sessionKey string, intent *models.BookingIntent) error {
	payload, err := json.Marshal(intent)
	if err != nil {
		return fmt.Errorf("failed to marshal booking intent: %w", err)
	}

	query := `
		INSERT INTO booking_intents (session_key, intent, created_at, updated_at)
		VALUES ($1, $2, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		ON CONFLICT (session_key)
		DO UPDATE SET intent = EXCLUDED.intent, updated_at = CURRENT_TIMESTAMP`

	if _, err := s.db.ExecContext(ctx, query, sessionKey, payload); err != nil {
		return fmt.Errorf("failed to save booking intent: %w", err)
	}

	return nil
}

func (s *PostgresIntentStore) Load(ctx context.Context, sessionKey string) (*models.BookingIntent, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx,
		"SELECT intent FROM booking_intents WHERE session_key = $1", sessionKey).Scan(&payload)
	if err == sql.ErrNoRows {
		return &models.BookingIntent{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load booking intent: %w", err)
	}

	return decodeIntent(payload), nil
}

func (s *PostgresIntentStore) Take(ctx context.Context, sessionKey string) (*models.BookingIntent, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx,
		"DELETE FROM booking_intents WHERE session_key = $1 RETURNING intent", sessionKey).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, models.ErrNoIntent
	}
	if err != nil {
		return nil, fmt.Errorf("failed to take booking intent: %w", err)
	}

	intent := decodeIntent(payload)
	if intent.IsEmpty() {
		return nil, models.ErrNoIntent
	}
	return intent, nil
}

func (s *PostgresIntentStore) Clear(ctx context.Context, sessionKey string) error {
	if _, err := s.db.ExecContext(ctx,
		"DELETE FROM booking_intents WHERE session_key = $1", sessionKey); err != nil {
		return fmt.Errorf("failed to clear booking intent: %w", err)
	}
	return nil
}

// decodeIntent turns a stored payload into an intent, degrading corrupt data
// to the empty sentinel rather than propagating a parse error.
func decodeIntent(payload []byte) *models.BookingIntent {
	var intent models.BookingIntent
	if err := json.Unmarshal(payload, &intent); err != nil {
		log.Printf("Discarding unparseable booking intent: %v", err)
		return &models.BookingIntent{}
	}
	return &intent
}
