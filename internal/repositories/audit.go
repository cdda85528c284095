package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"eventure-gateway/internal/models"

	"github.com/google/uuid"
)

// AuditOutcome classifies how a booking attempt ended.
type AuditOutcome string

const (
	AuditDirectBooked AuditOutcome = "direct_booked"
	AuditFinalized    AuditOutcome = "finalized"
	AuditFailed       AuditOutcome = "failed"
	AuditAuthExpired  AuditOutcome = "auth_expired"
	AuditCancelled    AuditOutcome = "cancelled"
)

// AuditRecord is one row of the local booking audit trail.
type AuditRecord struct {
	ID               string
	SessionKey       string
	UserID           string
	EventID          string
	TicketCount      int
	TotalTicketPrice float64
	BookingID        string
	Outcome          AuditOutcome
	Detail           string
	CreatedAt        time.Time
}

// AuditRepository records booking flow outcomes for support and debugging.
// It is best-effort only; callers log failures and move on.
type AuditRepository struct {
	db *sql.DB
}

// NewAuditRepository creates a new audit repository
func NewAuditRepository(db *sql.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

// Record inserts an audit row for the given intent and outcome.
func (r *AuditRepository) Record(ctx context.Context, sessionKey string, intent *models.BookingIntent, bookingID string, outcome AuditOutcome, detail string) error {
	query := `
		INSERT INTO booking_audit (id, session_key, user_id, event_id, ticket_count, total_ticket_price, booking_id, outcome, detail, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	var userID, eventID string
	var ticketCount int
	var total float64
	if intent != nil {
		userID = intent.UserID
		eventID = intent.EventID
		ticketCount = intent.TicketCount
		total = intent.TotalTicketPrice
	}

	_, err := r.db.ExecContext(ctx, query,
		uuid.NewString(),
		sessionKey,
		userID,
		eventID,
		ticketCount,
		total,
		sql.NullString{String: bookingID, Valid: bookingID != ""},
		string(outcome),
		sql.NullString{String: detail, Valid: detail != ""},
		time.Now(),
	)
	if err != nil {
		return fmt.Errorf("failed to record booking audit: %w", err)
	}

	return nil
}

// GetByUser returns a user's most recent audit rows, newest first.
func (r *AuditRepository) GetByUser(ctx context.Context, userID string, limit int) ([]*AuditRecord, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, session_key, user_id, event_id, ticket_count, total_ticket_price,
		       COALESCE(booking_id, ''), outcome, COALESCE(detail, ''), created_at
		FROM booking_audit
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query booking audit: %w", err)
	}
	defer rows.Close()

	var records []*AuditRecord
	for rows.Next() {
		record := &AuditRecord{}
		var outcome string
		if err := rows.Scan(
			&record.ID,
			&record.SessionKey,
			&record.UserID,
			&record.EventID,
			&record.TicketCount,
			&record.TotalTicketPrice,
			&record.BookingID,
			&outcome,
			&record.Detail,
			&record.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan booking audit row: %w", err)
		}
		record.Outcome = AuditOutcome(outcome)
		records = append(records, record)
	}

	return records, rows.Err()
}
