package audit

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	id "fiscalia/pkg/domain"
)

// PostgresStore persists audit events in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed audit store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Append(ctx context.Context, event Event) error {
	query := `
		INSERT INTO audit_events (occurred_at, action, clearance_id, or_number, actor_id, actor_name, actor_device, request_id, detail)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := s.db.ExecContext(ctx, query,
		event.Timestamp,
		string(event.Action),
		uuid.UUID(event.ClearanceID),
		event.ORNumber,
		uuid.UUID(event.ActorID),
		event.ActorName,
		event.ActorDevice,
		event.RequestID,
		event.Detail,
	)
	if err != nil {
		return fmt.Errorf("append audit event: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListByClearance(ctx context.Context, clearanceID string) ([]Event, error) {
	query := `
		SELECT occurred_at, action, clearance_id, or_number, actor_id, actor_name, actor_device, request_id, detail
		FROM audit_events
		WHERE clearance_id = $1
		ORDER BY occurred_at
	`
	rows, err := s.db.QueryContext(ctx, query, clearanceID)
	if err != nil {
		return nil, fmt.Errorf("list audit events: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var e Event
		var action string
		var clearance, actor uuid.UUID
		if err := rows.Scan(&e.Timestamp, &action, &clearance, &e.ORNumber, &actor, &e.ActorName, &e.ActorDevice, &e.RequestID, &e.Detail); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		e.Action = Action(action)
		e.ClearanceID = id.ClearanceID(clearance)
		e.ActorID = id.UserID(actor)
		events = append(events, e)
	}
	return events, rows.Err()
}
