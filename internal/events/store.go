package events

import (
	"context"
	"database/sql"
	"fmt"
)

// Store persists events in Postgres. Append-only enforcement: no Update or
// Delete methods exposed.
type Store struct {
	DB *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{DB: db}
}

func (s *Store) Append(ctx context.Context, evt Event) error {
	query := `
		INSERT INTO event_logs (id, occurred_at, kind, details)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO NOTHING
	`
	_, err := s.DB.ExecContext(ctx, query, evt.ID, evt.Timestamp, string(evt.Kind), evt.Details)
	if err != nil {
		return fmt.Errorf("append event: %w", err)
	}
	return nil
}

func (s *Store) List(ctx context.Context, limit int) ([]Event, error) {
	if limit <= 0 {
		limit = 100
	}

	query := `
		SELECT id, occurred_at, kind, details
		FROM event_logs
		ORDER BY occurred_at DESC, id DESC
		LIMIT $1
	`
	rows, err := s.DB.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Event
	for rows.Next() {
		var evt Event
		var kind string
		if err := rows.Scan(&evt.ID, &evt.Timestamp, &kind, &evt.Details); err != nil {
			return nil, err
		}
		evt.Kind = Kind(kind)
		out = append(out, evt)
	}
	return out, rows.Err()
}
