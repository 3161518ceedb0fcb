package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

const (
	defaultRecentLimit = 50
	maxRecentLimit     = 200
)

// Command outcomes recorded in the audit trail.
const (
	OutcomeOK      = "ok"
	OutcomeError   = "error"
	OutcomeDropped = "dropped"
)

// Entry is one dispatched command in the audit trail.
type Entry struct {
	ID        int64     `json:"id"`
	Topic     string    `json:"topic"`
	Payload   string    `json:"payload"`
	Operation string    `json:"operation"`
	Outcome   string    `json:"outcome"`
	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Repository persists the command audit trail in SQLite.
//
// Every payload the bridge handles is recorded with the operation it
// resolved to and how it went, so a flaky TV or a misbehaving publisher
// can be diagnosed after the fact.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a command history repository.
//
// Parameters:
//   - db: Open SQLite connection used for queries
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Record inserts a new audit entry for a handled command.
//
// The ID and CreatedAt fields of the entry are ignored; the database
// assigns both.
func (r *Repository) Record(ctx context.Context, e Entry) error {
	if e.Topic == "" {
		return fmt.Errorf("topic is required")
	}
	if e.Outcome == "" {
		return fmt.Errorf("outcome is required")
	}

	_, err := r.db.ExecContext(ctx,
		"INSERT INTO command_history (topic, payload, operation, outcome, error) VALUES (?, ?, ?, ?, ?)",
		e.Topic,
		e.Payload,
		e.Operation,
		e.Outcome,
		e.Error,
	)
	if err != nil {
		return fmt.Errorf("inserting command history: %w", err)
	}

	return nil
}

// Recent returns the latest audit entries, newest first.
//
// Parameters:
//   - ctx: Context for cancellation and timeout
//   - limit: Maximum entries to return (default 50, max 200)
func (r *Repository) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = defaultRecentLimit
	}
	if limit > maxRecentLimit {
		limit = maxRecentLimit
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, topic, payload, operation, outcome, error, created_at
		 FROM command_history
		 ORDER BY id DESC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying command history: %w", err)
	}
	defer rows.Close()

	entries := make([]Entry, 0, limit)
	for rows.Next() {
		var entry Entry
		var createdAt string

		if err := rows.Scan(&entry.ID, &entry.Topic, &entry.Payload, &entry.Operation, &entry.Outcome, &entry.Error, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning command history: %w", err)
		}

		timestamp, err := parseTimestamp(createdAt)
		if err != nil {
			return nil, err
		}
		entry.CreatedAt = timestamp

		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating command history: %w", err)
	}

	return entries, nil
}

// Prune deletes audit entries older than the given duration.
//
// Returns the number of rows deleted.
func (r *Repository) Prune(ctx context.Context, olderThan time.Duration) (int64, error) {
	if olderThan <= 0 {
		return 0, fmt.Errorf("olderThan must be positive")
	}

	cutoff := time.Now().UTC().Add(-olderThan).Format(time.RFC3339)
	result, err := r.db.ExecContext(ctx,
		"DELETE FROM command_history WHERE created_at < ?",
		cutoff,
	)
	if err != nil {
		return 0, fmt.Errorf("deleting command history: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("checking rows affected: %w", err)
	}

	return rowsAffected, nil
}

// parseTimestamp parses a timestamp stored in SQLite.
func parseTimestamp(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, fmt.Errorf("created_at is empty")
	}

	timestamp, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing created_at: %w", err)
	}
	return timestamp, nil
}
