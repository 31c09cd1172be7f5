package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"bloom/internal/domain"
)

// staleAfter is how long a claimed event may stay in processing before it
// is handed out again.
const staleAfter = 5 * time.Minute

type MySQLOutboxRepository struct {
	db *sql.DB
}

func NewMySQLOutboxRepository(db *sql.DB) *MySQLOutboxRepository {
	return &MySQLOutboxRepository{db: db}
}

// Enqueue stores an event inside the caller's transaction so it commits or
// rolls back together with the change it describes.
func (r *MySQLOutboxRepository) Enqueue(ctx context.Context, tx *sql.Tx, eventID, eventType string, payload []byte) error {
	query := `
		INSERT INTO outbox_events (event_id, event_type, payload, status, next_retry)
		VALUES (?, ?, ?, ?, ?)
	`
	_, err := tx.ExecContext(ctx, query, eventID, eventType, payload, domain.OutboxPending, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("enqueueing outbox event: %w", err)
	}
	return nil
}

// Claim moves up to limit due events to processing and returns them. Rows
// locked by another dispatcher are skipped.
func (r *MySQLOutboxRepository) Claim(ctx context.Context, limit int) ([]domain.OutboxEvent, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning claim: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	rows, err := tx.QueryContext(ctx, `
		SELECT id, event_id, event_type, payload, status, attempts, next_retry, created_at
		FROM outbox_events
		WHERE (status = ? AND next_retry <= ?)
		   OR (status = ? AND updated_at <= ?)
		ORDER BY id
		LIMIT ?
		FOR UPDATE SKIP LOCKED`,
		domain.OutboxPending, now, domain.OutboxProcessing, now.Add(-staleAfter), limit,
	)
	if err != nil {
		return nil, fmt.Errorf("selecting outbox events: %w", err)
	}

	var events []domain.OutboxEvent
	for rows.Next() {
		var e domain.OutboxEvent
		if err := rows.Scan(&e.ID, &e.EventID, &e.EventType, &e.Payload, &e.Status, &e.Attempts, &e.NextRetry, &e.CreatedAt); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scanning outbox event: %w", err)
		}
		events = append(events, e)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating outbox events: %w", err)
	}

	for i := range events {
		if _, err := tx.ExecContext(ctx,
			`UPDATE outbox_events SET status = ?, updated_at = ? WHERE id = ?`,
			domain.OutboxProcessing, now, events[i].ID,
		); err != nil {
			return nil, fmt.Errorf("claiming outbox event: %w", err)
		}
		events[i].Status = domain.OutboxProcessing
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing claim: %w", err)
	}
	return events, nil
}

func (r *MySQLOutboxRepository) MarkSent(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx,
		`UPDATE outbox_events SET status = ?, updated_at = ? WHERE id = ?`,
		domain.OutboxSent, time.Now().UTC(), id,
	); err != nil {
		return fmt.Errorf("marking outbox event sent: %w", err)
	}
	return nil
}

// MarkFailed returns the event to pending with its attempt count bumped and
// the next retry pushed out.
func (r *MySQLOutboxRepository) MarkFailed(ctx context.Context, id int64, nextRetry time.Time) error {
	if _, err := r.db.ExecContext(ctx,
		`UPDATE outbox_events SET status = ?, attempts = attempts + 1, next_retry = ?, updated_at = ? WHERE id = ?`,
		domain.OutboxPending, nextRetry.UTC(), time.Now().UTC(), id,
	); err != nil {
		return fmt.Errorf("marking outbox event failed: %w", err)
	}
	return nil
}
