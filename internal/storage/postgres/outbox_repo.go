package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/romariotrain/vidtube/internal/models"
)

// maxErrorLen bounds last_error so a verbose broker error cannot bloat a row.
const maxErrorLen = 1024

type OutboxRepo struct {
	db *sqlx.DB
}

// OutboxRecord is one video event waiting for, or done with, relay to Kafka.
type OutboxRecord struct {
	ID        int64           `db:"id"`
	EventID   string          `db:"event_id"`
	EventType string          `db:"event_type"`
	VideoID   string          `db:"aggregate_id"`
	Payload   json.RawMessage `db:"payload"`
	Attempts  int             `db:"attempts"`
	CreatedAt time.Time       `db:"occurred_at"`
}

func NewOutboxRepo(db *sqlx.DB) *OutboxRepo {
	return &OutboxRepo{db: db}
}

// Add writes event through tx, which must be the transaction that changes
// the video the event describes.
func (r *OutboxRepo) Add(ctx context.Context, tx sqlx.ExecerContext, event models.DomainEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("outbox marshal %s: %w", event.EventType(), err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO outbox (event_id, event_type, aggregate_id, payload, occurred_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		event.EventID(), event.EventType(), event.AggregateID(), payload, event.OccurredAt(),
	)
	if err != nil {
		return fmt.Errorf("outbox add %s: %w", event.EventType(), err)
	}
	return nil
}

// GetPending returns up to limit unrelayed records, oldest first.
func (r *OutboxRepo) GetPending(ctx context.Context, limit int) ([]OutboxRecord, error) {
	var records []OutboxRecord
	err := r.db.SelectContext(ctx, &records,
		`SELECT id, event_id, event_type, aggregate_id, payload, attempts, occurred_at
		 FROM outbox
		 WHERE processed_at IS NULL
		 ORDER BY id
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("outbox pending: %w", err)
	}
	return records, nil
}

func (r *OutboxRepo) MarkProcessed(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE outbox SET processed_at = NOW() WHERE id = $1`, id); err != nil {
		return fmt.Errorf("outbox mark processed %d: %w", id, err)
	}
	return nil
}

// MarkFailed counts a failed relay attempt and keeps the record pending.
func (r *OutboxRepo) MarkFailed(ctx context.Context, id int64, cause error) error {
	msg := cause.Error()
	if len(msg) > maxErrorLen {
		msg = msg[:maxErrorLen]
	}

	if _, err := r.db.ExecContext(ctx,
		`UPDATE outbox SET attempts = attempts + 1, last_error = $2 WHERE id = $1`,
		id, msg,
	); err != nil {
		return fmt.Errorf("outbox mark failed %d: %w", id, err)
	}
	return nil
}

// PurgeProcessed deletes relayed records older than olderThan and reports
// how many were removed.
func (r *OutboxRepo) PurgeProcessed(ctx context.Context, olderThan time.Duration) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM outbox WHERE processed_at IS NOT NULL AND processed_at < $1`,
		time.Now().Add(-olderThan),
	)
	if err != nil {
		return 0, fmt.Errorf("outbox purge: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("outbox purge rows: %w", err)
	}
	return n, nil
}
