package outbox

import (
	"context"
	"fmt"
	"time"

	"github.com/felixgeelhaar/studybuddy/internal/shared/infrastructure/database"
	"github.com/google/uuid"
)

// SQLRepository stores messages in the outbox table on SQLite or Postgres.
type SQLRepository struct {
	conn database.Connection
}

// NewSQLRepository creates a SQLRepository.
func NewSQLRepository(conn database.Connection) *SQLRepository {
	return &SQLRepository{conn: conn}
}

const insertMessage = `INSERT INTO outbox
    (event_id, aggregate_type, aggregate_id, routing_key, payload, metadata, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?)`

func (r *SQLRepository) SaveBatch(ctx context.Context, msgs []*Message) error {
	exec := database.ExecutorFromContext(ctx, r.conn)
	for _, m := range msgs {
		_, err := exec.Exec(ctx, insertMessage,
			m.EventID.String(),
			m.AggregateType,
			m.AggregateID.String(),
			m.RoutingKey,
			string(m.Payload),
			string(m.Metadata),
			database.FormatTime(m.CreatedAt),
		)
		if err != nil {
			return fmt.Errorf("insert outbox message %s: %w", m.RoutingKey, err)
		}
	}
	return nil
}

const selectPending = `SELECT id, event_id, aggregate_type, aggregate_id, routing_key, payload, metadata,
       created_at, retry_count, last_error, next_retry_at
FROM outbox
WHERE published_at IS NULL
  AND dead_lettered_at IS NULL
  AND (next_retry_at IS NULL OR next_retry_at <= ?)
ORDER BY id
LIMIT ?`

func (r *SQLRepository) GetUnpublished(ctx context.Context, now time.Time, limit int) ([]*Message, error) {
	rows, err := database.ExecutorFromContext(ctx, r.conn).Query(ctx, selectPending, database.FormatTime(now), limit)
	if err != nil {
		return nil, fmt.Errorf("query outbox: %w", err)
	}
	defer rows.Close()

	var msgs []*Message
	for rows.Next() {
		var (
			m                    Message
			eventID, aggregateID string
			payload, metadata    string
			createdAt            string
			nextRetryAt          *string
		)
		if err := rows.Scan(&m.ID, &eventID, &m.AggregateType, &aggregateID, &m.RoutingKey,
			&payload, &metadata, &createdAt, &m.RetryCount, &m.LastError, &nextRetryAt); err != nil {
			return nil, err
		}
		if m.EventID, err = uuid.Parse(eventID); err != nil {
			return nil, fmt.Errorf("outbox row %d: %w", m.ID, err)
		}
		if m.AggregateID, err = uuid.Parse(aggregateID); err != nil {
			return nil, fmt.Errorf("outbox row %d: %w", m.ID, err)
		}
		if m.CreatedAt, err = database.ParseTime(createdAt); err != nil {
			return nil, fmt.Errorf("outbox row %d: %w", m.ID, err)
		}
		if m.NextRetryAt, err = database.ParseNullTime(nextRetryAt); err != nil {
			return nil, fmt.Errorf("outbox row %d: %w", m.ID, err)
		}
		m.Payload = []byte(payload)
		m.Metadata = []byte(metadata)
		msgs = append(msgs, &m)
	}
	return msgs, rows.Err()
}

func (r *SQLRepository) MarkPublished(ctx context.Context, id int64, at time.Time) error {
	_, err := database.ExecutorFromContext(ctx, r.conn).Exec(ctx,
		`UPDATE outbox SET published_at = ?, last_error = NULL WHERE id = ?`,
		database.FormatTime(at), id)
	return err
}

func (r *SQLRepository) MarkFailed(ctx context.Context, id int64, reason string, nextRetryAt time.Time) error {
	_, err := database.ExecutorFromContext(ctx, r.conn).Exec(ctx,
		`UPDATE outbox SET retry_count = retry_count + 1, last_error = ?, next_retry_at = ? WHERE id = ?`,
		reason, database.FormatTime(nextRetryAt), id)
	return err
}

func (r *SQLRepository) MarkDead(ctx context.Context, id int64, reason string, at time.Time) error {
	_, err := database.ExecutorFromContext(ctx, r.conn).Exec(ctx,
		`UPDATE outbox SET retry_count = retry_count + 1, last_error = ?, dead_lettered_at = ?, dead_letter_reason = ? WHERE id = ?`,
		reason, database.FormatTime(at), reason, id)
	return err
}

func (r *SQLRepository) DeletePublishedBefore(ctx context.Context, before time.Time) (int64, error) {
	res, err := database.ExecutorFromContext(ctx, r.conn).Exec(ctx,
		`DELETE FROM outbox WHERE published_at IS NOT NULL AND published_at < ?`,
		database.FormatTime(before))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
