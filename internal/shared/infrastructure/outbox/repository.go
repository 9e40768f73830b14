package outbox

import (
	"context"
	"time"
)

// Repository persists outbox messages. SaveBatch joins the unit of
// work carried by ctx.
type Repository interface {
	SaveBatch(ctx context.Context, msgs []*Message) error
	// GetUnpublished returns pending messages due at or before now, oldest first.
	GetUnpublished(ctx context.Context, now time.Time, limit int) ([]*Message, error)
	MarkPublished(ctx context.Context, id int64, at time.Time) error
	MarkFailed(ctx context.Context, id int64, reason string, nextRetryAt time.Time) error
	MarkDead(ctx context.Context, id int64, reason string, at time.Time) error
	// DeletePublishedBefore prunes delivered messages.
	DeletePublishedBefore(ctx context.Context, before time.Time) (int64, error)
}
