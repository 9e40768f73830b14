package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/felixgeelhaar/studybuddy/internal/focus/domain"
	"github.com/felixgeelhaar/studybuddy/internal/shared/infrastructure/database"
)

const currentKey = "focus:session:current"

// CachedSessionRepository decorates a session repository with a snapshot
// cache. Save invalidates right away and again once its transaction
// commits, so a snapshot another process read before the commit does not
// outlive it. Reads inside a transaction always go to the repository and
// never populate the cache. Cache failures are logged and fall through to
// the repository.
type CachedSessionRepository struct {
	next   domain.Repository
	store  Store
	ttl    time.Duration
	logger *slog.Logger
}

// NewCachedSessionRepository wraps next.
func NewCachedSessionRepository(next domain.Repository, store Store, ttl time.Duration, logger *slog.Logger) *CachedSessionRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &CachedSessionRepository{next: next, store: store, ttl: ttl, logger: logger}
}

func (r *CachedSessionRepository) Save(ctx context.Context, s *domain.SessionTracker) error {
	if err := r.next.Save(ctx, s); err != nil {
		return err
	}
	r.invalidate(ctx)
	database.AfterCommit(ctx, func() { r.invalidate(context.WithoutCancel(ctx)) })
	return nil
}

func (r *CachedSessionRepository) invalidate(ctx context.Context) {
	if err := r.store.Delete(ctx, currentKey); err != nil {
		r.logger.Warn("failed to invalidate session cache", "error", err)
	}
}

func (r *CachedSessionRepository) FindCurrent(ctx context.Context) (*domain.SessionTracker, error) {
	if database.InTransaction(ctx) {
		return r.next.FindCurrent(ctx)
	}

	data, err := r.store.Get(ctx, currentKey)
	switch {
	case err == nil:
		var snap domain.Snapshot
		jsonErr := json.Unmarshal(data, &snap)
		if jsonErr == nil {
			return domain.Rehydrate(snap), nil
		}
		r.logger.Warn("discarding corrupt session snapshot", "error", jsonErr)
	case !errors.Is(err, ErrMiss):
		r.logger.Warn("session cache read failed", "error", err)
	}

	s, err := r.next.FindCurrent(ctx)
	if err != nil {
		return nil, err
	}
	if data, err := json.Marshal(s.Snapshot()); err == nil {
		if err := r.store.Set(ctx, currentKey, data, r.ttl); err != nil {
			r.logger.Warn("session cache write failed", "error", err)
		}
	}
	return s, nil
}
