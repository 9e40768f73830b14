package domain

import "context"

// Repository persists the session tracker.
type Repository interface {
	Save(ctx context.Context, tracker *SessionTracker) error
	// FindCurrent returns the most recently updated tracker, or
	// ErrSessionNotFound.
	FindCurrent(ctx context.Context) (*SessionTracker, error)
}
