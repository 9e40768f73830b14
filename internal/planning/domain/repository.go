package domain

import (
	"context"

	sharedDomain "github.com/felixgeelhaar/studybuddy/internal/shared/domain"
)

// Repository defines the interface for schedule persistence.
type Repository interface {
	sharedDomain.Repository[*Schedule]
	// FindLatest returns the most recently generated schedule, or
	// ErrScheduleNotFound.
	FindLatest(ctx context.Context) (*Schedule, error)
}
