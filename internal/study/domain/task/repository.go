package task

import (
	"context"

	"github.com/felixgeelhaar/studybuddy/internal/shared/domain"
)

// Repository defines the interface for task persistence.
type Repository interface {
	domain.Repository[*Task]
	domain.Remover
	// FindAll returns every task in intake order.
	FindAll(ctx context.Context) ([]*Task, error)
	// FindOpen returns tasks with remaining time, in intake order.
	FindOpen(ctx context.Context) ([]*Task, error)
	// NextPosition returns the intake position for the next new task.
	NextPosition(ctx context.Context) (int, error)
}
