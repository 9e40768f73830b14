package domain

import (
	"context"

	"github.com/google/uuid"
)

// Repository is the persistence contract every stored aggregate shares.
// Context repositories embed it and add their own finders.
type Repository[T AggregateRoot] interface {
	Save(ctx context.Context, aggregate T) error
	// FindByID returns the context's not-found sentinel for unknown ids.
	FindByID(ctx context.Context, id uuid.UUID) (T, error)
}

// Remover is implemented by repositories whose aggregates can be deleted.
type Remover interface {
	Delete(ctx context.Context, id uuid.UUID) error
}
