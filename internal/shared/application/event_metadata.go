package application

import (
	"context"

	"github.com/felixgeelhaar/studybuddy/internal/shared/domain"
	"github.com/felixgeelhaar/studybuddy/pkg/observability"
	"github.com/google/uuid"
)

type metadataSetter interface {
	SetMetadata(metadata domain.EventMetadata)
}

// NewEventMetadata builds metadata for events raised by one command. The
// correlation ID is taken from ctx when the caller set one.
func NewEventMetadata(ctx context.Context, actor string) domain.EventMetadata {
	correlationID := uuid.New()
	if raw := observability.CorrelationID(ctx); raw != "" {
		if parsed, err := uuid.Parse(raw); err == nil {
			correlationID = parsed
		}
	}
	return domain.EventMetadata{
		CorrelationID: correlationID,
		CausationID:   uuid.New(),
		Actor:         actor,
	}
}

// ApplyEventMetadata sets metadata on every event that accepts it.
func ApplyEventMetadata(events []domain.DomainEvent, metadata domain.EventMetadata) {
	for _, event := range events {
		if setter, ok := event.(metadataSetter); ok {
			setter.SetMetadata(metadata)
		}
	}
}
