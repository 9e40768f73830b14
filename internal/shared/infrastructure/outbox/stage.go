package outbox

import (
	"context"

	sharedApplication "github.com/felixgeelhaar/studybuddy/internal/shared/application"
	"github.com/felixgeelhaar/studybuddy/internal/shared/domain"
)

// StageEvents writes the aggregates' pending events to repo, stamped with
// one set of command metadata, and clears them. Call it inside the unit of
// work that saved the aggregates.
func StageEvents(ctx context.Context, repo Repository, actor string, aggregates ...domain.AggregateRoot) error {
	var events []domain.DomainEvent
	for _, agg := range aggregates {
		events = append(events, agg.DomainEvents()...)
	}
	if len(events) == 0 {
		return nil
	}

	sharedApplication.ApplyEventMetadata(events, sharedApplication.NewEventMetadata(ctx, actor))
	msgs, err := MessagesFor(events)
	if err != nil {
		return err
	}
	if err := repo.SaveBatch(ctx, msgs); err != nil {
		return err
	}

	for _, agg := range aggregates {
		agg.ClearDomainEvents()
	}
	return nil
}
