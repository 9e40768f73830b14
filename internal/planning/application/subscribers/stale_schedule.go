package subscribers

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/felixgeelhaar/studybuddy/internal/planning/domain"
	"github.com/felixgeelhaar/studybuddy/internal/shared/infrastructure/eventbus"
	"github.com/felixgeelhaar/studybuddy/internal/study/domain/task"
)

// StaleScheduleSubscriber flags the latest schedule when the task list it
// was built from changes.
type StaleScheduleSubscriber struct {
	scheduleRepo domain.Repository
	logger       *slog.Logger
	now          func() time.Time
}

// NewStaleScheduleSubscriber creates a new subscriber.
func NewStaleScheduleSubscriber(scheduleRepo domain.Repository, logger *slog.Logger) *StaleScheduleSubscriber {
	if logger == nil {
		logger = slog.Default()
	}
	return &StaleScheduleSubscriber{scheduleRepo: scheduleRepo, logger: logger, now: time.Now}
}

// EventTypes returns the event types this subscriber handles.
func (s *StaleScheduleSubscriber) EventTypes() []string {
	return []string{
		task.RoutingKeyAdded,
		task.RoutingKeyProgressed,
		task.RoutingKeyRemoved,
	}
}

// Handle processes an event.
func (s *StaleScheduleSubscriber) Handle(ctx context.Context, event *eventbus.ConsumedEvent) error {
	schedule, err := s.scheduleRepo.FindLatest(ctx)
	if errors.Is(err, domain.ErrScheduleNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	// Events older than the schedule were already accounted for.
	if !event.OccurredAt.After(schedule.GeneratedAt()) {
		return nil
	}
	if !schedule.MarkStale(s.now()) {
		return nil
	}
	if err := s.scheduleRepo.Save(ctx, schedule); err != nil {
		return err
	}

	s.logger.Info("schedule marked stale",
		"schedule_id", schedule.ID(),
		"routing_key", event.RoutingKey,
		"task_id", event.AggregateID,
	)
	return nil
}
