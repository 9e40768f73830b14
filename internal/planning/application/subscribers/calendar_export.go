package subscribers

import (
	"context"
	"log/slog"

	"github.com/felixgeelhaar/studybuddy/internal/planning/application/commands"
	"github.com/felixgeelhaar/studybuddy/internal/planning/domain"
	"github.com/felixgeelhaar/studybuddy/internal/shared/infrastructure/eventbus"
)

// CalendarExportSubscriber pushes each generated schedule to the calendar.
// A failed export is returned so the outbox retries it.
type CalendarExportSubscriber struct {
	export *commands.ExportScheduleHandler
	logger *slog.Logger
}

// NewCalendarExportSubscriber creates a new subscriber.
func NewCalendarExportSubscriber(export *commands.ExportScheduleHandler, logger *slog.Logger) *CalendarExportSubscriber {
	if logger == nil {
		logger = slog.Default()
	}
	return &CalendarExportSubscriber{export: export, logger: logger}
}

// EventTypes returns the event types this subscriber handles.
func (s *CalendarExportSubscriber) EventTypes() []string {
	return []string{domain.RoutingKeyGenerated}
}

// Handle processes an event.
func (s *CalendarExportSubscriber) Handle(ctx context.Context, event *eventbus.ConsumedEvent) error {
	if !s.export.Enabled() {
		s.logger.Debug("calendar export disabled, skipping event", "routing_key", event.RoutingKey)
		return nil
	}

	var payload domain.ScheduleGenerated
	if err := event.Decode(&payload); err != nil {
		return err
	}
	if payload.Entries == 0 {
		return nil
	}

	_, err := s.export.Handle(ctx, commands.ExportScheduleCommand{ScheduleID: event.AggregateID})
	return err
}
