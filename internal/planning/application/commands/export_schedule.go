package commands

import (
	"context"
	"errors"
	"log/slog"

	"github.com/felixgeelhaar/studybuddy/internal/planning/domain"
	"github.com/google/uuid"
)

// ErrNoCalendar is returned when no calendar sink is configured.
var ErrNoCalendar = errors.New("calendar export is not configured")

// CalendarSink publishes schedule entries to an external calendar.
type CalendarSink interface {
	// Export writes the study entries and returns how many were written.
	Export(ctx context.Context, schedule *domain.Schedule) (int, error)
}

// ExportScheduleCommand pushes a schedule to the calendar. A nil ID means
// the latest schedule.
type ExportScheduleCommand struct {
	ScheduleID uuid.UUID
}

// ExportScheduleResult reports what was exported.
type ExportScheduleResult struct {
	ScheduleID uuid.UUID
	Exported   int
}

// ExportScheduleHandler handles the ExportScheduleCommand.
type ExportScheduleHandler struct {
	scheduleRepo domain.Repository
	sink         CalendarSink
	logger       *slog.Logger
}

// NewExportScheduleHandler creates a handler. sink may be nil, in which
// case Handle returns ErrNoCalendar.
func NewExportScheduleHandler(scheduleRepo domain.Repository, sink CalendarSink, logger *slog.Logger) *ExportScheduleHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExportScheduleHandler{scheduleRepo: scheduleRepo, sink: sink, logger: logger}
}

// Enabled reports whether a sink is configured.
func (h *ExportScheduleHandler) Enabled() bool {
	return h.sink != nil
}

// Handle executes the ExportScheduleCommand.
func (h *ExportScheduleHandler) Handle(ctx context.Context, cmd ExportScheduleCommand) (*ExportScheduleResult, error) {
	if h.sink == nil {
		return nil, ErrNoCalendar
	}

	var (
		s   *domain.Schedule
		err error
	)
	if cmd.ScheduleID == uuid.Nil {
		s, err = h.scheduleRepo.FindLatest(ctx)
	} else {
		s, err = h.scheduleRepo.FindByID(ctx, cmd.ScheduleID)
	}
	if err != nil {
		return nil, err
	}

	n, err := h.sink.Export(ctx, s)
	if err != nil {
		return nil, err
	}

	h.logger.Info("schedule exported to calendar", "schedule_id", s.ID(), "events", n)
	return &ExportScheduleResult{ScheduleID: s.ID(), Exported: n}, nil
}
