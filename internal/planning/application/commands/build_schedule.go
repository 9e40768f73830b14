package commands

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/felixgeelhaar/studybuddy/internal/planning/application/services"
	"github.com/felixgeelhaar/studybuddy/internal/planning/domain"
	sharedApplication "github.com/felixgeelhaar/studybuddy/internal/shared/application"
	"github.com/felixgeelhaar/studybuddy/internal/shared/infrastructure/outbox"
	"github.com/felixgeelhaar/studybuddy/internal/study/domain/task"
	"github.com/felixgeelhaar/studybuddy/pkg/observability"
	"github.com/google/uuid"
)

// BuildScheduleCommand builds a new schedule from all open tasks.
type BuildScheduleCommand struct {
	// StartDate defaults to today.
	StartDate time.Time
	// DailyCapacity overrides the configured capacity when positive.
	DailyCapacity time.Duration
	Actor         string
}

// BuildScheduleResult describes the stored schedule.
type BuildScheduleResult struct {
	ScheduleID uuid.UUID
	Schedule   *domain.Schedule
	// Ranked lists the placed tasks in placement order with their scores.
	Ranked []domain.ScoredTask
	// Rejected holds InvalidTaskError and CapacityExhaustedError values
	// for the tasks left out.
	Rejected []error
}

// Err joins the rejections.
func (r *BuildScheduleResult) Err() error {
	return errors.Join(r.Rejected...)
}

// BuildScheduleHandler scores open tasks, lays them out and stores the
// schedule with its ScheduleGenerated event.
type BuildScheduleHandler struct {
	taskRepo     task.Repository
	scheduleRepo domain.Repository
	outboxRepo   outbox.Repository
	uow          sharedApplication.UnitOfWork
	scorer       *services.PriorityScorer
	builder      *services.ScheduleBuilder
	logger       *slog.Logger
	metrics      observability.Metrics
	now          func() time.Time
}

// NewBuildScheduleHandler creates a new BuildScheduleHandler.
func NewBuildScheduleHandler(
	taskRepo task.Repository,
	scheduleRepo domain.Repository,
	outboxRepo outbox.Repository,
	uow sharedApplication.UnitOfWork,
	scorer *services.PriorityScorer,
	builder *services.ScheduleBuilder,
	logger *slog.Logger,
	metrics observability.Metrics,
) *BuildScheduleHandler {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = observability.NoopMetrics{}
	}
	return &BuildScheduleHandler{
		taskRepo:     taskRepo,
		scheduleRepo: scheduleRepo,
		outboxRepo:   outboxRepo,
		uow:          uow,
		scorer:       scorer,
		builder:      builder,
		logger:       logger,
		metrics:      metrics,
		now:          time.Now,
	}
}

// WithClock replaces the wall clock used for the start date and
// timestamps. The scorer keeps its own clock.
func (h *BuildScheduleHandler) WithClock(now func() time.Time) *BuildScheduleHandler {
	h.now = now
	return h
}

// Handle executes the BuildScheduleCommand.
func (h *BuildScheduleHandler) Handle(ctx context.Context, cmd BuildScheduleCommand) (*BuildScheduleResult, error) {
	began := time.Now()
	now := h.now()

	start := cmd.StartDate
	if start.IsZero() {
		start = now
	}

	builder := h.builder
	if cmd.DailyCapacity > 0 {
		cfg := builder.Config()
		cfg.DailyCapacity = cmd.DailyCapacity
		builder = services.NewScheduleBuilder(cfg)
	}

	var result *BuildScheduleResult
	err := sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		tasks, err := h.taskRepo.FindOpen(txCtx)
		if err != nil {
			return err
		}

		scored, invalid := h.scorer.ScoreAll(tasks)
		h.metrics.Counter(observability.MetricTasksScored, int64(len(scored)))
		if len(invalid) > 0 {
			h.metrics.Counter(observability.MetricTasksRejected, int64(len(invalid)), observability.T("reason", "invalid"))
		}

		plan, err := builder.Build(start, scored)
		if err != nil {
			return err
		}
		if len(plan.Failures) > 0 {
			h.metrics.Counter(observability.MetricTasksRejected, int64(len(plan.Failures)), observability.T("reason", "capacity"))
		}

		schedule := domain.NewSchedule(start, builder.Config().DailyCapacity, plan.Entries, now)
		if err := h.scheduleRepo.Save(txCtx, schedule); err != nil {
			return err
		}
		if err := outbox.StageEvents(txCtx, h.outboxRepo, cmd.Actor, schedule); err != nil {
			return err
		}

		result = &BuildScheduleResult{
			ScheduleID: schedule.ID(),
			Schedule:   schedule,
			Ranked:     plan.Ordered,
			Rejected:   append(invalid, plan.Failures...),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	h.metrics.Counter(observability.MetricScheduleBuilds, 1)
	h.metrics.Timing(observability.MetricScheduleDuration, time.Since(began))
	h.logger.Info("schedule built",
		"schedule_id", result.ScheduleID,
		"days", result.Schedule.Days(),
		"entries", len(result.Schedule.Entries()),
		"tasks", len(result.Ranked),
		"rejected", len(result.Rejected),
	)
	for _, rejected := range result.Rejected {
		h.logger.Warn("task left out of schedule", observability.ErrorKey, rejected)
	}
	return result, nil
}
