package commands

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/felixgeelhaar/studybuddy/internal/focus/domain"
	planningDomain "github.com/felixgeelhaar/studybuddy/internal/planning/domain"
	sharedApplication "github.com/felixgeelhaar/studybuddy/internal/shared/application"
	sharedDomain "github.com/felixgeelhaar/studybuddy/internal/shared/domain"
	"github.com/felixgeelhaar/studybuddy/internal/shared/infrastructure/outbox"
	"github.com/felixgeelhaar/studybuddy/internal/study/domain/task"
	"github.com/felixgeelhaar/studybuddy/pkg/observability"
	"github.com/google/uuid"
)

// StartSessionCommand starts a session. A nil TaskID picks the first open
// task in schedule order.
type StartSessionCommand struct {
	TaskID uuid.UUID
	Actor  string
}

// PresenceCommand feeds one presence signal to the tracker.
type PresenceCommand struct {
	Present bool
	Actor   string
}

// SessionCommand carries the actor for pause, resume, complete and stop.
type SessionCommand struct {
	Actor string
}

// SessionResult is the tracker state after a command.
type SessionResult struct {
	Session domain.Snapshot
	// Changed is false when the command was accepted but had no effect.
	Changed bool
	// Focused is the time recorded by complete, or discarded by stop.
	Focused time.Duration
	// Remaining is the task's remaining time after complete.
	Remaining time.Duration
}

// SessionHandler runs the tracker commands. Each command loads the
// current tracker, applies one transition and stores the tracker, the
// task it touched and their events in one unit of work.
type SessionHandler struct {
	sessionRepo  domain.Repository
	taskRepo     task.Repository
	scheduleRepo planningDomain.Repository
	outboxRepo   outbox.Repository
	uow          sharedApplication.UnitOfWork
	settings     domain.Settings
	logger       *slog.Logger
	metrics      observability.Metrics
	now          func() time.Time
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(
	sessionRepo domain.Repository,
	taskRepo task.Repository,
	scheduleRepo planningDomain.Repository,
	outboxRepo outbox.Repository,
	uow sharedApplication.UnitOfWork,
	settings domain.Settings,
	logger *slog.Logger,
	metrics observability.Metrics,
) *SessionHandler {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = observability.NoopMetrics{}
	}
	return &SessionHandler{
		sessionRepo:  sessionRepo,
		taskRepo:     taskRepo,
		scheduleRepo: scheduleRepo,
		outboxRepo:   outboxRepo,
		uow:          uow,
		settings:     settings,
		logger:       logger,
		metrics:      metrics,
		now:          time.Now,
	}
}

// WithClock overrides the handler clock.
func (h *SessionHandler) WithClock(now func() time.Time) *SessionHandler {
	h.now = now
	return h
}

// Settings returns the pomodoro settings.
func (h *SessionHandler) Settings() domain.Settings {
	return h.settings
}

// Start begins a session on a scheduled task.
func (h *SessionHandler) Start(ctx context.Context, cmd StartSessionCommand) (*SessionResult, error) {
	return h.mutate(ctx, cmd.Actor, "start", func(txCtx context.Context, s *domain.SessionTracker, now time.Time, res *SessionResult) ([]sharedDomain.AggregateRoot, error) {
		if s.IsActive() {
			return nil, &domain.TransitionError{From: s.State(), Action: "start", Reason: "a session is already in progress"}
		}
		schedule, err := h.latestSchedule(txCtx)
		if err != nil {
			return nil, err
		}

		t, err := h.pickTask(txCtx, cmd.TaskID, schedule)
		if err != nil {
			return nil, err
		}

		var view domain.ScheduleView
		if schedule != nil {
			view = schedule
			if schedule.Stale() {
				h.logger.Warn("starting session against a stale schedule", "schedule_id", schedule.ID())
			}
		}
		if err := s.Start(t, view, now); err != nil {
			return nil, err
		}
		res.Changed = true
		return nil, nil
	})
}

// Presence applies a presence signal. Signals that do not change state
// are accepted and not stored.
func (h *SessionHandler) Presence(ctx context.Context, cmd PresenceCommand) (*SessionResult, error) {
	return h.mutate(ctx, cmd.Actor, "presence", func(_ context.Context, s *domain.SessionTracker, now time.Time, res *SessionResult) ([]sharedDomain.AggregateRoot, error) {
		res.Changed = s.Presence(cmd.Present, now)
		return nil, nil
	})
}

// Pause pauses the running session by hand.
func (h *SessionHandler) Pause(ctx context.Context, cmd SessionCommand) (*SessionResult, error) {
	return h.mutate(ctx, cmd.Actor, "pause", func(_ context.Context, s *domain.SessionTracker, now time.Time, res *SessionResult) ([]sharedDomain.AggregateRoot, error) {
		before := s.PauseReason()
		if err := s.Pause(now); err != nil {
			return nil, err
		}
		res.Changed = before != s.PauseReason()
		return nil, nil
	})
}

// Resume resumes a paused session.
func (h *SessionHandler) Resume(ctx context.Context, cmd SessionCommand) (*SessionResult, error) {
	return h.mutate(ctx, cmd.Actor, "resume", func(_ context.Context, s *domain.SessionTracker, now time.Time, res *SessionResult) ([]sharedDomain.AggregateRoot, error) {
		if err := s.Resume(now); err != nil {
			return nil, err
		}
		res.Changed = true
		return nil, nil
	})
}

// Complete ends the running session and records its focused time on the
// task.
func (h *SessionHandler) Complete(ctx context.Context, cmd SessionCommand) (*SessionResult, error) {
	return h.mutate(ctx, cmd.Actor, "complete", func(txCtx context.Context, s *domain.SessionTracker, now time.Time, res *SessionResult) ([]sharedDomain.AggregateRoot, error) {
		if s.State() != domain.StateRunning {
			return nil, &domain.TransitionError{From: s.State(), Action: "complete"}
		}

		t, err := h.taskRepo.FindByID(txCtx, s.TaskID())
		if err != nil {
			return nil, err
		}
		focused, err := s.Complete(t, now)
		if err != nil {
			return nil, err
		}
		if err := h.taskRepo.Save(txCtx, t); err != nil {
			return nil, err
		}

		res.Changed = true
		res.Focused = focused
		res.Remaining = t.Remaining()
		return []sharedDomain.AggregateRoot{t}, nil
	})
}

// Stop cancels the session. It never fails on state.
func (h *SessionHandler) Stop(ctx context.Context, cmd SessionCommand) (*SessionResult, error) {
	return h.mutate(ctx, cmd.Actor, "stop", func(_ context.Context, s *domain.SessionTracker, now time.Time, res *SessionResult) ([]sharedDomain.AggregateRoot, error) {
		discarded := s.Elapsed(now)
		before := s.State()
		res.Changed = s.Stop(now)
		if res.Changed {
			res.Focused = discarded
		}
		if before == domain.StateCompleted {
			// Completed resets silently but the reset still has to be stored.
			res.Changed = true
		}
		return nil, nil
	})
}

// Tick counts finished work intervals and returns the break due after the
// latest one.
func (h *SessionHandler) Tick(ctx context.Context) (domain.Break, bool, error) {
	var (
		brk domain.Break
		ok  bool
	)
	_, err := h.mutate(ctx, "", "tick", func(_ context.Context, s *domain.SessionTracker, now time.Time, res *SessionResult) ([]sharedDomain.AggregateRoot, error) {
		brk, ok = s.AdvanceRound(h.settings, now)
		res.Changed = ok
		return nil, nil
	})
	return brk, ok, err
}

type mutation func(txCtx context.Context, s *domain.SessionTracker, now time.Time, res *SessionResult) ([]sharedDomain.AggregateRoot, error)

func (h *SessionHandler) mutate(ctx context.Context, actor, action string, fn mutation) (*SessionResult, error) {
	res := &SessionResult{}
	var from, to domain.State

	err := sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		now := h.now()
		s, err := h.current(txCtx, now)
		if err != nil {
			return err
		}
		from = s.State()

		touched, err := fn(txCtx, s, now, res)
		if err != nil {
			return err
		}
		to = s.State()
		res.Session = s.Snapshot()

		if !res.Changed {
			return nil
		}
		if err := h.sessionRepo.Save(txCtx, s); err != nil {
			return err
		}
		return outbox.StageEvents(txCtx, h.outboxRepo, actor, append([]sharedDomain.AggregateRoot{s}, touched...)...)
	})
	if err != nil {
		h.logger.Debug("session command rejected", "action", action, "error", err)
		return nil, err
	}

	if from != to {
		h.metrics.Counter(observability.MetricSessionTransition, 1,
			observability.T("from", string(from)),
			observability.T("to", string(to)),
		)
		h.logger.Info("session transition",
			"action", action,
			"from", from,
			"to", to,
			"task_id", res.Session.TaskID,
		)
	}
	return res, nil
}

func (h *SessionHandler) current(ctx context.Context, now time.Time) (*domain.SessionTracker, error) {
	s, err := h.sessionRepo.FindCurrent(ctx)
	if errors.Is(err, domain.ErrSessionNotFound) {
		return domain.NewSessionTracker(now), nil
	}
	return s, err
}

func (h *SessionHandler) latestSchedule(ctx context.Context) (*planningDomain.Schedule, error) {
	schedule, err := h.scheduleRepo.FindLatest(ctx)
	if errors.Is(err, planningDomain.ErrScheduleNotFound) {
		return nil, nil
	}
	return schedule, err
}

// pickTask loads id, or the first unfinished task of the schedule when id
// is nil.
func (h *SessionHandler) pickTask(ctx context.Context, id uuid.UUID, schedule *planningDomain.Schedule) (*task.Task, error) {
	if id != uuid.Nil {
		return h.taskRepo.FindByID(ctx, id)
	}
	if schedule == nil || schedule.IsEmpty() {
		return nil, &domain.NoScheduleError{Reason: "no schedule has been built"}
	}

	seen := make(map[uuid.UUID]bool)
	for _, entry := range schedule.Entries() {
		if !entry.IsStudy() || seen[entry.TaskID] {
			continue
		}
		seen[entry.TaskID] = true

		t, err := h.taskRepo.FindByID(ctx, entry.TaskID)
		if errors.Is(err, task.ErrTaskNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		if !t.IsComplete() {
			return t, nil
		}
	}
	return nil, &domain.NoScheduleError{Reason: "every scheduled task is complete"}
}
