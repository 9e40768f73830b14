package task

import (
	"math"
	"strings"
	"time"

	"github.com/felixgeelhaar/studybuddy/internal/shared/domain"
	"github.com/google/uuid"
)

// Task is one unit of study: a subject, an hour estimate and a due date.
// Remaining time only ever decreases; zero means complete.
type Task struct {
	domain.BaseAggregateRoot
	subject      string
	name         string
	total        time.Duration
	remaining    time.Duration
	dueDate      time.Time
	importance   Importance
	hardDeadline bool
	position     int
}

// NewTaskParams holds intake fields. A zero DueDate means none was given.
type NewTaskParams struct {
	Subject      string
	Name         string
	Hours        float64
	DueDate      time.Time
	Importance   Importance
	HardDeadline bool
	Position     int
}

// NewTask validates intake fields and creates a task. Due dates before the
// current day (in now's location) are rejected.
func NewTask(p NewTaskParams, now time.Time) (*Task, error) {
	subject := strings.TrimSpace(p.Subject)
	if subject == "" {
		return nil, invalid(uuid.Nil, "", "subject is required")
	}
	if math.IsNaN(p.Hours) || p.Hours <= 0 {
		return nil, invalid(uuid.Nil, subject, "hours must be positive")
	}
	total := FromHours(p.Hours)
	if total < time.Second {
		return nil, invalid(uuid.Nil, subject, "hours must be at least one second")
	}
	if p.DueDate.IsZero() {
		return nil, invalid(uuid.Nil, subject, "due date is required")
	}
	due := DateOf(p.DueDate)
	if due.Before(DateOf(now)) {
		return nil, invalid(uuid.Nil, subject, "due date is in the past")
	}
	if !p.Importance.Valid() {
		return nil, invalid(uuid.Nil, subject, "importance must be within [0,1]")
	}

	name := strings.TrimSpace(p.Name)
	if name == "" {
		name = subject
	}

	t := &Task{
		BaseAggregateRoot: domain.NewBaseAggregateRoot(now),
		subject:           subject,
		name:              name,
		total:             total,
		remaining:         total,
		dueDate:           due,
		importance:        p.Importance,
		hardDeadline:      p.HardDeadline,
		position:          p.Position,
	}
	t.AddDomainEvent(newTaskAdded(t, now))
	return t, nil
}

// RehydrateParams carries stored task state. No validation is applied.
type RehydrateParams struct {
	ID           uuid.UUID
	Subject      string
	Name         string
	Total        time.Duration
	Remaining    time.Duration
	DueDate      time.Time
	Importance   Importance
	HardDeadline bool
	Position     int
	Version      int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Rehydrate rebuilds a task from storage.
func Rehydrate(p RehydrateParams) *Task {
	entity := domain.RehydrateBaseEntity(p.ID, p.CreatedAt, p.UpdatedAt)
	return &Task{
		BaseAggregateRoot: domain.RehydrateBaseAggregateRoot(entity, p.Version),
		subject:           p.Subject,
		name:              p.Name,
		total:             p.Total,
		remaining:         p.Remaining,
		dueDate:           p.DueDate,
		importance:        p.Importance,
		hardDeadline:      p.HardDeadline,
		position:          p.Position,
	}
}

func (t *Task) Subject() string          { return t.subject }
func (t *Task) Name() string             { return t.name }
func (t *Task) Total() time.Duration     { return t.total }
func (t *Task) Remaining() time.Duration { return t.remaining }
func (t *Task) TotalHours() float64      { return Hours(t.total) }
func (t *Task) RemainingHours() float64  { return Hours(t.remaining) }
func (t *Task) DueDate() time.Time       { return t.dueDate }
func (t *Task) Importance() Importance   { return t.importance }
func (t *Task) HardDeadline() bool       { return t.hardDeadline }
func (t *Task) Position() int            { return t.position }
func (t *Task) IsComplete() bool         { return t.remaining <= 0 }
func (t *Task) Done() time.Duration      { return t.total - t.remaining }

// RecordProgress credits focused time to the task and returns how much was
// applied. Remaining time is clamped at zero; crossing zero also raises
// TaskCompleted.
func (t *Task) RecordProgress(focused time.Duration, at time.Time) time.Duration {
	focused = focused.Truncate(time.Second)
	if focused <= 0 || t.IsComplete() {
		return 0
	}

	applied := min(focused, t.remaining)
	t.remaining -= applied
	t.Touch(at)

	t.AddDomainEvent(&TaskProgressed{
		BaseEvent:        domain.NewBaseEvent(t.ID(), AggregateType, RoutingKeyProgressed, at),
		FocusedSeconds:   int64(applied / time.Second),
		RemainingSeconds: int64(t.remaining / time.Second),
	})
	if t.remaining == 0 {
		t.AddDomainEvent(&TaskCompleted{
			BaseEvent: domain.NewBaseEvent(t.ID(), AggregateType, RoutingKeyCompleted, at),
			Subject:   t.subject,
		})
	}
	return applied
}

// MarkRemoved records the removal. The repository deletes the row.
func (t *Task) MarkRemoved(at time.Time) {
	t.AddDomainEvent(&TaskRemoved{
		BaseEvent: domain.NewBaseEvent(t.ID(), AggregateType, RoutingKeyRemoved, at),
		Subject:   t.subject,
	})
}
