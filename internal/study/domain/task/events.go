package task

import (
	"time"

	"github.com/felixgeelhaar/studybuddy/internal/shared/domain"
)

const (
	AggregateType = "Task"

	RoutingKeyAdded      = "study.task.added"
	RoutingKeyProgressed = "study.task.progressed"
	RoutingKeyCompleted  = "study.task.completed"
	RoutingKeyRemoved    = "study.task.removed"
)

// TaskAdded is emitted when a task enters the study plan.
type TaskAdded struct {
	domain.BaseEvent
	Subject      string  `json:"subject"`
	Name         string  `json:"name"`
	TotalSeconds int64   `json:"total_seconds"`
	DueDate      string  `json:"due_date"`
	Importance   float64 `json:"importance"`
	HardDeadline bool    `json:"hard_deadline"`
}

func newTaskAdded(t *Task, at time.Time) *TaskAdded {
	return &TaskAdded{
		BaseEvent:    domain.NewBaseEvent(t.ID(), AggregateType, RoutingKeyAdded, at),
		Subject:      t.subject,
		Name:         t.name,
		TotalSeconds: int64(t.total / time.Second),
		DueDate:      t.dueDate.Format(time.DateOnly),
		Importance:   float64(t.importance),
		HardDeadline: t.hardDeadline,
	}
}

// TaskProgressed is emitted when focused time is credited to a task.
type TaskProgressed struct {
	domain.BaseEvent
	FocusedSeconds   int64 `json:"focused_seconds"`
	RemainingSeconds int64 `json:"remaining_seconds"`
}

// TaskCompleted is emitted when remaining time reaches zero.
type TaskCompleted struct {
	domain.BaseEvent
	Subject string `json:"subject"`
}

// TaskRemoved is emitted before a task is deleted.
type TaskRemoved struct {
	domain.BaseEvent
	Subject string `json:"subject"`
}
