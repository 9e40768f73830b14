package domain

import (
	sharedDomain "github.com/felixgeelhaar/studybuddy/internal/shared/domain"
	"github.com/google/uuid"
)

const (
	AggregateType = "FocusSession"

	RoutingKeyStarted   = "focus.session.started"
	RoutingKeyPaused    = "focus.session.paused"
	RoutingKeyResumed   = "focus.session.resumed"
	RoutingKeyCompleted = "focus.session.completed"
	RoutingKeyStopped   = "focus.session.stopped"
)

// SessionStarted is emitted when a session enters Running from Idle.
type SessionStarted struct {
	sharedDomain.BaseEvent
	TaskID  uuid.UUID `json:"task_id"`
	Subject string    `json:"subject"`
}

// SessionPaused is emitted on Running to Paused.
type SessionPaused struct {
	sharedDomain.BaseEvent
	TaskID         uuid.UUID   `json:"task_id"`
	Reason         PauseReason `json:"reason"`
	FocusedSeconds int64       `json:"focused_seconds"`
}

// SessionResumed is emitted on Paused to Running.
type SessionResumed struct {
	sharedDomain.BaseEvent
	TaskID     uuid.UUID   `json:"task_id"`
	FromReason PauseReason `json:"from_reason"`
}

// SessionCompleted carries the focused time applied to the task.
type SessionCompleted struct {
	sharedDomain.BaseEvent
	TaskID           uuid.UUID `json:"task_id"`
	FocusedSeconds   int64     `json:"focused_seconds"`
	AppliedSeconds   int64     `json:"applied_seconds"`
	RemainingSeconds int64     `json:"remaining_seconds"`
	Rounds           int       `json:"rounds"`
}

// SessionStopped is emitted on a manual cancel. Discarded time was never
// applied to the task.
type SessionStopped struct {
	sharedDomain.BaseEvent
	TaskID           uuid.UUID `json:"task_id"`
	DiscardedSeconds int64     `json:"discarded_seconds"`
}
