package domain

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	// ErrNoSchedule matches every NoScheduleError.
	ErrNoSchedule = errors.New("no schedule")
	// ErrInvalidTransition matches every TransitionError.
	ErrInvalidTransition = errors.New("invalid session transition")
	ErrSessionNotFound   = errors.New("focus session not found")
)

// NoScheduleError reports a start attempt for a task that has no entry in
// the current schedule, or when no schedule exists at all.
type NoScheduleError struct {
	TaskID uuid.UUID
	Reason string
}

func (e *NoScheduleError) Error() string {
	return fmt.Sprintf("cannot start session for task %s: %s", e.TaskID, e.Reason)
}

// Is lets errors.Is(err, ErrNoSchedule) match.
func (e *NoScheduleError) Is(target error) bool {
	return target == ErrNoSchedule
}

// TransitionError reports an action the tracker refused in its current
// state. The tracker is left unchanged.
type TransitionError struct {
	From   State
	Action string
	Reason string
}

func (e *TransitionError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("cannot %s a %s session: %s", e.Action, e.From, e.Reason)
	}
	return fmt.Sprintf("cannot %s a %s session", e.Action, e.From)
}

// Is lets errors.Is(err, ErrInvalidTransition) match.
func (e *TransitionError) Is(target error) bool {
	return target == ErrInvalidTransition
}
