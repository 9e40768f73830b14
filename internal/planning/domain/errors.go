package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrCapacityExhausted matches every CapacityExhaustedError.
	ErrCapacityExhausted = errors.New("capacity exhausted")
	ErrScheduleNotFound  = errors.New("schedule not found")
	ErrInvalidCapacity   = errors.New("daily capacity must be positive and at most 24h")
)

// CapacityExhaustedError reports a hard-deadline task that cannot be
// finished by its due date at the configured daily capacity.
type CapacityExhaustedError struct {
	TaskID  uuid.UUID
	Subject string
	DueDate time.Time
	// FinishesOn is the date the task would finish; zero when it is
	// already overdue.
	FinishesOn time.Time
}

func (e *CapacityExhaustedError) Error() string {
	if e.FinishesOn.IsZero() {
		return fmt.Sprintf("capacity exhausted: %s (%s) is already past its deadline %s",
			e.Subject, e.TaskID, e.DueDate.Format(time.DateOnly))
	}
	return fmt.Sprintf("capacity exhausted: %s (%s) is due %s but would finish %s",
		e.Subject, e.TaskID, e.DueDate.Format(time.DateOnly), e.FinishesOn.Format(time.DateOnly))
}

// Is lets errors.Is(err, ErrCapacityExhausted) match.
func (e *CapacityExhaustedError) Is(target error) bool {
	return target == ErrCapacityExhausted
}
