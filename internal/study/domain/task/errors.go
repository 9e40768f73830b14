package task

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	// ErrInvalidTask matches every InvalidTaskError.
	ErrInvalidTask  = errors.New("invalid task")
	ErrTaskNotFound = errors.New("task not found")
)

// InvalidTaskError reports a malformed task: missing subject or due date,
// non-positive hours, or importance outside [0,1].
type InvalidTaskError struct {
	TaskID  uuid.UUID
	Subject string
	Reason  string
}

func (e *InvalidTaskError) Error() string {
	switch {
	case e.TaskID != uuid.Nil && e.Subject != "":
		return fmt.Sprintf("invalid task %s (%s): %s", e.Subject, e.TaskID, e.Reason)
	case e.Subject != "":
		return fmt.Sprintf("invalid task %s: %s", e.Subject, e.Reason)
	default:
		return fmt.Sprintf("invalid task: %s", e.Reason)
	}
}

// Is lets errors.Is(err, ErrInvalidTask) match.
func (e *InvalidTaskError) Is(target error) bool {
	return target == ErrInvalidTask
}

func invalid(id uuid.UUID, subject, reason string) error {
	return &InvalidTaskError{TaskID: id, Subject: subject, Reason: reason}
}
