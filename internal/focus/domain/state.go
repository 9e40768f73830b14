package domain

import (
	"fmt"
	"time"
)

// State is the tracker's position in its state machine.
type State string

const (
	StateIdle      State = "idle"
	StateRunning   State = "running"
	StatePaused    State = "paused"
	StateCompleted State = "completed"
)

// ParseState converts a stored state name.
func ParseState(s string) (State, error) {
	switch st := State(s); st {
	case StateIdle, StateRunning, StatePaused, StateCompleted:
		return st, nil
	default:
		return "", fmt.Errorf("unknown session state %q", s)
	}
}

// PauseReason records why a session is paused. Only absence pauses resume
// on presence.
type PauseReason string

const (
	PauseNone    PauseReason = ""
	PauseAbsence PauseReason = "absence"
	PauseManual  PauseReason = "manual"
)

// Segment is one uninterrupted stretch of running time. End is zero while
// the segment is open.
type Segment struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end,omitzero"`
}

// Open reports whether the segment is still running.
func (s Segment) Open() bool { return s.End.IsZero() }

// Duration returns the segment length, measured to at when open.
func (s Segment) Duration(at time.Time) time.Duration {
	end := s.End
	if s.Open() {
		end = at
	}
	if end.Before(s.Start) {
		return 0
	}
	return end.Sub(s.Start)
}
