package domain

import (
	"time"

	sharedDomain "github.com/felixgeelhaar/studybuddy/internal/shared/domain"
	"github.com/felixgeelhaar/studybuddy/internal/study/domain/task"
	"github.com/google/uuid"
)

// ScheduleView is what the tracker needs to know about the current plan.
type ScheduleView interface {
	HasEntryFor(taskID uuid.UUID) bool
}

// SessionTracker is the focus timer. It moves between Idle, Running,
// Paused and Completed on explicit commands and on the presence signal,
// and on completion decrements the tracked task's remaining time by the
// focused time.
//
// Every method takes the current time; the tracker never reads a clock.
// It is not safe for concurrent use.
type SessionTracker struct {
	sharedDomain.BaseAggregateRoot
	state       State
	pauseReason PauseReason
	taskID      uuid.UUID
	subject     string
	segments    []Segment
	rounds      int
	startedAt   time.Time
	endedAt     time.Time
}

// NewSessionTracker returns an Idle tracker.
func NewSessionTracker(now time.Time) *SessionTracker {
	return &SessionTracker{
		BaseAggregateRoot: sharedDomain.NewBaseAggregateRoot(now),
		state:             StateIdle,
	}
}

// Snapshot is the serializable state of a tracker.
type Snapshot struct {
	ID          uuid.UUID   `json:"id"`
	State       State       `json:"state"`
	PauseReason PauseReason `json:"pause_reason,omitempty"`
	TaskID      uuid.UUID   `json:"task_id"`
	Subject     string      `json:"subject,omitempty"`
	Segments    []Segment   `json:"segments"`
	Rounds      int         `json:"rounds"`
	StartedAt   time.Time   `json:"started_at,omitzero"`
	EndedAt     time.Time   `json:"ended_at,omitzero"`
	Version     int         `json:"version"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// Rehydrate rebuilds a tracker from storage.
func Rehydrate(s Snapshot) *SessionTracker {
	entity := sharedDomain.RehydrateBaseEntity(s.ID, s.CreatedAt, s.UpdatedAt)
	return &SessionTracker{
		BaseAggregateRoot: sharedDomain.RehydrateBaseAggregateRoot(entity, s.Version),
		state:             s.State,
		pauseReason:       s.PauseReason,
		taskID:            s.TaskID,
		subject:           s.Subject,
		segments:          append([]Segment(nil), s.Segments...),
		rounds:            s.Rounds,
		startedAt:         s.StartedAt,
		endedAt:           s.EndedAt,
	}
}

// Snapshot captures the tracker's state.
func (s *SessionTracker) Snapshot() Snapshot {
	return Snapshot{
		ID:          s.ID(),
		State:       s.state,
		PauseReason: s.pauseReason,
		TaskID:      s.taskID,
		Subject:     s.subject,
		Segments:    s.Segments(),
		Rounds:      s.rounds,
		StartedAt:   s.startedAt,
		EndedAt:     s.endedAt,
		Version:     s.Version(),
		CreatedAt:   s.CreatedAt(),
		UpdatedAt:   s.UpdatedAt(),
	}
}

func (s *SessionTracker) State() State             { return s.state }
func (s *SessionTracker) PauseReason() PauseReason { return s.pauseReason }
func (s *SessionTracker) TaskID() uuid.UUID        { return s.taskID }
func (s *SessionTracker) Subject() string          { return s.subject }
func (s *SessionTracker) Rounds() int              { return s.rounds }
func (s *SessionTracker) StartedAt() time.Time     { return s.startedAt }
func (s *SessionTracker) EndedAt() time.Time       { return s.endedAt }
func (s *SessionTracker) IsActive() bool           { return s.state == StateRunning || s.state == StatePaused }
func (s *SessionTracker) Segments() []Segment      { return append([]Segment(nil), s.segments...) }

// Elapsed is the focused time so far: the sum of running segments.
func (s *SessionTracker) Elapsed(at time.Time) time.Duration {
	var total time.Duration
	for _, seg := range s.segments {
		total += seg.Duration(at)
	}
	return total
}

// Start begins tracking t. It requires an entry for t in schedule; without
// one it returns a NoScheduleError and stays Idle. Starting from Completed
// resets the tracker first.
func (s *SessionTracker) Start(t *task.Task, schedule ScheduleView, at time.Time) error {
	if s.IsActive() {
		return &TransitionError{From: s.state, Action: "start", Reason: "a session is already in progress"}
	}
	if t == nil {
		return &NoScheduleError{Reason: "no task given"}
	}
	if schedule == nil {
		return &NoScheduleError{TaskID: t.ID(), Reason: "no schedule has been built"}
	}
	if !schedule.HasEntryFor(t.ID()) {
		return &NoScheduleError{TaskID: t.ID(), Reason: "task is not in the current schedule"}
	}
	if t.IsComplete() {
		return &TransitionError{From: s.state, Action: "start", Reason: "task is already complete"}
	}

	s.reset()
	s.state = StateRunning
	s.taskID = t.ID()
	s.subject = t.Subject()
	s.startedAt = at
	s.segments = []Segment{{Start: at}}
	s.Touch(at)

	s.AddDomainEvent(&SessionStarted{
		BaseEvent: s.event(RoutingKeyStarted, at),
		TaskID:    s.taskID,
		Subject:   s.subject,
	})
	return nil
}

// Presence applies the presence signal. Absence pauses a running session;
// presence resumes a session paused for absence. Anything else is ignored.
// It reports whether the state changed.
func (s *SessionTracker) Presence(present bool, at time.Time) bool {
	switch {
	case !present && s.state == StateRunning:
		s.pause(PauseAbsence, at)
		return true
	case present && s.state == StatePaused && s.pauseReason == PauseAbsence:
		s.resume(at)
		return true
	default:
		return false
	}
}

// Pause pauses by hand. A manual pause is never resumed by presence.
// Pausing an absence-paused session turns it into a manual pause.
func (s *SessionTracker) Pause(at time.Time) error {
	switch s.state {
	case StateRunning:
		s.pause(PauseManual, at)
		return nil
	case StatePaused:
		if s.pauseReason != PauseManual {
			s.pauseReason = PauseManual
			s.Touch(at)
		}
		return nil
	default:
		return &TransitionError{From: s.state, Action: "pause"}
	}
}

// Resume resumes a paused session regardless of why it was paused.
func (s *SessionTracker) Resume(at time.Time) error {
	if s.state != StatePaused {
		return &TransitionError{From: s.state, Action: "resume"}
	}
	s.resume(at)
	return nil
}

// Complete ends a running session and records the focused time against t,
// which must be the tracked task. Remaining time is clamped at zero. It
// returns the focused time. Only Running may complete.
func (s *SessionTracker) Complete(t *task.Task, at time.Time) (time.Duration, error) {
	if s.state != StateRunning {
		return 0, &TransitionError{From: s.state, Action: "complete"}
	}
	if t == nil || t.ID() != s.taskID {
		return 0, &TransitionError{From: s.state, Action: "complete", Reason: "task does not match the tracked task"}
	}

	s.closeSegment(at)
	focused := s.Elapsed(at)
	applied := t.RecordProgress(focused, at)

	s.state = StateCompleted
	s.pauseReason = PauseNone
	s.endedAt = at
	s.Touch(at)

	s.AddDomainEvent(&SessionCompleted{
		BaseEvent:        s.event(RoutingKeyCompleted, at),
		TaskID:           s.taskID,
		FocusedSeconds:   int64(focused / time.Second),
		AppliedSeconds:   int64(applied / time.Second),
		RemainingSeconds: int64(t.Remaining() / time.Second),
		Rounds:           s.rounds,
	})
	return focused, nil
}

// Stop cancels the session without recording progress and returns to
// Idle. It is accepted in every state and stopping an Idle tracker does
// nothing. It reports whether an active session was cancelled.
func (s *SessionTracker) Stop(at time.Time) bool {
	switch s.state {
	case StateIdle:
		return false
	case StateCompleted:
		s.reset()
		s.Touch(at)
		return false
	}

	discarded := s.Elapsed(at)
	taskID := s.taskID
	s.reset()
	s.Touch(at)

	s.AddDomainEvent(&SessionStopped{
		BaseEvent:        s.event(RoutingKeyStopped, at),
		TaskID:           taskID,
		DiscardedSeconds: int64(discarded / time.Second),
	})
	return true
}

// AdvanceRound checks whether another full work interval has been focused
// since the last call. When one has, it counts the round and returns the
// break that should follow.
func (s *SessionTracker) AdvanceRound(settings Settings, at time.Time) (Break, bool) {
	if s.state != StateRunning {
		return Break{}, false
	}
	done := settings.RoundsIn(s.Elapsed(at))
	if done <= s.rounds {
		return Break{}, false
	}
	s.rounds = done
	return settings.BreakAfter(done), true
}

// NextRoundIn returns the focused time left until the current work
// interval ends.
func (s *SessionTracker) NextRoundIn(settings Settings, at time.Time) time.Duration {
	if settings.WorkInterval <= 0 {
		return 0
	}
	elapsed := s.Elapsed(at)
	return time.Duration(s.rounds+1)*settings.WorkInterval - elapsed
}

func (s *SessionTracker) pause(reason PauseReason, at time.Time) {
	s.closeSegment(at)
	s.state = StatePaused
	s.pauseReason = reason
	s.Touch(at)

	s.AddDomainEvent(&SessionPaused{
		BaseEvent:      s.event(RoutingKeyPaused, at),
		TaskID:         s.taskID,
		Reason:         reason,
		FocusedSeconds: int64(s.Elapsed(at) / time.Second),
	})
}

func (s *SessionTracker) resume(at time.Time) {
	from := s.pauseReason
	s.state = StateRunning
	s.pauseReason = PauseNone
	s.segments = append(s.segments, Segment{Start: at})
	s.Touch(at)

	s.AddDomainEvent(&SessionResumed{
		BaseEvent:  s.event(RoutingKeyResumed, at),
		TaskID:     s.taskID,
		FromReason: from,
	})
}

func (s *SessionTracker) closeSegment(at time.Time) {
	if n := len(s.segments); n > 0 && s.segments[n-1].Open() {
		end := at
		if end.Before(s.segments[n-1].Start) {
			end = s.segments[n-1].Start
		}
		s.segments[n-1].End = end
	}
}

func (s *SessionTracker) reset() {
	s.state = StateIdle
	s.pauseReason = PauseNone
	s.taskID = uuid.Nil
	s.subject = ""
	s.segments = nil
	s.rounds = 0
	s.startedAt = time.Time{}
	s.endedAt = time.Time{}
}

func (s *SessionTracker) event(routingKey string, at time.Time) sharedDomain.BaseEvent {
	return sharedDomain.NewBaseEvent(s.ID(), AggregateType, routingKey, at)
}
