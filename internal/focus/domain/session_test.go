package domain

import (
	"errors"
	"testing"
	"time"

	sharedDomain "github.com/felixgeelhaar/studybuddy/internal/shared/domain"
	"github.com/felixgeelhaar/studybuddy/internal/study/domain/task"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2026, time.March, 2, 9, 0, 0, 0, time.UTC)

type scheduleStub map[uuid.UUID]bool

func (s scheduleStub) HasEntryFor(id uuid.UUID) bool { return s[id] }

func newTask(t *testing.T, hours float64) *task.Task {
	t.Helper()
	tk, err := task.NewTask(task.NewTaskParams{
		Subject:    "Physics",
		Hours:      hours,
		DueDate:    t0.AddDate(0, 0, 7),
		Importance: task.ImportanceHigh,
	}, t0)
	require.NoError(t, err)
	tk.ClearDomainEvents()
	return tk
}

func running(t *testing.T, tk *task.Task) *SessionTracker {
	t.Helper()
	s := NewSessionTracker(t0)
	require.NoError(t, s.Start(tk, scheduleStub{tk.ID(): true}, t0))
	return s
}

func routingKeys(events []sharedDomain.DomainEvent) []string {
	keys := make([]string, 0, len(events))
	for _, e := range events {
		keys = append(keys, e.RoutingKey())
	}
	return keys
}

func TestNewSessionTracker_StartsIdle(t *testing.T) {
	s := NewSessionTracker(t0)

	assert.Equal(t, StateIdle, s.State())
	assert.Equal(t, uuid.Nil, s.TaskID())
	assert.Zero(t, s.Elapsed(t0.Add(time.Hour)))
	assert.Empty(t, s.DomainEvents())
}

func TestSessionTracker_Start(t *testing.T) {
	t.Run("with a schedule entry", func(t *testing.T) {
		tk := newTask(t, 2)
		s := running(t, tk)

		assert.Equal(t, StateRunning, s.State())
		assert.Equal(t, tk.ID(), s.TaskID())
		assert.Equal(t, "Physics", s.Subject())
		assert.Equal(t, t0, s.StartedAt())
		assert.Equal(t, []string{RoutingKeyStarted}, routingKeys(s.DomainEvents()))
	})

	t.Run("empty schedule reports NoScheduleError and stays idle", func(t *testing.T) {
		tk := newTask(t, 2)
		s := NewSessionTracker(t0)

		err := s.Start(tk, scheduleStub{}, t0)

		var noSchedule *NoScheduleError
		require.ErrorAs(t, err, &noSchedule)
		assert.ErrorIs(t, err, ErrNoSchedule)
		assert.Equal(t, tk.ID(), noSchedule.TaskID)
		assert.Equal(t, StateIdle, s.State())
		assert.Empty(t, s.DomainEvents())
	})

	t.Run("nil schedule reports NoScheduleError", func(t *testing.T) {
		s := NewSessionTracker(t0)
		err := s.Start(newTask(t, 2), nil, t0)

		assert.ErrorIs(t, err, ErrNoSchedule)
		assert.Equal(t, StateIdle, s.State())
	})

	t.Run("already running is rejected", func(t *testing.T) {
		tk := newTask(t, 2)
		s := running(t, tk)

		err := s.Start(tk, scheduleStub{tk.ID(): true}, t0.Add(time.Minute))

		assert.ErrorIs(t, err, ErrInvalidTransition)
		assert.Equal(t, StateRunning, s.State())
		assert.Equal(t, t0, s.StartedAt())
	})

	t.Run("from completed starts a fresh session", func(t *testing.T) {
		tk := newTask(t, 2)
		s := running(t, tk)
		_, err := s.Complete(tk, t0.Add(30*time.Minute))
		require.NoError(t, err)

		restart := t0.Add(time.Hour)
		require.NoError(t, s.Start(tk, scheduleStub{tk.ID(): true}, restart))

		assert.Equal(t, StateRunning, s.State())
		assert.Equal(t, restart, s.StartedAt())
		assert.Zero(t, s.Elapsed(restart))
		assert.Len(t, s.Segments(), 1)
	})

	t.Run("complete task is rejected", func(t *testing.T) {
		tk := newTask(t, 1)
		tk.RecordProgress(time.Hour, t0)
		s := NewSessionTracker(t0)

		err := s.Start(tk, scheduleStub{tk.ID(): true}, t0)

		assert.ErrorIs(t, err, ErrInvalidTransition)
		assert.Equal(t, StateIdle, s.State())
	})
}

func TestSessionTracker_PresenceScenario(t *testing.T) {
	tk := newTask(t, 5)
	s := running(t, tk)

	assert.True(t, s.Presence(false, t0.Add(20*time.Minute)))
	assert.Equal(t, StatePaused, s.State())
	assert.Equal(t, PauseAbsence, s.PauseReason())

	assert.True(t, s.Presence(true, t0.Add(50*time.Minute)))
	assert.Equal(t, StateRunning, s.State())

	focused, err := s.Complete(tk, t0.Add(80*time.Minute))
	require.NoError(t, err)

	assert.Equal(t, StateCompleted, s.State())
	assert.Equal(t, 50*time.Minute, focused)
	assert.Equal(t, 5*time.Hour-50*time.Minute, tk.Remaining())
	assert.Equal(t, []string{
		RoutingKeyStarted, RoutingKeyPaused, RoutingKeyResumed, RoutingKeyCompleted,
	}, routingKeys(s.DomainEvents()))

	completed, ok := s.DomainEvents()[3].(*SessionCompleted)
	require.True(t, ok)
	assert.EqualValues(t, 3000, completed.FocusedSeconds)
	assert.EqualValues(t, 3000, completed.AppliedSeconds)
}

func TestSessionTracker_PresenceIgnoredOutsideItsStates(t *testing.T) {
	tk := newTask(t, 2)

	tests := []struct {
		name    string
		setup   func() *SessionTracker
		present bool
		want    State
	}{
		{"idle absent", func() *SessionTracker { return NewSessionTracker(t0) }, false, StateIdle},
		{"idle present", func() *SessionTracker { return NewSessionTracker(t0) }, true, StateIdle},
		{"running present", func() *SessionTracker { return running(t, tk) }, true, StateRunning},
		{"manual pause present", func() *SessionTracker {
			s := running(t, tk)
			require.NoError(t, s.Pause(t0.Add(time.Minute)))
			return s
		}, true, StatePaused},
		{"absence pause absent", func() *SessionTracker {
			s := running(t, tk)
			s.Presence(false, t0.Add(time.Minute))
			return s
		}, false, StatePaused},
		{"completed absent", func() *SessionTracker {
			s := running(t, tk)
			_, err := s.Complete(tk, t0.Add(time.Minute))
			require.NoError(t, err)
			return s
		}, false, StateCompleted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := tt.setup()
			before := len(s.DomainEvents())

			changed := s.Presence(tt.present, t0.Add(2*time.Minute))

			assert.False(t, changed)
			assert.Equal(t, tt.want, s.State())
			assert.Len(t, s.DomainEvents(), before)
		})
	}
}

func TestSessionTracker_ManualPauseIsNotAutoResumed(t *testing.T) {
	tk := newTask(t, 2)
	s := running(t, tk)

	require.NoError(t, s.Pause(t0.Add(10*time.Minute)))
	assert.False(t, s.Presence(true, t0.Add(11*time.Minute)))
	assert.Equal(t, StatePaused, s.State())
	assert.Equal(t, PauseManual, s.PauseReason())

	require.NoError(t, s.Resume(t0.Add(20*time.Minute)))
	assert.Equal(t, StateRunning, s.State())
	assert.Equal(t, 15*time.Minute, s.Elapsed(t0.Add(25*time.Minute)))
}

func TestSessionTracker_PauseUpgradesAbsenceToManual(t *testing.T) {
	tk := newTask(t, 2)
	s := running(t, tk)
	s.Presence(false, t0.Add(5*time.Minute))

	require.NoError(t, s.Pause(t0.Add(6*time.Minute)))
	assert.Equal(t, PauseManual, s.PauseReason())
	assert.False(t, s.Presence(true, t0.Add(7*time.Minute)))
}

func TestSessionTracker_InvalidTransitionsLeaveStateUnchanged(t *testing.T) {
	tk := newTask(t, 2)

	t.Run("complete from paused", func(t *testing.T) {
		s := running(t, tk)
		s.Presence(false, t0.Add(10*time.Minute))

		_, err := s.Complete(tk, t0.Add(20*time.Minute))

		var te *TransitionError
		require.ErrorAs(t, err, &te)
		assert.Equal(t, StatePaused, te.From)
		assert.Equal(t, StatePaused, s.State())
		assert.Equal(t, 2*time.Hour, tk.Remaining())
	})

	t.Run("complete from idle", func(t *testing.T) {
		s := NewSessionTracker(t0)
		_, err := s.Complete(tk, t0)
		assert.ErrorIs(t, err, ErrInvalidTransition)
		assert.Equal(t, StateIdle, s.State())
	})

	t.Run("complete with another task", func(t *testing.T) {
		s := running(t, tk)
		_, err := s.Complete(newTask(t, 1), t0.Add(time.Minute))
		assert.ErrorIs(t, err, ErrInvalidTransition)
		assert.Equal(t, StateRunning, s.State())
	})

	t.Run("pause from idle", func(t *testing.T) {
		assert.ErrorIs(t, NewSessionTracker(t0).Pause(t0), ErrInvalidTransition)
	})

	t.Run("resume while running", func(t *testing.T) {
		s := running(t, tk)
		assert.ErrorIs(t, s.Resume(t0.Add(time.Minute)), ErrInvalidTransition)
		assert.Len(t, s.Segments(), 1)
	})
}

func TestSessionTracker_CompleteClampsAtZero(t *testing.T) {
	tk := newTask(t, 0.5)
	s := running(t, tk)

	focused, err := s.Complete(tk, t0.Add(2*time.Hour))
	require.NoError(t, err)

	assert.Equal(t, 2*time.Hour, focused)
	assert.Zero(t, tk.Remaining())
	assert.True(t, tk.IsComplete())
}

func TestSessionTracker_Stop(t *testing.T) {
	t.Run("idempotent from running", func(t *testing.T) {
		tk := newTask(t, 2)
		s := running(t, tk)

		assert.True(t, s.Stop(t0.Add(30*time.Minute)))
		assert.Equal(t, StateIdle, s.State())
		assert.False(t, s.Stop(t0.Add(31*time.Minute)))
		assert.Equal(t, StateIdle, s.State())

		assert.Equal(t, 2*time.Hour, tk.Remaining())
		assert.Equal(t, []string{RoutingKeyStarted, RoutingKeyStopped}, routingKeys(s.DomainEvents()))
		stopped := s.DomainEvents()[1].(*SessionStopped)
		assert.EqualValues(t, 1800, stopped.DiscardedSeconds)
		assert.Equal(t, tk.ID(), stopped.TaskID)
	})

	t.Run("from paused", func(t *testing.T) {
		s := running(t, newTask(t, 2))
		require.NoError(t, s.Pause(t0.Add(time.Minute)))

		assert.True(t, s.Stop(t0.Add(2*time.Minute)))
		assert.Equal(t, StateIdle, s.State())
		assert.Equal(t, PauseNone, s.PauseReason())
	})

	t.Run("from idle does nothing", func(t *testing.T) {
		s := NewSessionTracker(t0)
		assert.False(t, s.Stop(t0))
		assert.Empty(t, s.DomainEvents())
	})

	t.Run("from completed resets to idle", func(t *testing.T) {
		tk := newTask(t, 2)
		s := running(t, tk)
		_, err := s.Complete(tk, t0.Add(time.Minute))
		require.NoError(t, err)

		assert.False(t, s.Stop(t0.Add(2*time.Minute)))
		assert.Equal(t, StateIdle, s.State())
		assert.Equal(t, uuid.Nil, s.TaskID())
	})
}

func TestSessionTracker_NoPresenceSequenceCompletesFromPaused(t *testing.T) {
	tk := newTask(t, 2)
	s := running(t, tk)

	signals := []bool{false, false, true, false, true, true, false}
	at := t0
	for _, present := range signals {
		at = at.Add(time.Minute)
		prev := s.State()
		s.Presence(present, at)
		if prev == StatePaused {
			assert.NotEqual(t, StateCompleted, s.State())
		}
		if s.State() == StatePaused {
			_, err := s.Complete(tk, at)
			require.Error(t, err)
			assert.Equal(t, StatePaused, s.State())
		}
	}
}

func TestSessionTracker_AdvanceRound(t *testing.T) {
	tk := newTask(t, 10)
	s := running(t, tk)
	settings := DefaultSettings()

	_, ok := s.AdvanceRound(settings, t0.Add(24*time.Minute))
	assert.False(t, ok)

	brk, ok := s.AdvanceRound(settings, t0.Add(25*time.Minute))
	require.True(t, ok)
	assert.Equal(t, Break{Round: 1, Kind: BreakShort, Duration: 5 * time.Minute}, brk)

	_, ok = s.AdvanceRound(settings, t0.Add(26*time.Minute))
	assert.False(t, ok)
	assert.Equal(t, 24*time.Minute, s.NextRoundIn(settings, t0.Add(26*time.Minute)))

	brk, ok = s.AdvanceRound(settings, t0.Add(100*time.Minute))
	require.True(t, ok)
	assert.Equal(t, 4, brk.Round)
	assert.Equal(t, BreakLong, brk.Kind)
	assert.Equal(t, 15*time.Minute, brk.Duration)
	assert.Equal(t, 4, s.Rounds())

	s.Presence(false, t0.Add(101*time.Minute))
	_, ok = s.AdvanceRound(settings, t0.Add(200*time.Minute))
	assert.False(t, ok)
}

func TestSnapshotRoundTrip(t *testing.T) {
	tk := newTask(t, 3)
	s := running(t, tk)
	s.Presence(false, t0.Add(10*time.Minute))

	restored := Rehydrate(s.Snapshot())

	assert.Equal(t, s.ID(), restored.ID())
	assert.Equal(t, StatePaused, restored.State())
	assert.Equal(t, PauseAbsence, restored.PauseReason())
	assert.Equal(t, tk.ID(), restored.TaskID())
	assert.Equal(t, 10*time.Minute, restored.Elapsed(t0.Add(time.Hour)))
	assert.Empty(t, restored.DomainEvents())

	assert.True(t, restored.Presence(true, t0.Add(time.Hour)))
	assert.Equal(t, 20*time.Minute, restored.Elapsed(t0.Add(70*time.Minute)))
}

func TestErrors(t *testing.T) {
	id := uuid.New()
	err := error(&NoScheduleError{TaskID: id, Reason: "task is not in the current schedule"})
	assert.True(t, errors.Is(err, ErrNoSchedule))
	assert.False(t, errors.Is(err, ErrInvalidTransition))
	assert.Contains(t, err.Error(), id.String())

	te := &TransitionError{From: StatePaused, Action: "complete"}
	assert.Equal(t, "cannot complete a paused session", te.Error())
}

func TestParseState(t *testing.T) {
	for _, s := range []State{StateIdle, StateRunning, StatePaused, StateCompleted} {
		got, err := ParseState(string(s))
		require.NoError(t, err)
		assert.Equal(t, s, got)
	}
	_, err := ParseState("sleeping")
	assert.Error(t, err)
}

func TestSettings_BreakAfter(t *testing.T) {
	s := DefaultSettings()
	tests := []struct {
		round int
		want  BreakKind
	}{
		{1, BreakShort}, {2, BreakShort}, {3, BreakShort}, {4, BreakLong}, {5, BreakShort}, {8, BreakLong},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, s.BreakAfter(tt.round).Kind, "round %d", tt.round)
	}
	assert.Equal(t, 2, s.RoundsIn(55*time.Minute))
	assert.Zero(t, Settings{}.RoundsIn(time.Hour))
}
