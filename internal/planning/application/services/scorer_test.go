package services

import (
	"errors"
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/felixgeelhaar/studybuddy/internal/study/domain/task"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newScorer() *PriorityScorer {
	return NewPriorityScorer(DefaultScorerConfig()).WithClock(fixedClock)
}

func TestPriorityScorer_Score(t *testing.T) {
	st, err := newScorer().Score(newTask("Physics", 5, due(7), importance(task.ImportanceHigh)))
	require.NoError(t, err)

	wantUrgency := math.Exp(-0.7)
	wantMagnitude := math.Log(6)
	assert.InDelta(t, wantUrgency, st.Urgency, 1e-12)
	assert.InDelta(t, 1.0, st.Importance, 1e-12)
	assert.InDelta(t, wantMagnitude, st.Magnitude, 1e-12)
	assert.InDelta(t, wantUrgency*wantUrgency*math.Sqrt(wantMagnitude), st.Score, 1e-12)
}

func TestPriorityScorer_Urgency(t *testing.T) {
	tests := []struct {
		name string
		days int
		want float64
	}{
		{"due today", 0, 1},
		{"overdue saturates", -3, 1},
		{"tomorrow", 1, math.Exp(-0.1)},
		{"in a month", 30, math.Exp(-3)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st, err := newScorer().Score(newTask("Math", 2, due(tt.days)))
			require.NoError(t, err)
			assert.InDelta(t, tt.want, st.Urgency, 1e-12)
		})
	}
}

func TestPriorityScorer_SoonerScoresHigher(t *testing.T) {
	s := newScorer()
	soon, err := s.Score(newTask("A", 3, due(1)))
	require.NoError(t, err)
	later, err := s.Score(newTask("B", 3, due(10)))
	require.NoError(t, err)
	assert.Greater(t, soon.Score, later.Score)
}

func TestPriorityScorer_InvalidTasks(t *testing.T) {
	tests := []struct {
		name string
		task *task.Task
	}{
		{"zero hours", newTask("A", 0)},
		{"negative hours", newTask("A", 1, func(p *task.RehydrateParams) { p.Total = -time.Hour })},
		{"missing due date", newTask("A", 1, func(p *task.RehydrateParams) { p.DueDate = time.Time{} })},
		{"importance above one", newTask("A", 1, importance(1.2))},
		{"NaN importance", newTask("A", 1, importance(task.Importance(math.NaN())))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newScorer().Score(tt.task)
			require.Error(t, err)
			assert.ErrorIs(t, err, task.ErrInvalidTask)

			var invalid *task.InvalidTaskError
			require.True(t, errors.As(err, &invalid))
			assert.Equal(t, tt.task.ID(), invalid.TaskID)
		})
	}
}

func TestPriorityScorer_ZeroImportanceStillPositive(t *testing.T) {
	st, err := newScorer().Score(newTask("A", 1, importance(0)))
	require.NoError(t, err)
	assert.Greater(t, st.Score, 0.0)
}

func TestPriorityScorer_Underflow(t *testing.T) {
	cfg := DefaultScorerConfig()
	cfg.DecayPerDay = 1000
	s := NewPriorityScorer(cfg).WithClock(fixedClock)

	st, err := s.Score(newTask("A", 1, due(365)))
	require.NoError(t, err)
	assert.Equal(t, math.SmallestNonzeroFloat64, st.Score)
}

func TestPriorityScorer_AlwaysPositive(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	s := newScorer()

	for i := 0; i < 500; i++ {
		hours := rng.Float64()*200 + 0.1
		days := rng.Intn(2000) - 100
		imp := task.Importance(rng.Float64())
		if i%10 == 0 {
			imp = 0
		}

		st, err := s.Score(newTask("T", hours, due(days), importance(imp)))
		require.NoError(t, err)
		require.Greater(t, st.Score, 0.0, "hours=%v days=%d importance=%v", hours, days, imp)
	}
}

func TestPriorityScorer_ScoreAll(t *testing.T) {
	good1 := newTask("Physics", 5)
	bad := newTask("Broken", 0)
	good2 := newTask("Math", 10)

	scored, failures := newScorer().ScoreAll([]*task.Task{good1, bad, good2})

	require.Len(t, scored, 2)
	assert.Equal(t, good1.ID(), scored[0].Task.ID())
	assert.Equal(t, 0, scored[0].Order)
	assert.Equal(t, 2, scored[1].Order)
	require.Len(t, failures, 1)
	assert.ErrorIs(t, failures[0], task.ErrInvalidTask)
}

func TestPriorityScorer_Deterministic(t *testing.T) {
	tk := newTask("Physics", 4, due(3), importance(task.ImportanceLow))
	a, err := newScorer().Score(tk)
	require.NoError(t, err)
	b, err := newScorer().Score(tk)
	require.NoError(t, err)
	assert.Equal(t, a.Score, b.Score)
}
