package task_test

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/felixgeelhaar/studybuddy/internal/study/domain/task"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 3, 2, 10, 30, 0, 0, time.UTC)

func validParams() task.NewTaskParams {
	return task.NewTaskParams{
		Subject:    "Physics",
		Name:       "Chapter 4",
		Hours:      5,
		DueDate:    now.AddDate(0, 0, 7),
		Importance: task.ImportanceHigh,
	}
}

func TestNewTask(t *testing.T) {
	tk, err := task.NewTask(validParams(), now)
	require.NoError(t, err)

	assert.Equal(t, "Physics", tk.Subject())
	assert.Equal(t, "Chapter 4", tk.Name())
	assert.Equal(t, 5*time.Hour, tk.Total())
	assert.Equal(t, 5*time.Hour, tk.Remaining())
	assert.Equal(t, time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC), tk.DueDate())
	assert.False(t, tk.IsComplete())

	events := tk.DomainEvents()
	require.Len(t, events, 1)
	added, ok := events[0].(*task.TaskAdded)
	require.True(t, ok)
	assert.Equal(t, task.RoutingKeyAdded, added.RoutingKey())
	assert.Equal(t, int64(5*3600), added.TotalSeconds)
	assert.Equal(t, "2026-03-09", added.DueDate)
}

func TestNewTask_DefaultsNameToSubject(t *testing.T) {
	p := validParams()
	p.Name = "  "
	tk, err := task.NewTask(p, now)
	require.NoError(t, err)
	assert.Equal(t, "Physics", tk.Name())
}

func TestNewTask_DueTodayAccepted(t *testing.T) {
	p := validParams()
	p.DueDate = now
	_, err := task.NewTask(p, now)
	assert.NoError(t, err)
}

func TestNewTask_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*task.NewTaskParams)
	}{
		{"empty subject", func(p *task.NewTaskParams) { p.Subject = " " }},
		{"zero hours", func(p *task.NewTaskParams) { p.Hours = 0 }},
		{"negative hours", func(p *task.NewTaskParams) { p.Hours = -1 }},
		{"NaN hours", func(p *task.NewTaskParams) { p.Hours = math.NaN() }},
		{"infinite hours", func(p *task.NewTaskParams) { p.Hours = math.Inf(1) }},
		{"missing due date", func(p *task.NewTaskParams) { p.DueDate = time.Time{} }},
		{"past due date", func(p *task.NewTaskParams) { p.DueDate = now.AddDate(0, 0, -1) }},
		{"importance above one", func(p *task.NewTaskParams) { p.Importance = 1.5 }},
		{"negative importance", func(p *task.NewTaskParams) { p.Importance = -0.1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validParams()
			tt.mutate(&p)

			_, err := task.NewTask(p, now)
			require.Error(t, err)
			assert.ErrorIs(t, err, task.ErrInvalidTask)

			var invalidErr *task.InvalidTaskError
			assert.True(t, errors.As(err, &invalidErr))
			assert.NotEmpty(t, invalidErr.Reason)
		})
	}
}

func TestRecordProgress(t *testing.T) {
	tk, err := task.NewTask(validParams(), now)
	require.NoError(t, err)
	tk.ClearDomainEvents()

	applied := tk.RecordProgress(90*time.Minute, now.Add(2*time.Hour))
	assert.Equal(t, 90*time.Minute, applied)
	assert.Equal(t, 3*time.Hour+30*time.Minute, tk.Remaining())
	assert.Equal(t, 90*time.Minute, tk.Done())

	events := tk.DomainEvents()
	require.Len(t, events, 1)
	progressed := events[0].(*task.TaskProgressed)
	assert.Equal(t, int64(5400), progressed.FocusedSeconds)
	assert.Equal(t, int64(12600), progressed.RemainingSeconds)
}

func TestRecordProgress_ClampsAtZero(t *testing.T) {
	tk, err := task.NewTask(validParams(), now)
	require.NoError(t, err)
	tk.ClearDomainEvents()

	applied := tk.RecordProgress(8*time.Hour, now)
	assert.Equal(t, 5*time.Hour, applied)
	assert.Zero(t, tk.Remaining())
	assert.True(t, tk.IsComplete())

	events := tk.DomainEvents()
	require.Len(t, events, 2)
	assert.Equal(t, task.RoutingKeyCompleted, events[1].RoutingKey())

	assert.Zero(t, tk.RecordProgress(time.Hour, now))
	assert.Len(t, tk.DomainEvents(), 2)
}

func TestRecordProgress_IgnoresNonPositive(t *testing.T) {
	tk, err := task.NewTask(validParams(), now)
	require.NoError(t, err)
	tk.ClearDomainEvents()

	assert.Zero(t, tk.RecordProgress(0, now))
	assert.Zero(t, tk.RecordProgress(-time.Minute, now))
	assert.Zero(t, tk.RecordProgress(500*time.Millisecond, now))
	assert.Equal(t, 5*time.Hour, tk.Remaining())
	assert.Empty(t, tk.DomainEvents())
}

func TestMarkRemoved(t *testing.T) {
	tk, err := task.NewTask(validParams(), now)
	require.NoError(t, err)
	tk.ClearDomainEvents()

	tk.MarkRemoved(now)
	events := tk.DomainEvents()
	require.Len(t, events, 1)
	assert.Equal(t, task.RoutingKeyRemoved, events[0].RoutingKey())
	assert.Equal(t, tk.ID(), events[0].AggregateID())
}

func TestParseImportance(t *testing.T) {
	tests := []struct {
		in      string
		want    task.Importance
		wantErr bool
	}{
		{"", task.ImportanceMedium, false},
		{"low", task.ImportanceLow, false},
		{"HIGH", task.ImportanceHigh, false},
		{"medium", task.ImportanceMedium, false},
		{"0", 0, false},
		{"0.25", 0.25, false},
		{"1", 1, false},
		{"1.01", 0, true},
		{"-0.5", 0, true},
		{"urgent", 0, true},
		{"NaN", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := task.ParseImportance(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, float64(tt.want), float64(got), 1e-12)
		})
	}
}

func TestFromHours(t *testing.T) {
	assert.Equal(t, 90*time.Minute, task.FromHours(1.5))
	assert.Equal(t, time.Second, task.FromHours(1.0/3600+1e-12))
	assert.Equal(t, time.Duration(-1), task.FromHours(math.NaN()))
	assert.Equal(t, time.Duration(-1), task.FromHours(math.Inf(1)))
}
