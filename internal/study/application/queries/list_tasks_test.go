package queries

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/felixgeelhaar/studybuddy/internal/study/domain/task"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubTaskRepo serves a fixed task list.
type stubTaskRepo struct {
	tasks []*task.Task
	err   error
}

func (s *stubTaskRepo) Save(context.Context, *task.Task) error  { return nil }
func (s *stubTaskRepo) Delete(context.Context, uuid.UUID) error { return nil }
func (s *stubTaskRepo) NextPosition(context.Context) (int, error) {
	return len(s.tasks) + 1, nil
}

func (s *stubTaskRepo) FindByID(_ context.Context, id uuid.UUID) (*task.Task, error) {
	for _, t := range s.tasks {
		if t.ID() == id {
			return t, nil
		}
	}
	return nil, task.ErrTaskNotFound
}

func (s *stubTaskRepo) FindAll(context.Context) ([]*task.Task, error) {
	return s.tasks, s.err
}

func (s *stubTaskRepo) FindOpen(context.Context) ([]*task.Task, error) {
	if s.err != nil {
		return nil, s.err
	}
	var open []*task.Task
	for _, t := range s.tasks {
		if !t.IsComplete() {
			open = append(open, t)
		}
	}
	return open, nil
}

func seed(t *testing.T) *stubTaskRepo {
	t.Helper()
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

	mk := func(subject string, hours float64, pos int) *task.Task {
		tk, err := task.NewTask(task.NewTaskParams{
			Subject: subject, Hours: hours, DueDate: now.AddDate(0, 0, 5),
			Importance: task.ImportanceMedium, Position: pos,
		}, now)
		require.NoError(t, err)
		return tk
	}

	physics := mk("Physics", 5, 1)
	math := mk("Math", 10, 2)
	done := mk("History", 1, 3)
	done.RecordProgress(time.Hour, now)

	return &stubTaskRepo{tasks: []*task.Task{physics, math, done}}
}

func TestListTasksHandler_Handle(t *testing.T) {
	repo := seed(t)
	handler := NewListTasksHandler(repo)

	tests := []struct {
		name  string
		query ListTasksQuery
		want  []string
	}{
		{"open only", ListTasksQuery{}, []string{"Physics", "Math"}},
		{"include completed", ListTasksQuery{IncludeCompleted: true}, []string{"Physics", "Math", "History"}},
		{"subject filter", ListTasksQuery{Subject: "Math"}, []string{"Math"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dtos, err := handler.Handle(context.Background(), tt.query)
			require.NoError(t, err)

			var got []string
			for _, d := range dtos {
				got = append(got, d.Subject)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestListTasksHandler_RepoError(t *testing.T) {
	handler := NewListTasksHandler(&stubTaskRepo{err: errors.New("db closed")})
	_, err := handler.Handle(context.Background(), ListTasksQuery{})
	assert.EqualError(t, err, "db closed")
}

func TestGetTaskHandler_Handle(t *testing.T) {
	repo := seed(t)
	handler := NewGetTaskHandler(repo)

	dto, err := handler.Handle(context.Background(), repo.tasks[2].ID())
	require.NoError(t, err)
	assert.Equal(t, "History", dto.Subject)
	assert.True(t, dto.Complete)
	assert.Equal(t, 1.0, dto.TotalHours)
	assert.Zero(t, dto.RemainingHours)
	assert.Equal(t, "medium", dto.ImportanceLabel)

	_, err = handler.Handle(context.Background(), uuid.New())
	assert.ErrorIs(t, err, task.ErrTaskNotFound)
}
