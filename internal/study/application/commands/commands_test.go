package commands

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/felixgeelhaar/studybuddy/internal/shared/infrastructure/outbox"
	"github.com/felixgeelhaar/studybuddy/internal/study/domain/task"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

func TestAddTaskHandler_Handle(t *testing.T) {
	taskRepo := new(mockTaskRepo)
	outboxRepo := new(mockOutboxRepo)
	uow := newUoW()

	taskRepo.On("NextPosition", mock.Anything).Return(3, nil)
	taskRepo.On("Save", mock.Anything, mock.MatchedBy(func(tk *task.Task) bool {
		return tk.Subject() == "Physics" && tk.Position() == 3 && tk.Importance() == task.ImportanceHigh
	})).Return(nil)
	outboxRepo.On("SaveBatch", mock.Anything, mock.MatchedBy(func(msgs []*outbox.Message) bool {
		return len(msgs) == 1 && msgs[0].RoutingKey == task.RoutingKeyAdded
	})).Return(nil)

	handler := NewAddTaskHandler(taskRepo, outboxRepo, uow).WithClock(clock)
	result, err := handler.Handle(context.Background(), AddTaskCommand{
		Subject:    "Physics",
		Hours:      5,
		DueDate:    fixedNow.AddDate(0, 0, 3),
		Importance: "high",
		Actor:      "cli",
	})

	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, result.TaskID)
	taskRepo.AssertExpectations(t)
	outboxRepo.AssertExpectations(t)
	uow.AssertCalled(t, "Commit", mock.Anything)
}

func TestAddTaskHandler_InvalidTask(t *testing.T) {
	tests := []struct {
		name string
		cmd  AddTaskCommand
	}{
		{"zero hours", AddTaskCommand{Subject: "Math", Hours: 0, DueDate: fixedNow}},
		{"bad importance", AddTaskCommand{Subject: "Math", Hours: 1, DueDate: fixedNow, Importance: "vital"}},
		{"missing due date", AddTaskCommand{Subject: "Math", Hours: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			taskRepo := new(mockTaskRepo)
			taskRepo.On("NextPosition", mock.Anything).Return(1, nil)
			outboxRepo := new(mockOutboxRepo)
			uow := newUoW()

			handler := NewAddTaskHandler(taskRepo, outboxRepo, uow).WithClock(clock)
			_, err := handler.Handle(context.Background(), tt.cmd)

			assert.ErrorIs(t, err, task.ErrInvalidTask)
			taskRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
			uow.AssertNotCalled(t, "Commit", mock.Anything)
		})
	}
}

func TestAddTaskHandler_SaveErrorRollsBack(t *testing.T) {
	taskRepo := new(mockTaskRepo)
	taskRepo.On("NextPosition", mock.Anything).Return(1, nil)
	taskRepo.On("Save", mock.Anything, mock.Anything).Return(errors.New("disk full"))
	outboxRepo := new(mockOutboxRepo)
	uow := newUoW()

	handler := NewAddTaskHandler(taskRepo, outboxRepo, uow).WithClock(clock)
	_, err := handler.Handle(context.Background(), AddTaskCommand{Subject: "Math", Hours: 2, DueDate: fixedNow})

	assert.EqualError(t, err, "disk full")
	uow.AssertCalled(t, "Rollback", mock.Anything)
	outboxRepo.AssertNotCalled(t, "SaveBatch", mock.Anything, mock.Anything)
}

func TestImportTasksHandler_SkipsInvalidEntries(t *testing.T) {
	taskRepo := new(mockTaskRepo)
	outboxRepo := new(mockOutboxRepo)
	uow := newUoW()

	var positions []int
	taskRepo.On("NextPosition", mock.Anything).Return(1, nil)
	taskRepo.On("Save", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		positions = append(positions, args.Get(1).(*task.Task).Position())
	}).Return(nil)
	outboxRepo.On("SaveBatch", mock.Anything, mock.Anything).Return(nil)

	handler := NewImportTasksHandler(taskRepo, outboxRepo, uow).WithClock(clock)
	result, err := handler.Handle(context.Background(), ImportTasksCommand{
		Tasks: []AddTaskCommand{
			{Subject: "Physics", Hours: 5, DueDate: fixedNow.AddDate(0, 0, 2)},
			{Subject: "Broken", Hours: -1, DueDate: fixedNow},
			{Subject: "Math", Hours: 10, DueDate: fixedNow.AddDate(0, 0, 4), Importance: "low"},
		},
		Actor: "cli",
	})

	require.NoError(t, err)
	assert.Len(t, result.Imported, 2)
	require.Len(t, result.Rejected, 1)
	assert.Equal(t, 1, result.Rejected[0].Index)
	assert.Equal(t, "Broken", result.Rejected[0].Subject)
	assert.ErrorIs(t, result.Err(), task.ErrInvalidTask)
	assert.Equal(t, []int{1, 2}, positions)
	outboxRepo.AssertNumberOfCalls(t, "SaveBatch", 2)
}

func TestImportTasksResult_ErrNilWhenClean(t *testing.T) {
	r := &ImportTasksResult{Imported: []uuid.UUID{uuid.New()}}
	assert.NoError(t, r.Err())
}

func TestRemoveTaskHandler_Handle(t *testing.T) {
	tk, err := task.NewTask(task.NewTaskParams{Subject: "Physics", Hours: 1, DueDate: fixedNow}, fixedNow)
	require.NoError(t, err)
	tk.ClearDomainEvents()

	taskRepo := new(mockTaskRepo)
	taskRepo.On("FindByID", mock.Anything, tk.ID()).Return(tk, nil)
	taskRepo.On("Delete", mock.Anything, tk.ID()).Return(nil)
	outboxRepo := new(mockOutboxRepo)
	outboxRepo.On("SaveBatch", mock.Anything, mock.MatchedBy(func(msgs []*outbox.Message) bool {
		return len(msgs) == 1 && msgs[0].RoutingKey == task.RoutingKeyRemoved
	})).Return(nil)

	handler := NewRemoveTaskHandler(taskRepo, outboxRepo, newUoW())
	require.NoError(t, handler.Handle(context.Background(), RemoveTaskCommand{TaskID: tk.ID(), Actor: "mcp"}))

	taskRepo.AssertExpectations(t)
	outboxRepo.AssertExpectations(t)
}

func TestRemoveTaskHandler_NotFound(t *testing.T) {
	id := uuid.New()
	taskRepo := new(mockTaskRepo)
	taskRepo.On("FindByID", mock.Anything, id).Return(nil, task.ErrTaskNotFound)
	uow := newUoW()

	handler := NewRemoveTaskHandler(taskRepo, new(mockOutboxRepo), uow)
	err := handler.Handle(context.Background(), RemoveTaskCommand{TaskID: id})

	assert.ErrorIs(t, err, task.ErrTaskNotFound)
	uow.AssertCalled(t, "Rollback", mock.Anything)
}
