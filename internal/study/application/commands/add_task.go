package commands

import (
	"context"
	"time"

	sharedApplication "github.com/felixgeelhaar/studybuddy/internal/shared/application"
	"github.com/felixgeelhaar/studybuddy/internal/shared/infrastructure/outbox"
	"github.com/felixgeelhaar/studybuddy/internal/study/domain/task"
	"github.com/google/uuid"
)

// AddTaskCommand contains the data needed to add a study task.
type AddTaskCommand struct {
	Subject      string
	Name         string
	Hours        float64
	DueDate      time.Time
	Importance   string // low, medium, high or a number in [0,1]
	HardDeadline bool
	Actor        string
}

// AddTaskResult contains the result of adding a task.
type AddTaskResult struct {
	TaskID uuid.UUID
}

// AddTaskHandler handles the AddTaskCommand.
type AddTaskHandler struct {
	taskRepo   task.Repository
	outboxRepo outbox.Repository
	uow        sharedApplication.UnitOfWork
	now        func() time.Time
}

// NewAddTaskHandler creates a new AddTaskHandler.
func NewAddTaskHandler(taskRepo task.Repository, outboxRepo outbox.Repository, uow sharedApplication.UnitOfWork) *AddTaskHandler {
	return &AddTaskHandler{
		taskRepo:   taskRepo,
		outboxRepo: outboxRepo,
		uow:        uow,
		now:        time.Now,
	}
}

// WithClock replaces the wall clock.
func (h *AddTaskHandler) WithClock(now func() time.Time) *AddTaskHandler {
	h.now = now
	return h
}

// Handle executes the AddTaskCommand.
func (h *AddTaskHandler) Handle(ctx context.Context, cmd AddTaskCommand) (*AddTaskResult, error) {
	importance, err := task.ParseImportance(cmd.Importance)
	if err != nil {
		return nil, &task.InvalidTaskError{Subject: cmd.Subject, Reason: err.Error()}
	}

	var result *AddTaskResult
	err = sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		position, err := h.taskRepo.NextPosition(txCtx)
		if err != nil {
			return err
		}

		t, err := task.NewTask(task.NewTaskParams{
			Subject:      cmd.Subject,
			Name:         cmd.Name,
			Hours:        cmd.Hours,
			DueDate:      cmd.DueDate,
			Importance:   importance,
			HardDeadline: cmd.HardDeadline,
			Position:     position,
		}, h.now())
		if err != nil {
			return err
		}

		if err := h.taskRepo.Save(txCtx, t); err != nil {
			return err
		}
		if err := outbox.StageEvents(txCtx, h.outboxRepo, cmd.Actor, t); err != nil {
			return err
		}

		result = &AddTaskResult{TaskID: t.ID()}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}
