package commands

import (
	"context"
	"time"

	sharedApplication "github.com/felixgeelhaar/studybuddy/internal/shared/application"
	"github.com/felixgeelhaar/studybuddy/internal/shared/infrastructure/outbox"
	"github.com/felixgeelhaar/studybuddy/internal/study/domain/task"
	"github.com/google/uuid"
)

// RemoveTaskCommand deletes a task.
type RemoveTaskCommand struct {
	TaskID uuid.UUID
	Actor  string
}

// RemoveTaskHandler handles the RemoveTaskCommand.
type RemoveTaskHandler struct {
	taskRepo   task.Repository
	outboxRepo outbox.Repository
	uow        sharedApplication.UnitOfWork
	now        func() time.Time
}

// NewRemoveTaskHandler creates a new RemoveTaskHandler.
func NewRemoveTaskHandler(taskRepo task.Repository, outboxRepo outbox.Repository, uow sharedApplication.UnitOfWork) *RemoveTaskHandler {
	return &RemoveTaskHandler{
		taskRepo:   taskRepo,
		outboxRepo: outboxRepo,
		uow:        uow,
		now:        time.Now,
	}
}

// Handle executes the RemoveTaskCommand.
func (h *RemoveTaskHandler) Handle(ctx context.Context, cmd RemoveTaskCommand) error {
	return sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		t, err := h.taskRepo.FindByID(txCtx, cmd.TaskID)
		if err != nil {
			return err
		}

		t.MarkRemoved(h.now())
		if err := h.taskRepo.Delete(txCtx, t.ID()); err != nil {
			return err
		}
		return outbox.StageEvents(txCtx, h.outboxRepo, cmd.Actor, t)
	})
}
