package commands

import (
	"context"
	"errors"
	"time"

	sharedApplication "github.com/felixgeelhaar/studybuddy/internal/shared/application"
	"github.com/felixgeelhaar/studybuddy/internal/shared/infrastructure/outbox"
	"github.com/felixgeelhaar/studybuddy/internal/study/domain/task"
	"github.com/google/uuid"
)

// ImportTasksCommand adds a batch of tasks, e.g. from a task file.
type ImportTasksCommand struct {
	Tasks []AddTaskCommand
	Actor string
}

// ImportFailure describes one rejected entry.
type ImportFailure struct {
	Index   int
	Subject string
	Err     error
}

// ImportTasksResult lists imported IDs in input order and the rejects.
type ImportTasksResult struct {
	Imported []uuid.UUID
	Rejected []ImportFailure
}

// Err joins the rejections, or returns nil when every entry was imported.
func (r *ImportTasksResult) Err() error {
	errs := make([]error, 0, len(r.Rejected))
	for _, f := range r.Rejected {
		errs = append(errs, f.Err)
	}
	return errors.Join(errs...)
}

// ImportTasksHandler handles the ImportTasksCommand. Invalid entries are
// reported and skipped; the valid ones are stored in one transaction.
type ImportTasksHandler struct {
	taskRepo   task.Repository
	outboxRepo outbox.Repository
	uow        sharedApplication.UnitOfWork
	now        func() time.Time
}

// NewImportTasksHandler creates a new ImportTasksHandler.
func NewImportTasksHandler(taskRepo task.Repository, outboxRepo outbox.Repository, uow sharedApplication.UnitOfWork) *ImportTasksHandler {
	return &ImportTasksHandler{
		taskRepo:   taskRepo,
		outboxRepo: outboxRepo,
		uow:        uow,
		now:        time.Now,
	}
}

// WithClock replaces the wall clock.
func (h *ImportTasksHandler) WithClock(now func() time.Time) *ImportTasksHandler {
	h.now = now
	return h
}

// Handle executes the ImportTasksCommand.
func (h *ImportTasksHandler) Handle(ctx context.Context, cmd ImportTasksCommand) (*ImportTasksResult, error) {
	result := &ImportTasksResult{}
	now := h.now()

	err := sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		position, err := h.taskRepo.NextPosition(txCtx)
		if err != nil {
			return err
		}

		for i, entry := range cmd.Tasks {
			importance, err := task.ParseImportance(entry.Importance)
			if err != nil {
				result.Rejected = append(result.Rejected, ImportFailure{
					Index: i, Subject: entry.Subject,
					Err: &task.InvalidTaskError{Subject: entry.Subject, Reason: err.Error()},
				})
				continue
			}

			t, err := task.NewTask(task.NewTaskParams{
				Subject:      entry.Subject,
				Name:         entry.Name,
				Hours:        entry.Hours,
				DueDate:      entry.DueDate,
				Importance:   importance,
				HardDeadline: entry.HardDeadline,
				Position:     position,
			}, now)
			if err != nil {
				result.Rejected = append(result.Rejected, ImportFailure{Index: i, Subject: entry.Subject, Err: err})
				continue
			}
			position++

			if err := h.taskRepo.Save(txCtx, t); err != nil {
				return err
			}
			if err := outbox.StageEvents(txCtx, h.outboxRepo, cmd.Actor, t); err != nil {
				return err
			}
			result.Imported = append(result.Imported, t.ID())
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}
