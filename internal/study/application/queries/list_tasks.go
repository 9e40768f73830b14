package queries

import (
	"context"
	"time"

	"github.com/felixgeelhaar/studybuddy/internal/study/domain/task"
	"github.com/google/uuid"
)

// TaskDTO is a data transfer object for tasks.
type TaskDTO struct {
	ID              uuid.UUID `json:"id"`
	Subject         string    `json:"subject"`
	Name            string    `json:"name"`
	TotalHours      float64   `json:"total_hours"`
	RemainingHours  float64   `json:"remaining_hours"`
	DueDate         time.Time `json:"due_date"`
	Importance      float64   `json:"importance"`
	ImportanceLabel string    `json:"importance_label"`
	HardDeadline    bool      `json:"hard_deadline"`
	Complete        bool      `json:"complete"`
	Position        int       `json:"position"`
}

// ToDTO flattens a task for display.
func ToDTO(t *task.Task) TaskDTO {
	return TaskDTO{
		ID:              t.ID(),
		Subject:         t.Subject(),
		Name:            t.Name(),
		TotalHours:      t.TotalHours(),
		RemainingHours:  t.RemainingHours(),
		DueDate:         t.DueDate(),
		Importance:      t.Importance().Float64(),
		ImportanceLabel: t.Importance().String(),
		HardDeadline:    t.HardDeadline(),
		Complete:        t.IsComplete(),
		Position:        t.Position(),
	}
}

// ListTasksQuery contains the parameters for listing tasks.
type ListTasksQuery struct {
	IncludeCompleted bool
	Subject          string // exact subject filter, empty for all
}

// ListTasksHandler handles the ListTasksQuery.
type ListTasksHandler struct {
	taskRepo task.Repository
}

// NewListTasksHandler creates a new ListTasksHandler.
func NewListTasksHandler(taskRepo task.Repository) *ListTasksHandler {
	return &ListTasksHandler{taskRepo: taskRepo}
}

// Handle executes the ListTasksQuery. Tasks come back in intake order.
func (h *ListTasksHandler) Handle(ctx context.Context, query ListTasksQuery) ([]TaskDTO, error) {
	var (
		tasks []*task.Task
		err   error
	)
	if query.IncludeCompleted {
		tasks, err = h.taskRepo.FindAll(ctx)
	} else {
		tasks, err = h.taskRepo.FindOpen(ctx)
	}
	if err != nil {
		return nil, err
	}

	dtos := make([]TaskDTO, 0, len(tasks))
	for _, t := range tasks {
		if query.Subject != "" && t.Subject() != query.Subject {
			continue
		}
		dtos = append(dtos, ToDTO(t))
	}
	return dtos, nil
}

// GetTaskHandler loads a single task.
type GetTaskHandler struct {
	taskRepo task.Repository
}

// NewGetTaskHandler creates a new GetTaskHandler.
func NewGetTaskHandler(taskRepo task.Repository) *GetTaskHandler {
	return &GetTaskHandler{taskRepo: taskRepo}
}

// Handle returns the task or task.ErrTaskNotFound.
func (h *GetTaskHandler) Handle(ctx context.Context, id uuid.UUID) (*TaskDTO, error) {
	t, err := h.taskRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := ToDTO(t)
	return &dto, nil
}
