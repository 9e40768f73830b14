package mcp

import (
	"context"
	"errors"
	"time"

	"github.com/felixgeelhaar/mcp-go"
	"github.com/felixgeelhaar/studybuddy/internal/study/application/commands"
	"github.com/felixgeelhaar/studybuddy/internal/study/application/queries"
	"github.com/felixgeelhaar/studybuddy/internal/study/infrastructure/taskfile"
)

type taskAddInput struct {
	Subject      string  `json:"subject" jsonschema:"required"`
	Name         string  `json:"name,omitempty"`
	Hours        float64 `json:"hours" jsonschema:"required"`
	DueDate      string  `json:"due_date" jsonschema:"required"`
	Importance   string  `json:"importance,omitempty"`
	HardDeadline bool    `json:"hard_deadline,omitempty"`
}

type taskListInput struct {
	IncludeCompleted bool   `json:"include_completed,omitempty"`
	Subject          string `json:"subject,omitempty"`
}

type taskIDInput struct {
	TaskID string `json:"task_id" jsonschema:"required"`
}

type taskImportInput struct {
	// YAML document in the task file format.
	Document string `json:"document" jsonschema:"required"`
}

type taskImportResult struct {
	Imported []string `json:"imported"`
	Rejected []string `json:"rejected,omitempty"`
}

func registerTaskTools(srv *mcp.Server, deps ToolDependencies) {
	app := deps.App

	srv.Tool("task.add").
		Description("Add a study task with its estimated hours, due date and importance (low, medium, high or 0-1)").
		Handler(func(ctx context.Context, input taskAddInput) (*commands.AddTaskResult, error) {
			due, err := parseDate(input.DueDate, time.Time{})
			if err != nil {
				return nil, err
			}
			if due.IsZero() {
				return nil, errors.New("due_date is required")
			}
			return app.AddTaskHandler.Handle(ctx, commands.AddTaskCommand{
				Subject:      input.Subject,
				Name:         input.Name,
				Hours:        input.Hours,
				DueDate:      due,
				Importance:   input.Importance,
				HardDeadline: input.HardDeadline,
				Actor:        actor,
			})
		})

	srv.Tool("task.list").
		Description("List study tasks in the order they were added").
		Handler(func(ctx context.Context, input taskListInput) ([]queries.TaskDTO, error) {
			return app.ListTasksHandler.Handle(ctx, queries.ListTasksQuery{
				IncludeCompleted: input.IncludeCompleted,
				Subject:          input.Subject,
			})
		})

	srv.Tool("task.show").
		Description("Show one task by ID or ID prefix").
		Handler(func(ctx context.Context, input taskIDInput) (*queries.TaskDTO, error) {
			id, err := app.ResolveTaskID(ctx, input.TaskID)
			if err != nil {
				return nil, err
			}
			return app.GetTaskHandler.Handle(ctx, id)
		})

	srv.Tool("task.remove").
		Description("Remove a task by ID or ID prefix").
		Handler(func(ctx context.Context, input taskIDInput) (map[string]any, error) {
			id, err := app.ResolveTaskID(ctx, input.TaskID)
			if err != nil {
				return nil, err
			}
			if err := app.RemoveTaskHandler.Handle(ctx, commands.RemoveTaskCommand{TaskID: id, Actor: actor}); err != nil {
				return nil, err
			}
			return map[string]any{"task_id": id, "removed": true}, nil
		})

	srv.Tool("task.import").
		Description("Import tasks from a YAML task file body (tasks: [{subject, name, hours, due, importance, hard_deadline}])").
		Handler(func(ctx context.Context, input taskImportInput) (*taskImportResult, error) {
			entries, err := taskfile.Read(stringsReader(input.Document))
			if err != nil {
				return nil, err
			}
			result, err := app.ImportTasksHandler.Handle(ctx, commands.ImportTasksCommand{
				Tasks: taskfile.Commands(entries, actor),
				Actor: actor,
			})
			if err != nil {
				return nil, err
			}
			out := &taskImportResult{Imported: make([]string, 0, len(result.Imported))}
			for _, id := range result.Imported {
				out.Imported = append(out.Imported, id.String())
			}
			for _, f := range result.Rejected {
				out.Rejected = append(out.Rejected, f.Err.Error())
			}
			return out, nil
		})
}
