package mcp

import (
	"context"

	"github.com/felixgeelhaar/mcp-go"
	"github.com/felixgeelhaar/studybuddy/adapter/cli"
	"github.com/felixgeelhaar/studybuddy/internal/focus/application/commands"
	"github.com/felixgeelhaar/studybuddy/internal/focus/application/queries"
	"github.com/google/uuid"
)

type sessionStartInput struct {
	TaskID string `json:"task_id,omitempty"`
}

type sessionPresenceInput struct {
	Present bool `json:"present"`
}

type sessionResult struct {
	Session          *queries.SessionDTO `json:"session"`
	Changed          bool                `json:"changed"`
	FocusedSeconds   int64               `json:"focused_seconds,omitempty"`
	RemainingSeconds int64               `json:"remaining_seconds,omitempty"`
}

func registerSessionTools(srv *mcp.Server, deps ToolDependencies) {
	app := deps.App
	h := app.SessionHandler

	srv.Tool("session.start").
		Description("Start a focus session on a scheduled task; without task_id the next scheduled task is used").
		Handler(func(ctx context.Context, input sessionStartInput) (*sessionResult, error) {
			id := uuid.Nil
			if input.TaskID != "" {
				var err error
				if id, err = app.ResolveTaskID(ctx, input.TaskID); err != nil {
					return nil, err
				}
			}
			res, err := h.Start(ctx, commands.StartSessionCommand{TaskID: id, Actor: actor})
			return toSessionResult(app, res, err)
		})

	srv.Tool("session.presence").
		Description("Report whether the student is present; absence pauses and return resumes the session").
		Handler(func(ctx context.Context, input sessionPresenceInput) (*sessionResult, error) {
			res, err := h.Presence(ctx, commands.PresenceCommand{Present: input.Present, Actor: actor})
			return toSessionResult(app, res, err)
		})

	srv.Tool("session.pause").
		Description("Pause the running session").
		Handler(func(ctx context.Context, _ emptyInput) (*sessionResult, error) {
			res, err := h.Pause(ctx, commands.SessionCommand{Actor: actor})
			return toSessionResult(app, res, err)
		})

	srv.Tool("session.resume").
		Description("Resume a paused session").
		Handler(func(ctx context.Context, _ emptyInput) (*sessionResult, error) {
			res, err := h.Resume(ctx, commands.SessionCommand{Actor: actor})
			return toSessionResult(app, res, err)
		})

	srv.Tool("session.complete").
		Description("Complete the running session and record its focused time on the task").
		Handler(func(ctx context.Context, _ emptyInput) (*sessionResult, error) {
			res, err := h.Complete(ctx, commands.SessionCommand{Actor: actor})
			return toSessionResult(app, res, err)
		})

	srv.Tool("session.stop").
		Description("Stop the session and discard its time").
		Handler(func(ctx context.Context, _ emptyInput) (*sessionResult, error) {
			res, err := h.Stop(ctx, commands.SessionCommand{Actor: actor})
			return toSessionResult(app, res, err)
		})

	srv.Tool("session.status").
		Description("Show the focus tracker state").
		Handler(func(ctx context.Context, _ emptyInput) (*queries.SessionDTO, error) {
			return app.GetSessionHandler.Handle(ctx)
		})
}

func toSessionResult(app *cli.App, res *commands.SessionResult, err error) (*sessionResult, error) {
	if err != nil {
		return nil, err
	}
	dto := queries.ToDTO(res.Session, app.FocusSettings, res.Session.UpdatedAt)
	return &sessionResult{
		Session:          &dto,
		Changed:          res.Changed,
		FocusedSeconds:   int64(res.Focused.Seconds()),
		RemainingSeconds: int64(res.Remaining.Seconds()),
	}, nil
}
