package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	internalApp "github.com/felixgeelhaar/studybuddy/internal/app"
	focusCommands "github.com/felixgeelhaar/studybuddy/internal/focus/application/commands"
	focusQueries "github.com/felixgeelhaar/studybuddy/internal/focus/application/queries"
	focusDomain "github.com/felixgeelhaar/studybuddy/internal/focus/domain"
	planningCommands "github.com/felixgeelhaar/studybuddy/internal/planning/application/commands"
	planningQueries "github.com/felixgeelhaar/studybuddy/internal/planning/application/queries"
	"github.com/felixgeelhaar/studybuddy/internal/shared/infrastructure/outbox"
	studyCommands "github.com/felixgeelhaar/studybuddy/internal/study/application/commands"
	studyQueries "github.com/felixgeelhaar/studybuddy/internal/study/application/queries"
	"github.com/felixgeelhaar/studybuddy/pkg/config"
	"github.com/google/uuid"
)

// ErrNotInitialized is returned by commands that need storage when the
// application could not be wired.
var ErrNotInitialized = errors.New("application not initialized - database connection required")

// App holds the CLI application dependencies.
type App struct {
	// Study
	AddTaskHandler     *studyCommands.AddTaskHandler
	ImportTasksHandler *studyCommands.ImportTasksHandler
	RemoveTaskHandler  *studyCommands.RemoveTaskHandler
	ListTasksHandler   *studyQueries.ListTasksHandler
	GetTaskHandler     *studyQueries.GetTaskHandler

	// Planning
	BuildScheduleHandler  *planningCommands.BuildScheduleHandler
	ExportScheduleHandler *planningCommands.ExportScheduleHandler
	GetScheduleHandler    *planningQueries.GetScheduleHandler

	// Focus
	SessionHandler    *focusCommands.SessionHandler
	GetSessionHandler *focusQueries.GetSessionHandler
	FocusSettings     focusDomain.Settings
	TickInterval      time.Duration
	PresenceFile      string

	Config *config.Config
	Logger *slog.Logger
	// Outbox relays staged events; long-running commands start it.
	Outbox *outbox.Processor

	// Actor is recorded on every staged event.
	Actor string

	flush func(ctx context.Context) error
}

var app *App

// NewApp builds the CLI application from a wired container.
func NewApp(c *internalApp.Container) *App {
	a := &App{
		AddTaskHandler:        c.AddTaskHandler,
		ImportTasksHandler:    c.ImportTasksHandler,
		RemoveTaskHandler:     c.RemoveTaskHandler,
		ListTasksHandler:      c.ListTasksHandler,
		GetTaskHandler:        c.GetTaskHandler,
		BuildScheduleHandler:  c.BuildScheduleHandler,
		ExportScheduleHandler: c.ExportScheduleHandler,
		GetScheduleHandler:    c.GetScheduleHandler,
		SessionHandler:        c.SessionHandler,
		GetSessionHandler:     c.GetSessionHandler,
		FocusSettings:         c.FocusSettings,
		Config:                c.Config,
		Logger:                c.Logger,
		Outbox:                c.OutboxProcessor,
		Actor:                 "cli",
		flush:                 c.Flush,
	}
	if c.Config != nil {
		a.TickInterval = c.Config.Focus.TickInterval
		a.PresenceFile = c.Config.Focus.PresenceFile
	}
	if a.TickInterval <= 0 {
		a.TickInterval = time.Second
	}
	return a
}

// Flush delivers staged events. It is a no-op for apps built without a
// container.
func (a *App) Flush(ctx context.Context) error {
	if a == nil || a.flush == nil {
		return nil
	}
	return a.flush(ctx)
}

// SetApp sets the global CLI application instance.
func SetApp(a *App) {
	app = a
}

// GetApp returns the global CLI application instance.
func GetApp() *App {
	return app
}

// RequireApp returns the application or ErrNotInitialized.
func RequireApp() (*App, error) {
	if app == nil {
		return nil, ErrNotInitialized
	}
	return app, nil
}

// ResolveTaskID accepts a full task ID or a unique prefix of one, as
// printed by "task list".
func (a *App) ResolveTaskID(ctx context.Context, ref string) (uuid.UUID, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return uuid.Nil, errors.New("task id is required")
	}
	if id, err := uuid.Parse(ref); err == nil {
		return id, nil
	}
	tasks, err := a.ListTasksHandler.Handle(ctx, studyQueries.ListTasksQuery{IncludeCompleted: true})
	if err != nil {
		return uuid.Nil, err
	}
	var matches []uuid.UUID
	for _, t := range tasks {
		if strings.HasPrefix(t.ID.String(), strings.ToLower(ref)) {
			matches = append(matches, t.ID)
		}
	}
	switch len(matches) {
	case 0:
		return uuid.Nil, fmt.Errorf("no task matches %q", ref)
	case 1:
		return matches[0], nil
	default:
		return uuid.Nil, fmt.Errorf("%q matches %d tasks, use more characters", ref, len(matches))
	}
}
