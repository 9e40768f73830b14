package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/felixgeelhaar/studybuddy/adapter/cli"
	"github.com/felixgeelhaar/studybuddy/internal/focus/application/commands"
	"github.com/felixgeelhaar/studybuddy/internal/focus/application/queries"
	"github.com/felixgeelhaar/studybuddy/internal/focus/domain"
	"github.com/felixgeelhaar/studybuddy/internal/focus/infrastructure/presence"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

// Cmd is the session command group
var Cmd = &cobra.Command{
	Use:   "session",
	Short: "Drive the focus session tracker one step at a time",
	Long: `Start, pause, resume, complete or stop the focus session tracker.

Each command applies one transition and exits; "studybuddy focus" runs
the tracker interactively with presence detection and break reminders.`,
}

func init() {
	Cmd.AddCommand(startCmd)
	Cmd.AddCommand(presenceCmd)
	Cmd.AddCommand(pauseCmd)
	Cmd.AddCommand(resumeCmd)
	Cmd.AddCommand(completeCmd)
	Cmd.AddCommand(stopCmd)
	Cmd.AddCommand(statusCmd)
}

var startCmd = &cobra.Command{
	Use:   "start [task-id]",
	Short: "Start a session on a scheduled task",
	Long: `Start a focus session on a task from the latest schedule. Without a
task ID the first unfinished task in schedule order is picked.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireApp()
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		taskID := uuid.Nil
		if len(args) == 1 {
			if taskID, err = app.ResolveTaskID(ctx, args[0]); err != nil {
				return err
			}
		}
		res, err := app.SessionHandler.Start(ctx, commands.StartSessionCommand{TaskID: taskID, Actor: app.Actor})
		if err != nil {
			return describe(err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s, first break in %s\n",
			cli.SuccessStyle.Render("Focusing on"), res.Session.Subject, app.FocusSettings.WorkInterval)
		return nil
	},
}

var presenceCmd = &cobra.Command{
	Use:   "presence <present|absent>",
	Short: "Feed a presence signal to the tracker",
	Long: `Report whether you are at your desk. Going absent pauses a running
session; coming back resumes a session that absence paused.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireApp()
		if err != nil {
			return err
		}
		present, err := presence.ParseSignal(args[0])
		if err != nil {
			return err
		}
		res, err := app.SessionHandler.Presence(cmd.Context(), commands.PresenceCommand{Present: present, Actor: app.Actor})
		if err != nil {
			return describe(err)
		}
		printResult(cmd.OutOrStdout(), res)
		return nil
	},
}

var pauseCmd = simpleCmd("pause", "Pause the running session", func(h *commands.SessionHandler) handlerFunc { return h.Pause })
var resumeCmd = simpleCmd("resume", "Resume a paused session", func(h *commands.SessionHandler) handlerFunc { return h.Resume })
var stopCmd = simpleCmd("stop", "Stop the session and discard its time", func(h *commands.SessionHandler) handlerFunc { return h.Stop })

var completeCmd = &cobra.Command{
	Use:   "complete",
	Short: "Complete the running session and record its time on the task",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireApp()
		if err != nil {
			return err
		}
		res, err := app.SessionHandler.Complete(cmd.Context(), commands.SessionCommand{Actor: app.Actor})
		if err != nil {
			return describe(err)
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s %s on %s, %s left\n",
			cli.SuccessStyle.Render("Recorded"),
			res.Focused.Round(time.Second),
			res.Session.Subject,
			res.Remaining.Round(time.Second),
		)
		if res.Remaining == 0 {
			fmt.Fprintln(out, cli.SuccessStyle.Render("Task complete."))
		}
		return nil
	},
}

var statusJSON bool

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the tracker state",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireApp()
		if err != nil {
			return err
		}
		dto, err := app.GetSessionHandler.Handle(cmd.Context())
		if err != nil {
			return err
		}
		if statusJSON {
			return cli.PrintJSON(cmd.OutOrStdout(), dto)
		}
		printStatus(cmd.OutOrStdout(), dto)
		return nil
	},
}

func init() {
	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "print the state as JSON")
}

type handlerFunc func(ctx context.Context, cmd commands.SessionCommand) (*commands.SessionResult, error)

func simpleCmd(use, short string, pick func(*commands.SessionHandler) handlerFunc) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := cli.RequireApp()
			if err != nil {
				return err
			}
			res, err := pick(app.SessionHandler)(cmd.Context(), commands.SessionCommand{Actor: app.Actor})
			if err != nil {
				return describe(err)
			}
			printResult(cmd.OutOrStdout(), res)
			return nil
		},
	}
}

func printResult(out io.Writer, res *commands.SessionResult) {
	if !res.Changed {
		fmt.Fprintf(out, "Session already %s.\n", res.Session.State)
		return
	}
	line := fmt.Sprintf("Session %s", res.Session.State)
	if res.Session.PauseReason != "" {
		line += fmt.Sprintf(" (%s)", res.Session.PauseReason)
	}
	if res.Focused > 0 {
		line += fmt.Sprintf(", discarded %s", res.Focused.Round(time.Second))
	}
	fmt.Fprintln(out, line)
}

func printStatus(out io.Writer, s *queries.SessionDTO) {
	if s.State == string(domain.StateIdle) {
		fmt.Fprintln(out, "No session. Start one with \"studybuddy session start\".")
		return
	}
	state := s.State
	if s.PauseReason != "" {
		state += " (" + s.PauseReason + ")"
	}
	fmt.Fprintf(out, "%s %s\n", cli.TitleStyle.Render(s.Subject), state)
	fmt.Fprintf(out, "  focused %s over %d segment(s), %d round(s) done\n",
		(time.Duration(s.FocusedSeconds) * time.Second).String(), s.Segments, s.Rounds)
	if s.NextBreakIn > 0 {
		fmt.Fprintf(out, "  next break in %s\n", time.Duration(s.NextBreakIn)*time.Second)
	}
}

func sessionCommand(actor string) commands.SessionCommand {
	return commands.SessionCommand{Actor: actor}
}

// describe adds a hint to the tracker's own errors.
func describe(err error) error {
	switch {
	case errors.Is(err, domain.ErrNoSchedule):
		return fmt.Errorf(`%w (run "studybuddy schedule build" first)`, err)
	case errors.Is(err, domain.ErrInvalidTransition):
		return fmt.Errorf(`%w (see "studybuddy session status")`, err)
	default:
		return err
	}
}
