package session

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/felixgeelhaar/studybuddy/adapter/cli"
	"github.com/felixgeelhaar/studybuddy/internal/focus/application/services"
	"github.com/felixgeelhaar/studybuddy/internal/focus/domain"
	"github.com/felixgeelhaar/studybuddy/internal/focus/infrastructure/presence"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var presenceFile string

// FocusCmd runs the tracker interactively.
var FocusCmd = &cobra.Command{
	Use:   "focus [task-id]",
	Short: "Run an interactive focus session",
	Long: `Start a focus session and keep it running: presence signals pause and
resume it, and a reminder is printed when a work interval ends.

Presence comes from --presence-file (or STUDYBUDDY_PRESENCE_FILE), a file
another program keeps set to "present" or "absent". Without one, type
a (away) and h (here) yourself.

Keys, each followed by Enter:
  p  pause          r  resume
  a  away           h  here
  c  complete       s  stop (discard)
  ?  help`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireApp()
		if err != nil {
			return err
		}
		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		taskID := uuid.Nil
		if len(args) == 1 {
			if taskID, err = app.ResolveTaskID(ctx, args[0]); err != nil {
				return err
			}
		}

		// The runner prints notices from its own goroutine.
		out := &syncWriter{w: cmd.OutOrStdout()}
		var (
			sensor   services.PresenceSensor
			keyboard *presence.ChannelSensor
		)
		path := presenceFile
		if path == "" {
			path = app.PresenceFile
		}
		if path != "" {
			fs, err := presence.NewFileSensor(path, app.Logger)
			if err != nil {
				return err
			}
			defer fs.Close()
			fs.Start(ctx)
			sensor = fs
			fmt.Fprintf(out, "%s %s\n", cli.MutedStyle.Render("presence from"), path)
		} else {
			keyboard = presence.NewChannelSensor(1)
			defer keyboard.Close()
			sensor = keyboard
		}

		runner := services.NewRunner(app.SessionHandler, sensor, app.TickInterval, app.Logger).
			WithActor(app.Actor).
			OnNotice(func(n services.Notice) { printNotice(out, n) })

		runErr := make(chan error, 1)
		go func() { runErr <- runner.Run(ctx) }()

		res, err := runner.Do(ctx, services.ActionStart, taskID)
		if err != nil {
			cancel()
			<-runErr
			return describe(err)
		}
		fmt.Fprintf(out, "%s %s. Type ? for keys.\n", cli.SuccessStyle.Render("Focusing on"), res.Session.Subject)

		lines := make(chan string)
		go func() {
			defer close(lines)
			scanner := bufio.NewScanner(cmd.InOrStdin())
			for scanner.Scan() {
				select {
				case lines <- strings.TrimSpace(scanner.Text()):
				case <-ctx.Done():
					return
				}
			}
		}()

		// Interrupted: keep the time so far but stop the clock. Called once
		// the runner has returned and let go of the session.
		pauseInterrupted := func() error {
			pauseCtx, done := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
			defer done()
			_, err := app.SessionHandler.Pause(pauseCtx, sessionCommand(app.Actor))
			if err != nil && !errors.Is(err, domain.ErrInvalidTransition) {
				return err
			}
			fmt.Fprintln(out, "Session paused. Resume with \"studybuddy session resume\".")
			return nil
		}

		for {
			select {
			case <-ctx.Done():
				<-runErr
				return pauseInterrupted()

			case err := <-runErr:
				if err == nil && ctx.Err() != nil {
					return pauseInterrupted()
				}
				return err

			case line, ok := <-lines:
				if !ok {
					// Input closed; leave the session as it is.
					cancel()
					<-runErr
					return nil
				}
				quit, err := handleKey(ctx, out, runner, keyboard, line)
				if err != nil {
					fmt.Fprintf(out, "%s %v\n", cli.WarnStyle.Render("!"), describe(err))
				}
				if quit {
					cancel()
					<-runErr
					return nil
				}
			}
		}
	},
}

func init() {
	FocusCmd.Flags().StringVar(&presenceFile, "presence-file", "", "file holding present/absent, written by a presence detector")
}

type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *syncWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}

func handleKey(ctx context.Context, out io.Writer, runner *services.Runner, keyboard *presence.ChannelSensor, key string) (bool, error) {
	switch key {
	case "":
		return false, nil
	case "p":
		_, err := runner.Do(ctx, services.ActionPause, uuid.Nil)
		return false, err
	case "r":
		_, err := runner.Do(ctx, services.ActionResume, uuid.Nil)
		return false, err
	case "a", "h":
		if keyboard == nil {
			return false, errors.New("presence comes from the presence file")
		}
		keyboard.Set(key == "h")
		return false, nil
	case "c":
		res, err := runner.Do(ctx, services.ActionComplete, uuid.Nil)
		if err != nil {
			return false, err
		}
		fmt.Fprintf(out, "%s %s on %s, %s left\n", cli.SuccessStyle.Render("Recorded"),
			res.Focused.Round(time.Second), res.Session.Subject, res.Remaining.Round(time.Second))
		return true, nil
	case "s", "q":
		res, err := runner.Do(ctx, services.ActionStop, uuid.Nil)
		if err != nil {
			return false, err
		}
		fmt.Fprintf(out, "Stopped, discarded %s.\n", res.Focused.Round(time.Second))
		return true, nil
	case "?":
		fmt.Fprintln(out, "p pause  r resume  a away  h here  c complete  s stop")
		return false, nil
	default:
		return false, fmt.Errorf("unknown key %q, type ? for help", key)
	}
}

func printNotice(out io.Writer, n services.Notice) {
	switch n.Kind {
	case services.NoticeTransition:
		state := string(n.Session.State)
		if n.Session.PauseReason != "" {
			state += " (" + string(n.Session.PauseReason) + ")"
		}
		fmt.Fprintf(out, "%s %s\n", cli.MutedStyle.Render("->"), state)
	case services.NoticeBreak:
		fmt.Fprintln(out, cli.BreakStyle.Render(fmt.Sprintf("Round %d done. Take a %s break (%s).",
			n.Break.Round, n.Break.Kind, n.Break.Duration)))
	case services.NoticeError:
		// Command errors are printed by the key handler.
		if n.Source == "presence" || n.Source == "tick" {
			fmt.Fprintf(out, "%s %v\n", cli.WarnStyle.Render("!"), n.Err)
		}
	}
}
