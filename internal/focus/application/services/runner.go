package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/felixgeelhaar/studybuddy/internal/focus/application/commands"
	"github.com/felixgeelhaar/studybuddy/internal/focus/domain"
	"github.com/google/uuid"
)

// ErrRunnerStopped is returned by Do once Run has returned.
var ErrRunnerStopped = errors.New("focus runner stopped")

// PresenceSensor reports whether the user is present. Each value is one
// signal; the channel closes when the sensor stops.
type PresenceSensor interface {
	Events() <-chan bool
}

// Sessions is the command surface the runner drives.
type Sessions interface {
	Start(ctx context.Context, cmd commands.StartSessionCommand) (*commands.SessionResult, error)
	Presence(ctx context.Context, cmd commands.PresenceCommand) (*commands.SessionResult, error)
	Pause(ctx context.Context, cmd commands.SessionCommand) (*commands.SessionResult, error)
	Resume(ctx context.Context, cmd commands.SessionCommand) (*commands.SessionResult, error)
	Complete(ctx context.Context, cmd commands.SessionCommand) (*commands.SessionResult, error)
	Stop(ctx context.Context, cmd commands.SessionCommand) (*commands.SessionResult, error)
	Tick(ctx context.Context) (domain.Break, bool, error)
}

// Action is a command sent to a running Runner.
type Action string

const (
	ActionStart    Action = "start"
	ActionPause    Action = "pause"
	ActionResume   Action = "resume"
	ActionComplete Action = "complete"
	ActionStop     Action = "stop"
)

// NoticeKind classifies runner notifications.
type NoticeKind string

const (
	NoticeTransition NoticeKind = "transition"
	NoticeBreak      NoticeKind = "break"
	NoticeError      NoticeKind = "error"
)

// Notice reports something the user should see.
type Notice struct {
	Kind    NoticeKind
	Source  string
	Session domain.Snapshot
	Break   domain.Break
	Err     error
}

type request struct {
	action Action
	taskID uuid.UUID
	reply  chan reply
}

type reply struct {
	result *commands.SessionResult
	err    error
}

// Runner serializes presence signals, timer ticks and user commands onto
// one goroutine so the session is only ever touched by one caller.
type Runner struct {
	sessions Sessions
	sensor   PresenceSensor
	interval time.Duration
	actor    string
	logger   *slog.Logger
	notify   func(Notice)

	requests chan request
	done     chan struct{}
}

// NewRunner creates a runner. A nil sensor leaves presence to commands.
func NewRunner(sessions Sessions, sensor PresenceSensor, interval time.Duration, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	if interval <= 0 {
		interval = time.Second
	}
	return &Runner{
		sessions: sessions,
		sensor:   sensor,
		interval: interval,
		actor:    "focus-runner",
		logger:   logger,
		notify:   func(Notice) {},
		requests: make(chan request),
		done:     make(chan struct{}),
	}
}

// OnNotice sets the notification callback. It runs on the runner
// goroutine and must not call Do.
func (r *Runner) OnNotice(fn func(Notice)) *Runner {
	if fn != nil {
		r.notify = fn
	}
	return r
}

// WithActor sets the actor recorded on events.
func (r *Runner) WithActor(actor string) *Runner {
	r.actor = actor
	return r
}

// Run processes events until ctx is cancelled.
func (r *Runner) Run(ctx context.Context) error {
	defer close(r.done)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	var presence <-chan bool
	if r.sensor != nil {
		presence = r.sensor.Events()
	}

	r.logger.Info("focus runner started", "tick", r.interval, "sensor", r.sensor != nil)
	for {
		select {
		case <-ctx.Done():
			r.logger.Info("focus runner stopped")
			return nil

		case present, ok := <-presence:
			if !ok {
				r.logger.Warn("presence sensor closed")
				presence = nil
				continue
			}
			res, err := r.sessions.Presence(ctx, commands.PresenceCommand{Present: present, Actor: r.actor})
			r.report("presence", res, err)

		case <-ticker.C:
			brk, due, err := r.sessions.Tick(ctx)
			if err != nil {
				r.report("tick", nil, err)
				continue
			}
			if due {
				r.notify(Notice{Kind: NoticeBreak, Source: "tick", Break: brk})
			}

		case req := <-r.requests:
			res, err := r.apply(ctx, req)
			r.report(string(req.action), res, err)
			req.reply <- reply{result: res, err: err}
		}
	}
}

// Do runs action on the runner goroutine and waits for the result.
func (r *Runner) Do(ctx context.Context, action Action, taskID uuid.UUID) (*commands.SessionResult, error) {
	req := request{action: action, taskID: taskID, reply: make(chan reply, 1)}
	select {
	case r.requests <- req:
	case <-r.done:
		return nil, ErrRunnerStopped
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	select {
	case rep := <-req.reply:
		return rep.result, rep.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (r *Runner) apply(ctx context.Context, req request) (*commands.SessionResult, error) {
	cmd := commands.SessionCommand{Actor: r.actor}
	switch req.action {
	case ActionStart:
		return r.sessions.Start(ctx, commands.StartSessionCommand{TaskID: req.taskID, Actor: r.actor})
	case ActionPause:
		return r.sessions.Pause(ctx, cmd)
	case ActionResume:
		return r.sessions.Resume(ctx, cmd)
	case ActionComplete:
		return r.sessions.Complete(ctx, cmd)
	case ActionStop:
		return r.sessions.Stop(ctx, cmd)
	default:
		return nil, errors.New("unknown focus action " + string(req.action))
	}
}

func (r *Runner) report(source string, res *commands.SessionResult, err error) {
	if err != nil {
		r.logger.Warn("focus command failed", "source", source, "error", err)
		r.notify(Notice{Kind: NoticeError, Source: source, Err: err})
		return
	}
	if res != nil && res.Changed {
		r.notify(Notice{Kind: NoticeTransition, Source: source, Session: res.Session})
	}
}
