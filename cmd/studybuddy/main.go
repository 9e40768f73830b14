package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/felixgeelhaar/studybuddy/adapter/cli"
	"github.com/felixgeelhaar/studybuddy/adapter/cli/mcp"
	"github.com/felixgeelhaar/studybuddy/adapter/cli/schedule"
	"github.com/felixgeelhaar/studybuddy/adapter/cli/session"
	"github.com/felixgeelhaar/studybuddy/adapter/cli/task"
	"github.com/felixgeelhaar/studybuddy/internal/app"
	"github.com/felixgeelhaar/studybuddy/pkg/config"
	"github.com/felixgeelhaar/studybuddy/pkg/observability"
)

func main() {
	// Cancelled on SIGINT/SIGTERM
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// --config must be known before the container is built.
	cli.ParsePersistentFlags(os.Args[1:])

	logger := observability.LoggerFromEnv()

	cfg, err := config.LoadFile(configPath())
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logCfg := observability.DefaultLogConfig()
	logCfg.Level = observability.LogLevel(cfg.LogLevel)
	logCfg.Format = observability.LogFormat(cfg.LogFormat)
	logCfg.Version = cli.Version
	if cli.Verbose() {
		logCfg.Level = observability.LogLevelDebug
	}
	logger = observability.NewLogger(logCfg)
	cli.SetLogger(logger)

	container, err := app.NewContainer(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize container", "error", err)
		os.Exit(1)
	}
	defer container.Close()

	cli.SetApp(cli.NewApp(container))

	// Register commands
	cli.AddCommand(task.Cmd)
	cli.AddCommand(schedule.Cmd)
	cli.AddCommand(session.Cmd)
	cli.AddCommand(session.FocusCmd)
	cli.AddCommand(mcp.Cmd)

	// Execute CLI
	if err := cli.Execute(ctx); err != nil {
		container.Close()
		os.Exit(1)
	}
}

func configPath() string {
	if path := cli.ConfigFile(); path != "" {
		return path
	}
	return os.Getenv("STUDYBUDDY_CONFIG")
}
