package mcp

import (
	"context"
	"errors"

	"github.com/felixgeelhaar/mcp-go"
	"github.com/felixgeelhaar/studybuddy/adapter/cli"
)

// ToolDependencies provides handlers and context for MCP tools.
type ToolDependencies struct {
	App     *cli.App
	Version string
}

// RegisterCLITools registers MCP tools that mirror CLI functionality.
func RegisterCLITools(srv *mcp.Server, deps ToolDependencies) error {
	if srv == nil {
		return errors.New("server is required")
	}
	if deps.App == nil {
		return errors.New("app is required")
	}

	registerCoreTools(srv, deps)
	registerTaskTools(srv, deps)
	registerScheduleTools(srv, deps)
	registerSessionTools(srv, deps)
	return nil
}

type emptyInput struct{}

func registerCoreTools(srv *mcp.Server, deps ToolDependencies) {
	srv.Tool("cli.health").
		Description("Report whether the StudyBuddy server is up").
		Handler(func(ctx context.Context, _ emptyInput) (map[string]any, error) {
			version := deps.Version
			if version == "" {
				version = cli.Version
			}
			return map[string]any{"status": "ok", "version": version}, nil
		})
}
