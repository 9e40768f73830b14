package mcp

import (
	"context"
	"errors"

	"github.com/felixgeelhaar/studybuddy/adapter/cli"
	mcpinternal "github.com/felixgeelhaar/studybuddy/internal/mcp"
	"github.com/spf13/cobra"
)

var addr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Serve StudyBuddy's tasks, schedule and focus session as MCP tools over
HTTP. Set MCP_AUTH_TOKEN to require a bearer token.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireApp()
		if err != nil {
			return err
		}
		if app.Config == nil {
			return errors.New("configuration not loaded")
		}
		ctx := cmd.Context()

		cfg := *app.Config
		if addr != "" {
			cfg.MCPAddr = addr
		}

		// Relay events while serving instead of once per command.
		if app.Outbox != nil {
			app.Outbox.Start(ctx)
			defer app.Outbox.Stop()
		}

		err = mcpinternal.Serve(ctx, &cfg, app, app.Logger)
		if err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().StringVar(&addr, "addr", "", "listen address, overrides MCP_ADDR")
}
