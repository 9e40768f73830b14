package task

import (
	"fmt"

	"github.com/felixgeelhaar/studybuddy/adapter/cli"
	"github.com/felixgeelhaar/studybuddy/internal/study/application/commands"
	"github.com/spf13/cobra"
)

var removeCmd = &cobra.Command{
	Use:     "remove <task-id>",
	Aliases: []string{"rm"},
	Short:   "Remove a task",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireApp()
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		id, err := app.ResolveTaskID(ctx, args[0])
		if err != nil {
			return err
		}
		if err := app.RemoveTaskHandler.Handle(ctx, commands.RemoveTaskCommand{TaskID: id, Actor: app.Actor}); err != nil {
			return fmt.Errorf("failed to remove task: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", cli.SuccessStyle.Render("Removed"), cli.ShortID(id))
		return nil
	},
}
