package task

import (
	"fmt"

	"github.com/felixgeelhaar/studybuddy/adapter/cli"
	"github.com/spf13/cobra"
)

var showCmd = &cobra.Command{
	Use:   "show <task-id>",
	Short: "Show one task",
	Args:  cobra.ExactArgs(1),
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
		t, err := app.GetTaskHandler.Handle(ctx, id)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, cli.TitleStyle.Render(displayName(*t)))
		fmt.Fprintf(out, "  ID:         %s\n", t.ID)
		fmt.Fprintf(out, "  Remaining:  %s of %s\n", cli.FormatHours(t.RemainingHours), cli.FormatHours(t.TotalHours))
		fmt.Fprintf(out, "  Due:        %s\n", t.DueDate.Format("2006-01-02"))
		fmt.Fprintf(out, "  Importance: %s (%.2f)\n", t.ImportanceLabel, t.Importance)
		fmt.Fprintf(out, "  Hard:       %t\n", t.HardDeadline)
		fmt.Fprintf(out, "  Complete:   %t\n", t.Complete)
		return nil
	},
}
