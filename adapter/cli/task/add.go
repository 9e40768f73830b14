package task

import (
	"fmt"
	"strings"
	"time"

	"github.com/felixgeelhaar/studybuddy/adapter/cli"
	"github.com/felixgeelhaar/studybuddy/internal/study/application/commands"
	"github.com/spf13/cobra"
)

var (
	hours        float64
	dueDate      string
	importance   string
	hardDeadline bool
)

var addCmd = &cobra.Command{
	Use:   "add <subject> [name]",
	Short: "Add a study task",
	Long: `Add a study task.

The subject groups tasks on the schedule; the name defaults to the subject.

Examples:
  studybuddy task add Math --hours 6 --due 2026-11-02 --importance high
  studybuddy task add History "Essay draft" --hours 3 --due 2026-10-30 --hard`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireApp()
		if err != nil {
			return err
		}
		if dueDate == "" {
			return fmt.Errorf("--due is required")
		}
		due, err := time.ParseInLocation("2006-01-02", dueDate, time.Local)
		if err != nil {
			return fmt.Errorf("invalid due date format, use YYYY-MM-DD: %w", err)
		}

		name := ""
		if len(args) > 1 {
			name = strings.TrimSpace(args[1])
		}

		result, err := app.AddTaskHandler.Handle(cmd.Context(), commands.AddTaskCommand{
			Subject:      args[0],
			Name:         name,
			Hours:        hours,
			DueDate:      due,
			Importance:   importance,
			HardDeadline: hardDeadline,
			Actor:        app.Actor,
		})
		if err != nil {
			return fmt.Errorf("failed to add task: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "%s %s (%s)\n",
			cli.SuccessStyle.Render("Added"), args[0], cli.MutedStyle.Render(cli.ShortID(result.TaskID)))
		return nil
	},
}

func init() {
	addCmd.Flags().Float64VarP(&hours, "hours", "H", 0, "estimated study hours")
	addCmd.Flags().StringVarP(&dueDate, "due", "d", "", "due date (YYYY-MM-DD)")
	addCmd.Flags().StringVarP(&importance, "importance", "i", "medium", "low, medium, high or a number in [0,1]")
	addCmd.Flags().BoolVar(&hardDeadline, "hard", false, "never schedule this task after its due date")
}
