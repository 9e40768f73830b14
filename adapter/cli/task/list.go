package task

import (
	"fmt"
	"time"

	"github.com/felixgeelhaar/studybuddy/adapter/cli"
	"github.com/felixgeelhaar/studybuddy/internal/study/application/queries"
	"github.com/spf13/cobra"
)

var (
	showAll       bool
	filterSubject string
)

var listCmd = &cobra.Command{
	Use:     "list",
	Short:   "List tasks",
	Aliases: []string{"ls"},
	Long: `List tasks in the order they were added.

Examples:
  studybuddy task list             # Open tasks
  studybuddy task list --all       # Include completed tasks
  studybuddy task list -s Math     # One subject`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireApp()
		if err != nil {
			return err
		}

		query := listQuery(showAll)
		query.Subject = filterSubject
		tasks, err := app.ListTasksHandler.Handle(cmd.Context(), query)
		if err != nil {
			return fmt.Errorf("failed to list tasks: %w", err)
		}

		out := cmd.OutOrStdout()
		if len(tasks) == 0 {
			fmt.Fprintln(out, "No tasks found.")
			return nil
		}

		fmt.Fprintln(out, cli.TitleStyle.Render(fmt.Sprintf("Tasks (%d)", len(tasks))))
		today := time.Now()
		for _, t := range tasks {
			fmt.Fprintf(out, "%s %s %s\n", statusIcon(t), displayName(t), dueMarker(t, today))
			fmt.Fprintf(out, "   %s  %s left of %s  due %s  importance %s\n",
				cli.MutedStyle.Render(cli.ShortID(t.ID)),
				cli.FormatHours(t.RemainingHours),
				cli.FormatHours(t.TotalHours),
				t.DueDate.Format("2006-01-02"),
				t.ImportanceLabel,
			)
		}
		return nil
	},
}

func listQuery(all bool) queries.ListTasksQuery {
	return queries.ListTasksQuery{IncludeCompleted: all}
}

func displayName(t queries.TaskDTO) string {
	if t.Name == "" || t.Name == t.Subject {
		return t.Subject
	}
	return t.Subject + ": " + t.Name
}

func statusIcon(t queries.TaskDTO) string {
	switch {
	case t.Complete:
		return "[x]"
	case t.RemainingHours < t.TotalHours:
		return "[>]"
	default:
		return "[ ]"
	}
}

func dueMarker(t queries.TaskDTO, now time.Time) string {
	if t.Complete {
		return ""
	}
	y, m, d := now.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	due := time.Date(t.DueDate.Year(), t.DueDate.Month(), t.DueDate.Day(), 0, 0, 0, 0, now.Location())
	marker := ""
	switch {
	case due.Before(today):
		marker = cli.ErrorStyle.Render("[OVERDUE]")
	case due.Equal(today):
		marker = cli.WarnStyle.Render("[TODAY]")
	}
	if t.HardDeadline {
		marker += cli.MutedStyle.Render(" (hard)")
	}
	return marker
}

func init() {
	listCmd.Flags().BoolVarP(&showAll, "all", "a", false, "include completed tasks")
	listCmd.Flags().StringVarP(&filterSubject, "subject", "s", "", "only tasks for this subject")
}
