package schedule

import (
	"fmt"
	"time"

	"github.com/felixgeelhaar/studybuddy/adapter/cli"
	"github.com/felixgeelhaar/studybuddy/internal/planning/application/commands"
	"github.com/felixgeelhaar/studybuddy/internal/planning/application/queries"
	"github.com/spf13/cobra"
)

var (
	startDate string
	capacity  time.Duration
	buildShow bool
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Rank open tasks and build a new schedule",
	Long: `Rank open tasks by urgency, importance and remaining time and lay
them out into daily study blocks starting today (or --start).

Examples:
  studybuddy schedule build
  studybuddy schedule build --capacity 3h
  studybuddy schedule build --start 2026-11-01 --show`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireApp()
		if err != nil {
			return err
		}

		command := commands.BuildScheduleCommand{
			DailyCapacity: capacity,
			Actor:         app.Actor,
		}
		if startDate != "" {
			start, err := time.ParseInLocation("2006-01-02", startDate, time.Local)
			if err != nil {
				return fmt.Errorf("invalid start date format, use YYYY-MM-DD: %w", err)
			}
			command.StartDate = start
		}

		result, err := app.BuildScheduleHandler.Handle(cmd.Context(), command)
		if err != nil {
			return fmt.Errorf("failed to build schedule: %w", err)
		}

		out := cmd.OutOrStdout()
		s := result.Schedule
		fmt.Fprintf(out, "%s %s over %d day(s), %s of study\n",
			cli.SuccessStyle.Render("Built schedule"),
			cli.MutedStyle.Render(cli.ShortID(result.ScheduleID)),
			s.Days(),
			cli.FormatHours(s.StudyTime().Hours()),
		)

		if len(result.Ranked) > 0 {
			fmt.Fprintln(out, cli.TitleStyle.Render("Priority"))
			for i, st := range result.Ranked {
				fmt.Fprintf(out, "  %d. %-24s score %.3f  %s\n", i+1, st.Task.Subject(), st.Score,
					cli.MutedStyle.Render(fmt.Sprintf("u=%.2f i=%.2f m=%.2f", st.Urgency, st.Importance, st.Magnitude)))
			}
		}
		for _, rejected := range result.Rejected {
			fmt.Fprintf(cmd.ErrOrStderr(), "%s %v\n", cli.WarnStyle.Render("not scheduled:"), rejected)
		}

		if buildShow {
			printSchedule(out, queries.ToDTO(s))
		}
		return nil
	},
}

func init() {
	buildCmd.Flags().StringVar(&startDate, "start", "", "first day of the schedule (YYYY-MM-DD, default today)")
	buildCmd.Flags().DurationVar(&capacity, "capacity", 0, "study time per day, overrides the configured capacity")
	buildCmd.Flags().BoolVar(&buildShow, "show", false, "print the schedule after building it")
}
