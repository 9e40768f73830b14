package schedule

import (
	"errors"
	"fmt"
	"io"

	"github.com/felixgeelhaar/studybuddy/adapter/cli"
	"github.com/felixgeelhaar/studybuddy/internal/planning/application/queries"
	"github.com/felixgeelhaar/studybuddy/internal/planning/domain"
	"github.com/spf13/cobra"
)

var (
	showDay  int
	showJSON bool
)

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the latest schedule",
	Long: `Show the latest schedule, one day with --day N (1-based).

A schedule is marked stale once tasks change after it was built; run
"studybuddy schedule build" to refresh it.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireApp()
		if err != nil {
			return err
		}

		dto, err := app.GetScheduleHandler.Handle(cmd.Context(), queries.GetScheduleQuery{Day: showDay})
		if errors.Is(err, domain.ErrScheduleNotFound) {
			fmt.Fprintln(cmd.OutOrStdout(), `No schedule yet. Run "studybuddy schedule build".`)
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to load schedule: %w", err)
		}

		if showJSON {
			return cli.PrintJSON(cmd.OutOrStdout(), dto)
		}
		printSchedule(cmd.OutOrStdout(), dto)
		return nil
	},
}

func printSchedule(out io.Writer, s *queries.ScheduleDTO) {
	header := fmt.Sprintf("Schedule from %s (%s/day)", s.StartDate, cli.FormatHours(s.DailyCapacity))
	fmt.Fprintln(out, cli.TitleStyle.Render(header))
	if s.Stale {
		fmt.Fprintln(out, cli.WarnStyle.Render("  stale: tasks changed since this schedule was built"))
	}
	if len(s.Entries) == 0 {
		fmt.Fprintln(out, "  Nothing scheduled.")
		return
	}

	day := 0
	for _, e := range s.Entries {
		if e.Day != day {
			day = e.Day
			fmt.Fprintf(out, "\nDay %d  %s\n", e.Day, cli.MutedStyle.Render(e.Date))
		}
		slot := fmt.Sprintf("  %s-%s", e.Start.Format("15:04"), e.End.Format("15:04"))
		if e.Kind == string(domain.EntryBreak) {
			fmt.Fprintf(out, "%s  %s\n", slot, cli.BreakStyle.Render("break"))
			continue
		}
		fmt.Fprintf(out, "%s  %s %s\n", slot, e.Subject, cli.MutedStyle.Render(cli.FormatHours(e.Hours)))
	}
}

func init() {
	showCmd.Flags().IntVar(&showDay, "day", 0, "only show this day (1-based)")
	showCmd.Flags().BoolVar(&showJSON, "json", false, "print the schedule as JSON")
}
