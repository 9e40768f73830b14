package schedule

import (
	"errors"
	"fmt"

	"github.com/felixgeelhaar/studybuddy/adapter/cli"
	"github.com/felixgeelhaar/studybuddy/internal/planning/application/commands"
	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Push the latest schedule to the CalDAV calendar",
	Long: `Write every study block of the latest schedule as an event in the
configured CalDAV calendar (CALDAV_URL). Re-exporting replaces the
events written before.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireApp()
		if err != nil {
			return err
		}

		result, err := app.ExportScheduleHandler.Handle(cmd.Context(), commands.ExportScheduleCommand{})
		if errors.Is(err, commands.ErrNoCalendar) {
			return fmt.Errorf("no calendar configured, set CALDAV_URL: %w", err)
		}
		if err != nil {
			return fmt.Errorf("failed to export schedule: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s %d study block(s) from %s\n",
			cli.SuccessStyle.Render("Exported"), result.Exported, cli.ShortID(result.ScheduleID))
		return nil
	},
}
