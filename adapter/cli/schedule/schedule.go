package schedule

import (
	"github.com/spf13/cobra"
)

// Cmd is the schedule command group
var Cmd = &cobra.Command{
	Use:   "schedule",
	Short: "Build and view the study schedule",
	Long: `Rank open tasks and lay them out into daily study blocks, show the
result, or push it to a CalDAV calendar.`,
}

func init() {
	Cmd.AddCommand(buildCmd)
	Cmd.AddCommand(showCmd)
	Cmd.AddCommand(exportCmd)
}
