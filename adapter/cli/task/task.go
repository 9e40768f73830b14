package task

import (
	"github.com/spf13/cobra"
)

// Cmd is the task command group
var Cmd = &cobra.Command{
	Use:   "task",
	Short: "Manage study tasks",
	Long:  `Add, list, import, export and remove the tasks the planner schedules.`,
}

func init() {
	Cmd.AddCommand(addCmd)
	Cmd.AddCommand(listCmd)
	Cmd.AddCommand(showCmd)
	Cmd.AddCommand(removeCmd)
	Cmd.AddCommand(importCmd)
	Cmd.AddCommand(exportCmd)
}
