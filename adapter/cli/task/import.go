package task

import (
	"fmt"

	"github.com/felixgeelhaar/studybuddy/adapter/cli"
	"github.com/felixgeelhaar/studybuddy/internal/shared/infrastructure/security"
	"github.com/felixgeelhaar/studybuddy/internal/study/application/commands"
	"github.com/felixgeelhaar/studybuddy/internal/study/infrastructure/taskfile"
	"github.com/spf13/cobra"
)

var importCmd = &cobra.Command{
	Use:   "import <file.yaml>",
	Short: "Import tasks from a YAML task file",
	Long: `Import tasks from a YAML task file. Use "-" to read standard input.

Entries that fail validation are reported and skipped; the rest are added.

  tasks:
    - subject: Math
      hours: 6
      due: 2026-11-02
      importance: high
    - subject: History
      name: Essay draft
      hours: 3
      due: 2026-10-30
      hard_deadline: true`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireApp()
		if err != nil {
			return err
		}

		var entries []taskfile.Entry
		if args[0] == "-" {
			entries, err = taskfile.Read(cmd.InOrStdin())
		} else {
			entries, err = taskfile.Load(args[0])
		}
		if err != nil {
			return err
		}

		result, err := app.ImportTasksHandler.Handle(cmd.Context(), commands.ImportTasksCommand{
			Tasks: taskfile.Commands(entries, app.Actor),
			Actor: app.Actor,
		})
		if err != nil {
			return fmt.Errorf("failed to import tasks: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s %d of %d tasks\n", cli.SuccessStyle.Render("Imported"), len(result.Imported), len(entries))
		for _, f := range result.Rejected {
			fmt.Fprintf(cmd.ErrOrStderr(), "%s entry %d (%s): %v\n", cli.WarnStyle.Render("skipped"), f.Index+1, f.Subject, f.Err)
		}
		return nil
	},
}

var exportCmd = &cobra.Command{
	Use:   "export [file.yaml]",
	Short: "Write tasks as a YAML task file",
	Long:  `Write open tasks (all with --all) in the import format, to a file or standard output.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireApp()
		if err != nil {
			return err
		}
		tasks, err := app.ListTasksHandler.Handle(cmd.Context(), listQuery(exportAll))
		if err != nil {
			return err
		}
		entries := taskfile.FromDTOs(tasks)

		if len(args) == 0 || args[0] == "-" {
			return taskfile.Write(cmd.OutOrStdout(), entries)
		}
		f, err := security.SafeCreate(args[0])
		if err != nil {
			return err
		}
		if err := taskfile.Write(f, entries); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %d tasks to %s\n", len(entries), args[0])
		return nil
	},
}

var exportAll bool

func init() {
	exportCmd.Flags().BoolVarP(&exportAll, "all", "a", false, "include completed tasks")
}
