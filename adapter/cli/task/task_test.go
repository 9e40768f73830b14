package task

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/felixgeelhaar/studybuddy/adapter/cli"
	"github.com/felixgeelhaar/studybuddy/internal/app/apptest"
	"github.com/felixgeelhaar/studybuddy/internal/study/application/queries"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupApp(t *testing.T) *cli.App {
	t.Helper()
	app := cli.NewApp(apptest.NewContainer(t))
	cli.SetApp(app)
	t.Cleanup(func() { cli.SetApp(nil) })
	return app
}

func run(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetContext(context.Background())
	err := cmd.RunE(cmd, args)
	return out.String(), err
}

func resetAddFlags(due string) {
	hours = 2
	dueDate = due
	importance = "medium"
	hardDeadline = false
}

func inDays(n int) string {
	return time.Now().AddDate(0, 0, n).Format("2006-01-02")
}

func TestAddCmd_AddsTask(t *testing.T) {
	app := setupApp(t)
	resetAddFlags(inDays(5))
	importance = "high"
	hardDeadline = true

	out, err := run(t, addCmd, "Math", "Linear algebra")
	require.NoError(t, err)
	assert.Contains(t, out, "Added")

	tasks, err := app.ListTasksHandler.Handle(context.Background(), queries.ListTasksQuery{})
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "Math", tasks[0].Subject)
	assert.Equal(t, "Linear algebra", tasks[0].Name)
	assert.Equal(t, "high", tasks[0].ImportanceLabel)
	assert.True(t, tasks[0].HardDeadline)
	assert.InDelta(t, 2.0, tasks[0].TotalHours, 1e-9)
}

func TestAddCmd_Rejects(t *testing.T) {
	tests := []struct {
		name    string
		due     string
		hours   float64
		wantErr string
	}{
		{name: "missing due date", due: "", hours: 1, wantErr: "--due is required"},
		{name: "bad due date", due: "next tuesday", hours: 1, wantErr: "invalid due date format"},
		{name: "zero hours", due: inDays(3), hours: 0, wantErr: "hours must be positive"},
		{name: "past due date", due: inDays(-3), hours: 1, wantErr: "due date is in the past"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setupApp(t)
			resetAddFlags(tt.due)
			hours = tt.hours

			_, err := run(t, addCmd, "Math")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestListCmd_ShowsTasks(t *testing.T) {
	setupApp(t)

	out, err := run(t, listCmd)
	require.NoError(t, err)
	assert.Contains(t, out, "No tasks found.")

	resetAddFlags(inDays(4))
	_, err = run(t, addCmd, "Math")
	require.NoError(t, err)
	resetAddFlags(inDays(0))
	_, err = run(t, addCmd, "History", "Essay")
	require.NoError(t, err)

	showAll, filterSubject = false, ""
	out, err = run(t, listCmd)
	require.NoError(t, err)
	assert.Contains(t, out, "Tasks (2)")
	assert.Contains(t, out, "Math")
	assert.Contains(t, out, "History: Essay")
	assert.Contains(t, out, "[TODAY]")

	filterSubject = "Math"
	out, err = run(t, listCmd)
	filterSubject = ""
	require.NoError(t, err)
	assert.Contains(t, out, "Tasks (1)")
	assert.NotContains(t, out, "History")
}

func TestRemoveCmd_ByPrefix(t *testing.T) {
	app := setupApp(t)
	resetAddFlags(inDays(4))
	_, err := run(t, addCmd, "Math")
	require.NoError(t, err)

	tasks, err := app.ListTasksHandler.Handle(context.Background(), queries.ListTasksQuery{})
	require.NoError(t, err)
	require.Len(t, tasks, 1)

	out, err := run(t, removeCmd, tasks[0].ID.String()[:8])
	require.NoError(t, err)
	assert.Contains(t, out, "Removed")

	tasks, err = app.ListTasksHandler.Handle(context.Background(), queries.ListTasksQuery{IncludeCompleted: true})
	require.NoError(t, err)
	assert.Empty(t, tasks)

	_, err = run(t, removeCmd, "ffffffff")
	assert.ErrorContains(t, err, "no task matches")
}

func TestImportAndExportCmd(t *testing.T) {
	app := setupApp(t)
	path := filepath.Join(t.TempDir(), "tasks.yaml")
	doc := "tasks:\n" +
		"  - subject: Math\n    hours: 6\n    due: " + inDays(10) + "\n    importance: high\n" +
		"  - subject: History\n    name: Essay\n    hours: 3\n    due: " + inDays(5) + "\n    hard_deadline: true\n" +
		"  - subject: Broken\n    hours: 0\n    due: " + inDays(5) + "\n"
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))

	out, err := run(t, importCmd, path)
	require.NoError(t, err)
	assert.Contains(t, out, "2 of 3 tasks")
	assert.Contains(t, out, "entry 3 (Broken)")

	tasks, err := app.ListTasksHandler.Handle(context.Background(), queries.ListTasksQuery{})
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, "Math", tasks[0].Subject)
	assert.Equal(t, "History", tasks[1].Subject)

	exportAll = false
	out, err = run(t, exportCmd)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "tasks:"))
	assert.Contains(t, out, "subject: Math")
	assert.Contains(t, out, "name: Essay")
	assert.Contains(t, out, "hard_deadline: true")
}

func TestCommands_RequireApp(t *testing.T) {
	cli.SetApp(nil)
	for _, cmd := range []*cobra.Command{addCmd, listCmd, removeCmd, importCmd, exportCmd} {
		_, err := run(t, cmd, "x")
		assert.ErrorIs(t, err, cli.ErrNotInitialized, cmd.Name())
	}
}
