package taskfile

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/felixgeelhaar/studybuddy/internal/study/application/queries"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `tasks:
  - subject: Physics
    hours: 5
    due: 2026-03-09
    importance: high
    hard_deadline: true
  - subject: Math
    name: Linear algebra
    hours: 10
    due: "2026-03-12"
    importance: 0.4
  - subject: Broken
    hours: 1
    due: next week
`

func TestRead(t *testing.T) {
	entries, err := Read(strings.NewReader(sample))
	require.NoError(t, err)
	require.Len(t, entries, 3)

	assert.Equal(t, "Physics", entries[0].Subject)
	assert.Equal(t, 5.0, entries[0].Hours)
	assert.Equal(t, "2026-03-09", entries[0].Due)
	assert.True(t, entries[0].HardDeadline)
	assert.Equal(t, "Linear algebra", entries[1].Name)
	assert.Equal(t, "0.4", entries[1].Importance)
}

func TestRead_Empty(t *testing.T) {
	entries, err := Read(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRead_Malformed(t *testing.T) {
	_, err := Read(strings.NewReader("tasks: [subject: x"))
	assert.Error(t, err)
}

func TestCommands(t *testing.T) {
	entries, err := Read(strings.NewReader(sample))
	require.NoError(t, err)

	cmds := Commands(entries, "cli")
	require.Len(t, cmds, 3)
	assert.Equal(t, time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC), cmds[0].DueDate)
	assert.Equal(t, "high", cmds[0].Importance)
	assert.Equal(t, "cli", cmds[1].Actor)
	assert.True(t, cmds[2].DueDate.IsZero())
}

func TestWriteThenRead(t *testing.T) {
	dtos := []queries.TaskDTO{{
		ID:              uuid.New(),
		Subject:         "Physics",
		Name:            "Physics",
		TotalHours:      5,
		RemainingHours:  3.5,
		DueDate:         time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC),
		Importance:      1,
		ImportanceLabel: "high",
	}}

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FromDTOs(dtos)))

	entries, err := Read(&buf)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, Entry{Subject: "Physics", Hours: 5, Remaining: 3.5, Due: "2026-03-09", Importance: "high"}, entries[0])
}
