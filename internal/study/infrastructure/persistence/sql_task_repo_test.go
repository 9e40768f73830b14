package persistence_test

import (
	"context"
	"testing"
	"time"

	"github.com/felixgeelhaar/studybuddy/internal/shared/infrastructure/database"
	"github.com/felixgeelhaar/studybuddy/internal/shared/infrastructure/database/dbtest"
	"github.com/felixgeelhaar/studybuddy/internal/study/domain/task"
	"github.com/felixgeelhaar/studybuddy/internal/study/infrastructure/persistence"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

func newTask(t *testing.T, subject string, hours float64, position int) *task.Task {
	t.Helper()
	tk, err := task.NewTask(task.NewTaskParams{
		Subject:      subject,
		Hours:        hours,
		DueDate:      now.AddDate(0, 0, 3),
		Importance:   task.ImportanceHigh,
		HardDeadline: subject == "Physics",
		Position:     position,
	}, now)
	require.NoError(t, err)
	return tk
}

func TestSQLTaskRepository_RoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := persistence.NewSQLTaskRepository(dbtest.NewSQLite(t))

	original := newTask(t, "Physics", 2.5, 1)
	require.NoError(t, repo.Save(ctx, original))

	loaded, err := repo.FindByID(ctx, original.ID())
	require.NoError(t, err)
	assert.Equal(t, original.ID(), loaded.ID())
	assert.Equal(t, "Physics", loaded.Subject())
	assert.Equal(t, 150*time.Minute, loaded.Total())
	assert.Equal(t, 150*time.Minute, loaded.Remaining())
	assert.Equal(t, original.DueDate(), loaded.DueDate())
	assert.Equal(t, task.ImportanceHigh, loaded.Importance())
	assert.True(t, loaded.HardDeadline())
	assert.Equal(t, original.Version(), loaded.Version())
	assert.True(t, original.CreatedAt().Equal(loaded.CreatedAt()))
}

func TestSQLTaskRepository_UpdateProgress(t *testing.T) {
	ctx := context.Background()
	repo := persistence.NewSQLTaskRepository(dbtest.NewSQLite(t))

	tk := newTask(t, "Math", 1, 1)
	require.NoError(t, repo.Save(ctx, tk))

	tk.RecordProgress(time.Hour, now.Add(time.Hour))
	require.NoError(t, repo.Save(ctx, tk))

	loaded, err := repo.FindByID(ctx, tk.ID())
	require.NoError(t, err)
	assert.True(t, loaded.IsComplete())

	open, err := repo.FindOpen(ctx)
	require.NoError(t, err)
	assert.Empty(t, open)

	all, err := repo.FindAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestSQLTaskRepository_OrderAndPosition(t *testing.T) {
	ctx := context.Background()
	repo := persistence.NewSQLTaskRepository(dbtest.NewSQLite(t))

	pos, err := repo.NextPosition(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, pos)

	require.NoError(t, repo.Save(ctx, newTask(t, "Second", 1, 2)))
	require.NoError(t, repo.Save(ctx, newTask(t, "First", 1, 1)))

	pos, err = repo.NextPosition(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, pos)

	all, err := repo.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "First", all[0].Subject())
	assert.Equal(t, "Second", all[1].Subject())
}

func TestSQLTaskRepository_NotFound(t *testing.T) {
	ctx := context.Background()
	repo := persistence.NewSQLTaskRepository(dbtest.NewSQLite(t))

	_, err := repo.FindByID(ctx, uuid.New())
	assert.ErrorIs(t, err, task.ErrTaskNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, uuid.New()), task.ErrTaskNotFound)
}

func TestSQLTaskRepository_DeleteInTransaction(t *testing.T) {
	ctx := context.Background()
	conn := dbtest.NewSQLite(t)
	repo := persistence.NewSQLTaskRepository(conn)
	tk := newTask(t, "History", 1, 1)
	require.NoError(t, repo.Save(ctx, tk))

	uow := database.NewUnitOfWork(conn)
	txCtx, err := uow.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, repo.Delete(txCtx, tk.ID()))
	require.NoError(t, uow.Rollback(txCtx))

	_, err = repo.FindByID(ctx, tk.ID())
	assert.NoError(t, err, "rolled back delete leaves the task")
}
