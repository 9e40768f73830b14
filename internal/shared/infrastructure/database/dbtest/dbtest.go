// Package dbtest opens migrated throwaway databases for repository tests.
package dbtest

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/studybuddy/internal/shared/infrastructure/database"
	_ "github.com/felixgeelhaar/studybuddy/internal/shared/infrastructure/database/sqlite"
	"github.com/felixgeelhaar/studybuddy/internal/shared/infrastructure/migrations"
	"github.com/felixgeelhaar/studybuddy/pkg/observability"
)

// NewSQLite returns a migrated SQLite connection in t's temp dir. It is
// closed when the test ends.
func NewSQLite(t testing.TB) database.Connection {
	t.Helper()
	ctx := context.Background()

	conn, err := database.NewConnection(ctx, database.Config{
		Driver:     database.DriverSQLite,
		SQLitePath: filepath.Join(t.TempDir(), "studybuddy.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	_, err = migrations.Run(ctx, conn, observability.Discard())
	require.NoError(t, err)
	return conn
}
