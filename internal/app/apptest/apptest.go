// Package apptest builds a fully wired container on a temporary SQLite
// database for adapter tests.
package apptest

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/felixgeelhaar/studybuddy/internal/app"
	"github.com/felixgeelhaar/studybuddy/pkg/config"
	"github.com/felixgeelhaar/studybuddy/pkg/observability"
	"github.com/stretchr/testify/require"
)

// NewContainer returns a container backed by a fresh SQLite file. Brokers,
// Redis and CalDAV are disabled. The container is closed on cleanup.
func NewContainer(t *testing.T) *app.Container {
	t.Helper()
	for _, key := range []string{"DATABASE_URL", "REDIS_URL", "RABBITMQ_URL", "CALDAV_URL", "STUDYBUDDY_CONFIG", "STUDYBUDDY_PRESENCE_FILE"} {
		t.Setenv(key, "")
	}

	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "studybuddy.yaml")
	doc := "app_env: test\nsqlite_path: " + filepath.Join(dir, "studybuddy.db") + "\n"
	require.NoError(t, os.WriteFile(cfgPath, []byte(doc), 0o600))

	cfg, err := config.LoadFile(cfgPath)
	require.NoError(t, err)

	c, err := app.NewContainer(context.Background(), cfg, observability.Discard())
	require.NoError(t, err)
	t.Cleanup(c.Close)
	return c
}
