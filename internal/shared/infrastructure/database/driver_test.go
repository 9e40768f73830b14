package database

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectDriver(t *testing.T) {
	tests := []struct {
		url  string
		want Driver
	}{
		{"", DriverSQLite},
		{"postgres://u:p@localhost:5432/study", DriverPostgres},
		{"postgresql://localhost/study", DriverPostgres},
		{"sqlite:///tmp/study.db", DriverSQLite},
		{"file:study.db", DriverSQLite},
		{"/var/lib/study.sqlite3", DriverSQLite},
		{"host=localhost dbname=study", DriverPostgres},
	}
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectDriver(tt.url))
		})
	}
}

func TestRebind(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"no placeholders", "SELECT 1", "SELECT 1"},
		{"numbers placeholders in order", "UPDATE t SET a = ?, b = ? WHERE id = ?", "UPDATE t SET a = $1, b = $2 WHERE id = $3"},
		{"skips quoted literal", "SELECT '?' FROM t WHERE id = ?", "SELECT '?' FROM t WHERE id = $1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Rebind(tt.in))
		})
	}
}

func TestNewConnection_UnregisteredDriver(t *testing.T) {
	_, err := NewConnection(context.Background(), Config{Driver: "oracle"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not registered")
}

func TestSQLitePathFromURL(t *testing.T) {
	assert.Equal(t, "/tmp/a.db", SQLitePathFromURL("sqlite:///tmp/a.db"))
	assert.Equal(t, "a.db", SQLitePathFromURL("a.db"))
}
