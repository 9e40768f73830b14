package database

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// Config selects and configures a connection.
type Config struct {
	// Driver is detected from URL when empty.
	Driver Driver
	// URL is the Postgres connection string.
	URL string
	// SQLitePath defaults to ~/.studybuddy/studybuddy.db.
	SQLitePath string
	// MaxConns caps the Postgres pool.
	MaxConns int
}

type connector func(ctx context.Context, cfg Config) (Connection, error)

var connectors = map[Driver]connector{}

// RegisterDriver installs the constructor for a backend. Driver packages call
// it from init, so importing them for side effects enables the backend.
func RegisterDriver(driver Driver, fn func(ctx context.Context, cfg Config) (Connection, error)) {
	connectors[driver] = fn
}

// NewConnection opens a connection for cfg.
func NewConnection(ctx context.Context, cfg Config) (Connection, error) {
	driver := cfg.Driver
	if driver == "" {
		driver = DetectDriver(cfg.URL)
	}
	if driver == DriverSQLite && cfg.SQLitePath == "" && cfg.URL != "" {
		cfg.SQLitePath = SQLitePathFromURL(cfg.URL)
	}

	open, ok := connectors[driver]
	if !ok {
		return nil, fmt.Errorf("database driver %q is not registered", driver)
	}
	return open(ctx, cfg)
}

// DefaultSQLitePath returns ~/.studybuddy/studybuddy.db.
func DefaultSQLitePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".studybuddy", "studybuddy.db")
}

// EnsureDirectory creates the parent directory of path.
func EnsureDirectory(path string) error {
	return os.MkdirAll(filepath.Dir(path), 0o755)
}
