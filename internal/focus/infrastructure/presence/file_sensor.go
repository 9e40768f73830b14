// Package presence provides presence sensors for the focus runner.
package presence

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/felixgeelhaar/studybuddy/internal/shared/infrastructure/security"
	"github.com/fsnotify/fsnotify"
)

// ParseSignal reads a presence file value. It accepts present/absent and
// the usual boolean spellings.
func ParseSignal(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "present", "here", "1", "true", "yes", "on":
		return true, nil
	case "absent", "away", "0", "false", "no", "off":
		return false, nil
	default:
		return false, fmt.Errorf("unrecognized presence value %q", strings.TrimSpace(s))
	}
}

// FileSensor watches a file whose content is "present" or "absent" and
// emits a signal whenever the value changes. An external detector writes
// the file.
type FileSensor struct {
	path    string
	logger  *slog.Logger
	watcher *fsnotify.Watcher
	events  chan bool

	mu    sync.Mutex
	last  *bool
	close sync.Once
}

// NewFileSensor watches path. The parent directory must exist; the file
// itself may appear later.
func NewFileSensor(path string, logger *slog.Logger) (*FileSensor, error) {
	if logger == nil {
		logger = slog.Default()
	}
	abs, err := security.ValidateFilePath(path)
	if err != nil {
		return nil, fmt.Errorf("presence file: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	// Watch the directory so editors that replace the file are seen.
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}

	return &FileSensor{
		path:    abs,
		logger:  logger,
		watcher: watcher,
		events:  make(chan bool, 16),
	}, nil
}

// Events implements the runner's PresenceSensor.
func (s *FileSensor) Events() <-chan bool {
	return s.events
}

// Start emits the current value, if the file exists, then follows changes
// until ctx is cancelled. The events channel is closed on return.
func (s *FileSensor) Start(ctx context.Context) {
	go s.loop(ctx)
}

func (s *FileSensor) loop(ctx context.Context) {
	defer close(s.events)
	defer s.Close()

	s.read(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-s.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != s.path {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
				s.read(ctx)
			}
		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			s.logger.Warn("presence watcher error", "path", s.path, "error", err)
		}
	}
}

func (s *FileSensor) read(ctx context.Context) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return
	}
	if err != nil {
		s.logger.Warn("failed to read presence file", "path", s.path, "error", err)
		return
	}
	if strings.TrimSpace(string(data)) == "" {
		// Truncation before a write shows up as an empty read.
		return
	}
	present, err := ParseSignal(string(data))
	if err != nil {
		s.logger.Warn("ignoring presence file content", "path", s.path, "error", err)
		return
	}

	s.mu.Lock()
	unchanged := s.last != nil && *s.last == present
	if !unchanged {
		s.last = &present
	}
	s.mu.Unlock()
	if unchanged {
		return
	}

	s.logger.Debug("presence changed", "present", present)
	select {
	case s.events <- present:
	case <-ctx.Done():
	}
}

// Close stops watching.
func (s *FileSensor) Close() error {
	var err error
	s.close.Do(func() { err = s.watcher.Close() })
	return err
}

// Write sets the presence file, for the CLI and for tests.
func Write(path string, present bool) error {
	value := "absent"
	if present {
		value = "present"
	}
	if err := os.WriteFile(path, []byte(value+"\n"), 0o644); err != nil {
		return fmt.Errorf("write presence file: %w", err)
	}
	return nil
}
