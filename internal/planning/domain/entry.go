package domain

import (
	"time"

	"github.com/google/uuid"
)

// EntryKind distinguishes study blocks from breaks.
type EntryKind string

const (
	EntryStudy EntryKind = "study"
	EntryBreak EntryKind = "break"
)

// Entry is one slot of a schedule. Break entries have no task.
type Entry struct {
	Day     int // 1-based
	Date    time.Time
	Start   time.Time
	End     time.Time
	Kind    EntryKind
	TaskID  uuid.UUID
	Subject string
}

// Duration returns End - Start.
func (e Entry) Duration() time.Duration {
	return e.End.Sub(e.Start)
}

// IsStudy reports whether the entry is a study block.
func (e Entry) IsStudy() bool {
	return e.Kind == EntryStudy
}

// StartOfDay returns midnight of t's date in t's location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
