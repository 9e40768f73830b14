package database

import "time"

// timestampLayout is fixed width so stored values sort as text.
const timestampLayout = "2006-01-02T15:04:05.000000Z"

// DateLayout is used for calendar dates without a time of day.
const DateLayout = "2006-01-02"

// FormatTime renders t in UTC for TEXT timestamp columns.
func FormatTime(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

// ParseTime reads a value written by FormatTime. RFC 3339 is accepted too.
func ParseTime(s string) (time.Time, error) {
	if t, err := time.Parse(timestampLayout, s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339Nano, s)
}

// NullTime formats an optional timestamp, returning nil for nil.
func NullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return FormatTime(*t)
}

// ParseNullTime reads an optional TEXT timestamp.
func ParseNullTime(s *string) (*time.Time, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	t, err := ParseTime(*s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
