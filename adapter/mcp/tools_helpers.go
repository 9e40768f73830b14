package mcp

import (
	"fmt"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

func parseDate(value string, fallback time.Time) (time.Time, error) {
	if value == "" {
		return fallback, nil
	}
	parsed, err := time.ParseInLocation(dateLayout, value, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date format, use YYYY-MM-DD: %w", err)
	}
	return parsed, nil
}

func parseDuration(value string) (time.Duration, error) {
	if value == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid duration, use e.g. 90m or 2h: %w", err)
	}
	return d, nil
}

// actor is recorded on events staged by MCP tools.
const actor = "mcp"

func stringsReader(s string) *strings.Reader {
	return strings.NewReader(s)
}
