package domain

import "time"

// Settings are the pomodoro lengths.
type Settings struct {
	WorkInterval   time.Duration
	ShortBreak     time.Duration
	LongBreak      time.Duration
	LongBreakEvery int
}

// DefaultSettings returns 25m work, 5m short break, 15m long break every
// fourth round.
func DefaultSettings() Settings {
	return Settings{
		WorkInterval:   25 * time.Minute,
		ShortBreak:     5 * time.Minute,
		LongBreak:      15 * time.Minute,
		LongBreakEvery: 4,
	}
}

// BreakKind names the break that follows a work interval.
type BreakKind string

const (
	BreakShort BreakKind = "short"
	BreakLong  BreakKind = "long"
)

// Break is the rest period announced after a finished round.
type Break struct {
	Round    int
	Kind     BreakKind
	Duration time.Duration
}

// BreakAfter returns the break that follows the given 1-based round.
func (s Settings) BreakAfter(round int) Break {
	if s.LongBreakEvery > 0 && round > 0 && round%s.LongBreakEvery == 0 {
		return Break{Round: round, Kind: BreakLong, Duration: s.LongBreak}
	}
	return Break{Round: round, Kind: BreakShort, Duration: s.ShortBreak}
}

// RoundsIn returns how many full work intervals fit in focused.
func (s Settings) RoundsIn(focused time.Duration) int {
	if s.WorkInterval <= 0 || focused <= 0 {
		return 0
	}
	return int(focused / s.WorkInterval)
}
