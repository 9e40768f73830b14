package task

import (
	"math"
	"time"
)

// maxHours keeps FromHours clear of time.Duration overflow.
const maxHours = float64(math.MaxInt64/int64(time.Hour)) - 1

// FromHours converts fractional hours to a Duration truncated to whole
// seconds. NaN, infinities and values beyond the Duration range return -1.
func FromHours(h float64) time.Duration {
	if math.IsNaN(h) || math.IsInf(h, 0) || math.Abs(h) > maxHours {
		return -1
	}
	return time.Duration(h * float64(time.Hour)).Truncate(time.Second)
}

// Hours converts a Duration to fractional hours.
func Hours(d time.Duration) float64 {
	return d.Hours()
}

// DateOf returns midnight UTC of t's calendar date in t's location.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
