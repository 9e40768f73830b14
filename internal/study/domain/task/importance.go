package task

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Importance is the user-assigned priority weight in [0,1].
type Importance float64

// Named importance levels accepted at intake.
const (
	ImportanceLow    Importance = 1.0 / 3.0
	ImportanceMedium Importance = 2.0 / 3.0
	ImportanceHigh   Importance = 1.0
)

// ParseImportance accepts "low", "medium", "high" or a number in [0,1].
// An empty string means medium.
func ParseImportance(s string) (Importance, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return ImportanceMedium, nil
	case "low":
		return ImportanceLow, nil
	case "medium", "med":
		return ImportanceMedium, nil
	case "high":
		return ImportanceHigh, nil
	}

	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("importance %q: want low, medium, high or a number in [0,1]", s)
	}
	imp := Importance(v)
	if !imp.Valid() {
		return 0, fmt.Errorf("importance %v out of range [0,1]", v)
	}
	return imp, nil
}

// Valid reports whether the weight is a finite number in [0,1].
func (i Importance) Valid() bool {
	f := float64(i)
	return !math.IsNaN(f) && f >= 0 && f <= 1
}

// Float64 returns the raw weight.
func (i Importance) Float64() float64 { return float64(i) }

func (i Importance) String() string {
	switch i {
	case ImportanceLow:
		return "low"
	case ImportanceMedium:
		return "medium"
	case ImportanceHigh:
		return "high"
	default:
		return strconv.FormatFloat(float64(i), 'f', 2, 64)
	}
}
