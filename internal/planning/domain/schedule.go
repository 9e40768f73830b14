package domain

import (
	"time"

	sharedDomain "github.com/felixgeelhaar/studybuddy/internal/shared/domain"
	"github.com/google/uuid"
)

// Schedule is an ordered study plan. Entry order is execution order.
type Schedule struct {
	sharedDomain.BaseAggregateRoot
	startDate     time.Time
	dailyCapacity time.Duration
	entries       []Entry
	generatedAt   time.Time
	stale         bool
}

// NewSchedule records a freshly built plan.
func NewSchedule(startDate time.Time, dailyCapacity time.Duration, entries []Entry, now time.Time) *Schedule {
	s := &Schedule{
		BaseAggregateRoot: sharedDomain.NewBaseAggregateRoot(now),
		startDate:         StartOfDay(startDate),
		dailyCapacity:     dailyCapacity,
		entries:           append([]Entry(nil), entries...),
		generatedAt:       now,
	}
	s.AddDomainEvent(newScheduleGenerated(s, now))
	return s
}

// RehydrateSchedule rebuilds a schedule from storage.
func RehydrateSchedule(
	id uuid.UUID,
	startDate time.Time,
	dailyCapacity time.Duration,
	entries []Entry,
	generatedAt time.Time,
	stale bool,
	version int,
	createdAt, updatedAt time.Time,
) *Schedule {
	entity := sharedDomain.RehydrateBaseEntity(id, createdAt, updatedAt)
	return &Schedule{
		BaseAggregateRoot: sharedDomain.RehydrateBaseAggregateRoot(entity, version),
		startDate:         startDate,
		dailyCapacity:     dailyCapacity,
		entries:           entries,
		generatedAt:       generatedAt,
		stale:             stale,
	}
}

func (s *Schedule) StartDate() time.Time         { return s.startDate }
func (s *Schedule) DailyCapacity() time.Duration { return s.dailyCapacity }
func (s *Schedule) GeneratedAt() time.Time       { return s.generatedAt }
func (s *Schedule) Stale() bool                  { return s.stale }
func (s *Schedule) IsEmpty() bool                { return len(s.entries) == 0 }

// Entries returns a copy of the entries in execution order.
func (s *Schedule) Entries() []Entry {
	return append([]Entry(nil), s.entries...)
}

// Days returns the number of days the schedule spans.
func (s *Schedule) Days() int {
	days := 0
	for _, e := range s.entries {
		days = max(days, e.Day)
	}
	return days
}

// StudyTime sums the study entries.
func (s *Schedule) StudyTime() time.Duration {
	var total time.Duration
	for _, e := range s.entries {
		if e.IsStudy() {
			total += e.Duration()
		}
	}
	return total
}

// HasEntryFor reports whether the task has at least one study entry.
func (s *Schedule) HasEntryFor(taskID uuid.UUID) bool {
	if s == nil {
		return false
	}
	for _, e := range s.entries {
		if e.IsStudy() && e.TaskID == taskID {
			return true
		}
	}
	return false
}

// EntriesFor returns the task's study entries in order.
func (s *Schedule) EntriesFor(taskID uuid.UUID) []Entry {
	var out []Entry
	for _, e := range s.entries {
		if e.IsStudy() && e.TaskID == taskID {
			out = append(out, e)
		}
	}
	return out
}

// DaysFor returns the distinct days on which the task is studied.
func (s *Schedule) DaysFor(taskID uuid.UUID) []int {
	var days []int
	for _, e := range s.EntriesFor(taskID) {
		if len(days) == 0 || days[len(days)-1] != e.Day {
			days = append(days, e.Day)
		}
	}
	return days
}

// MarkStale flags the schedule as out of date with the task list.
// Marking an already stale schedule is a no-op.
func (s *Schedule) MarkStale(at time.Time) bool {
	if s.stale {
		return false
	}
	s.stale = true
	s.Touch(at)
	return true
}
