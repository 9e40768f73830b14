package services

import (
	"fmt"
	"sort"
	"time"

	"github.com/felixgeelhaar/studybuddy/internal/planning/domain"
	"github.com/felixgeelhaar/studybuddy/internal/study/domain/task"
)

// BuilderConfig controls how study time is laid out.
type BuilderConfig struct {
	DailyCapacity     time.Duration
	BlockLength       time.Duration // 0 places each day's share in one entry
	BreakLength       time.Duration // 0 disables breaks
	BlocksBeforeBreak int
	DayStart          time.Duration // offset from midnight
}

// DefaultBuilderConfig returns 5h days of 1h blocks from 09:00 with a 10m
// break after every two blocks.
func DefaultBuilderConfig() BuilderConfig {
	return BuilderConfig{
		DailyCapacity:     5 * time.Hour,
		BlockLength:       time.Hour,
		BreakLength:       10 * time.Minute,
		BlocksBeforeBreak: 2,
		DayStart:          9 * time.Hour,
	}
}

// Validate checks that one day of study fits in a calendar day.
func (c BuilderConfig) Validate() error {
	if c.DailyCapacity <= 0 || c.DailyCapacity > 24*time.Hour {
		return fmt.Errorf("%w: got %s", domain.ErrInvalidCapacity, c.DailyCapacity)
	}
	if c.BlockLength < 0 || c.BreakLength < 0 || c.BlocksBeforeBreak < 0 {
		return fmt.Errorf("block, break and break interval must not be negative")
	}
	if c.DayStart < 0 || c.DayStart >= 24*time.Hour {
		return fmt.Errorf("day start %s outside [00:00, 24:00)", c.DayStart)
	}
	if c.DayStart+c.DailyCapacity > 24*time.Hour {
		return fmt.Errorf("%w: %s from %s runs past midnight", domain.ErrInvalidCapacity, c.DailyCapacity, c.DayStart)
	}
	return nil
}

// Plan is the builder output.
type Plan struct {
	Entries []domain.Entry
	// Ordered is the placement order after sorting, excluding complete
	// and failed tasks.
	Ordered []domain.ScoredTask
	// Failures holds one *domain.CapacityExhaustedError per hard-deadline
	// task that could not be placed in time.
	Failures []error
}

// StudyTime sums the study entries.
func (p *Plan) StudyTime() time.Duration {
	var total time.Duration
	for _, e := range p.Entries {
		if e.IsStudy() {
			total += e.Duration()
		}
	}
	return total
}

// ScheduleBuilder greedily bins scored tasks into days.
type ScheduleBuilder struct {
	config BuilderConfig
}

// NewScheduleBuilder creates a builder.
func NewScheduleBuilder(config BuilderConfig) *ScheduleBuilder {
	return &ScheduleBuilder{config: config}
}

// Config returns the builder configuration.
func (b *ScheduleBuilder) Config() BuilderConfig {
	return b.config
}

// Build orders tasks by score (desc), then due date (asc), then input
// order, and assigns their remaining time to days starting at startDate.
// A task larger than what is left of a day continues on the next. Every
// remaining second of a placed task is scheduled exactly once.
//
// The first hard-deadline task in placement order that would finish after
// its due date is dropped with a CapacityExhaustedError and the rest is
// laid out again, until no further task fails. Tasks placed earlier never
// depend on later ones, so only tasks that cannot make it are dropped.
// Other tasks extend the horizon as needed.
func (b *ScheduleBuilder) Build(startDate time.Time, scored []domain.ScoredTask) (*Plan, error) {
	if err := b.config.Validate(); err != nil {
		return nil, err
	}

	ordered := make([]domain.ScoredTask, 0, len(scored))
	for _, st := range scored {
		if st.Task != nil && !st.Task.IsComplete() {
			ordered = append(ordered, st)
		}
	}
	sortScored(ordered)

	start := domain.StartOfDay(startDate)
	var failures []error
	for {
		entries := b.layout(start, ordered)

		miss := -1
		for i, st := range ordered {
			if !st.Task.HardDeadline() {
				continue
			}
			if err := deadlineMiss(start, st.Task, entries); err != nil {
				failures = append(failures, err)
				miss = i
				break
			}
		}

		if miss < 0 {
			return &Plan{Entries: entries, Ordered: ordered, Failures: failures}, nil
		}

		kept := make([]domain.ScoredTask, 0, len(ordered)-1)
		kept = append(kept, ordered[:miss]...)
		ordered = append(kept, ordered[miss+1:]...)
	}
}

func sortScored(tasks []domain.ScoredTask) {
	sort.SliceStable(tasks, func(i, j int) bool {
		a, b := tasks[i], tasks[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if !a.Task.DueDate().Equal(b.Task.DueDate()) {
			return a.Task.DueDate().Before(b.Task.DueDate())
		}
		return a.Order < b.Order
	})
}

// dayCursor tracks placement within the current day. Entries never run
// past end, the following midnight.
type dayCursor struct {
	day        int
	date       time.Time
	clock      time.Time
	end        time.Time
	used       time.Duration
	sinceBreak int
}

func (b *ScheduleBuilder) layout(start time.Time, ordered []domain.ScoredTask) []domain.Entry {
	var entries []domain.Entry
	cur := b.newDay(start, 1)

	for _, st := range ordered {
		remaining := st.Task.Remaining()
		for remaining > 0 {
			if cur.used >= b.config.DailyCapacity || !cur.clock.Before(cur.end) {
				cur = b.newDay(start, cur.day+1)
			}

			if b.breakDue(cur) {
				if !cur.clock.Add(b.config.BreakLength).Before(cur.end) {
					cur = b.newDay(start, cur.day+1)
					continue
				}
				entries = append(entries, domain.Entry{
					Day:   cur.day,
					Date:  cur.date,
					Start: cur.clock,
					End:   cur.clock.Add(b.config.BreakLength),
					Kind:  domain.EntryBreak,
				})
				cur.clock = cur.clock.Add(b.config.BreakLength)
				cur.sinceBreak = 0
			}

			chunk := min(remaining, b.config.DailyCapacity-cur.used, cur.end.Sub(cur.clock))
			if b.config.BlockLength > 0 {
				chunk = min(chunk, b.config.BlockLength)
			}

			entries = append(entries, domain.Entry{
				Day:     cur.day,
				Date:    cur.date,
				Start:   cur.clock,
				End:     cur.clock.Add(chunk),
				Kind:    domain.EntryStudy,
				TaskID:  st.Task.ID(),
				Subject: st.Task.Subject(),
			})
			cur.clock = cur.clock.Add(chunk)
			cur.used += chunk
			cur.sinceBreak++
			remaining -= chunk
		}
	}
	return entries
}

func (b *ScheduleBuilder) newDay(start time.Time, day int) dayCursor {
	date := start.AddDate(0, 0, day-1)
	return dayCursor{
		day:   day,
		date:  date,
		clock: date.Add(b.config.DayStart),
		end:   date.AddDate(0, 0, 1),
	}
}

// breakDue reports whether a break goes before the next study block.
// Callers only ask when the day still has capacity.
func (b *ScheduleBuilder) breakDue(cur dayCursor) bool {
	return b.config.BreakLength > 0 &&
		b.config.BlocksBeforeBreak > 0 &&
		cur.sinceBreak > 0 &&
		cur.sinceBreak%b.config.BlocksBeforeBreak == 0
}

// deadlineMiss returns a CapacityExhaustedError when the task's last study
// entry falls after its due date.
func deadlineMiss(start time.Time, t *task.Task, entries []domain.Entry) error {
	due := t.DueDate()
	lastDay := 0
	for _, e := range entries {
		if e.IsStudy() && e.TaskID == t.ID() {
			lastDay = e.Day
		}
	}
	if lastDay == 0 {
		return nil
	}

	dueDay := DaysBetween(task.DateOf(start), due) + 1
	if dueDay < 1 {
		return &domain.CapacityExhaustedError{TaskID: t.ID(), Subject: t.Subject(), DueDate: due}
	}
	if lastDay > dueDay {
		return &domain.CapacityExhaustedError{
			TaskID:     t.ID(),
			Subject:    t.Subject(),
			DueDate:    due,
			FinishesOn: task.DateOf(start.AddDate(0, 0, lastDay-1)),
		}
	}
	return nil
}
