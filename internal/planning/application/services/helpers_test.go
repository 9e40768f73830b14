package services

import (
	"time"

	"github.com/felixgeelhaar/studybuddy/internal/study/domain/task"
	"github.com/google/uuid"
)

var today = time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)

type taskOpt func(*task.RehydrateParams)

func due(days int) taskOpt {
	return func(p *task.RehydrateParams) { p.DueDate = task.DateOf(today.AddDate(0, 0, days)) }
}

func importance(i task.Importance) taskOpt {
	return func(p *task.RehydrateParams) { p.Importance = i }
}

func hard() taskOpt {
	return func(p *task.RehydrateParams) { p.HardDeadline = true }
}

func remaining(d time.Duration) taskOpt {
	return func(p *task.RehydrateParams) { p.Remaining = d }
}

func newTask(subject string, hours float64, opts ...taskOpt) *task.Task {
	total := task.FromHours(hours)
	p := task.RehydrateParams{
		ID:         uuid.New(),
		Subject:    subject,
		Total:      total,
		Remaining:  total,
		DueDate:    task.DateOf(today.AddDate(0, 0, 7)),
		Importance: task.ImportanceMedium,
		CreatedAt:  today,
		UpdatedAt:  today,
	}
	for _, opt := range opts {
		opt(&p)
	}
	return task.Rehydrate(p)
}

func fixedClock() time.Time { return today }
