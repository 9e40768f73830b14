package domain

import (
	"time"

	sharedDomain "github.com/felixgeelhaar/studybuddy/internal/shared/domain"
)

const (
	AggregateType = "Schedule"

	RoutingKeyGenerated = "planning.schedule.generated"
)

// ScheduleGenerated is emitted when a new schedule is built.
type ScheduleGenerated struct {
	sharedDomain.BaseEvent
	StartDate    string `json:"start_date"`
	Days         int    `json:"days"`
	Entries      int    `json:"entries"`
	StudySeconds int64  `json:"study_seconds"`
}

func newScheduleGenerated(s *Schedule, at time.Time) *ScheduleGenerated {
	return &ScheduleGenerated{
		BaseEvent:    sharedDomain.NewBaseEvent(s.ID(), AggregateType, RoutingKeyGenerated, at),
		StartDate:    s.startDate.Format(time.DateOnly),
		Days:         s.Days(),
		Entries:      len(s.entries),
		StudySeconds: int64(s.StudyTime() / time.Second),
	}
}
