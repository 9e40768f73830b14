package queries

import (
	"context"
	"time"

	"github.com/felixgeelhaar/studybuddy/internal/planning/domain"
	"github.com/google/uuid"
)

// EntryDTO is one schedule slot.
type EntryDTO struct {
	Day     int       `json:"day"`
	Date    string    `json:"date"`
	Start   time.Time `json:"start"`
	End     time.Time `json:"end"`
	Kind    string    `json:"kind"`
	TaskID  string    `json:"task_id,omitempty"`
	Subject string    `json:"subject,omitempty"`
	Hours   float64   `json:"hours"`
}

// ScheduleDTO is a data transfer object for schedules.
type ScheduleDTO struct {
	ID            uuid.UUID  `json:"id"`
	StartDate     string     `json:"start_date"`
	DailyCapacity float64    `json:"daily_capacity_hours"`
	Days          int        `json:"days"`
	StudyHours    float64    `json:"study_hours"`
	Stale         bool       `json:"stale"`
	GeneratedAt   time.Time  `json:"generated_at"`
	Entries       []EntryDTO `json:"entries"`
}

// ToDTO flattens a schedule for display.
func ToDTO(s *domain.Schedule) *ScheduleDTO {
	dto := &ScheduleDTO{
		ID:            s.ID(),
		StartDate:     s.StartDate().Format(time.DateOnly),
		DailyCapacity: s.DailyCapacity().Hours(),
		Days:          s.Days(),
		StudyHours:    s.StudyTime().Hours(),
		Stale:         s.Stale(),
		GeneratedAt:   s.GeneratedAt(),
		Entries:       make([]EntryDTO, 0, len(s.Entries())),
	}
	for _, e := range s.Entries() {
		entry := EntryDTO{
			Day:     e.Day,
			Date:    e.Date.Format(time.DateOnly),
			Start:   e.Start,
			End:     e.End,
			Kind:    string(e.Kind),
			Subject: e.Subject,
			Hours:   e.Duration().Hours(),
		}
		if e.TaskID != uuid.Nil {
			entry.TaskID = e.TaskID.String()
		}
		dto.Entries = append(dto.Entries, entry)
	}
	return dto
}

// GetScheduleQuery selects a schedule. A nil ID means the latest one.
type GetScheduleQuery struct {
	ScheduleID uuid.UUID
	// Day limits entries to one day when positive.
	Day int
}

// GetScheduleHandler handles the GetScheduleQuery.
type GetScheduleHandler struct {
	scheduleRepo domain.Repository
}

// NewGetScheduleHandler creates a new GetScheduleHandler.
func NewGetScheduleHandler(scheduleRepo domain.Repository) *GetScheduleHandler {
	return &GetScheduleHandler{scheduleRepo: scheduleRepo}
}

// Handle returns the schedule or domain.ErrScheduleNotFound.
func (h *GetScheduleHandler) Handle(ctx context.Context, query GetScheduleQuery) (*ScheduleDTO, error) {
	var (
		s   *domain.Schedule
		err error
	)
	if query.ScheduleID == uuid.Nil {
		s, err = h.scheduleRepo.FindLatest(ctx)
	} else {
		s, err = h.scheduleRepo.FindByID(ctx, query.ScheduleID)
	}
	if err != nil {
		return nil, err
	}

	dto := ToDTO(s)
	if query.Day > 0 {
		filtered := dto.Entries[:0]
		for _, e := range dto.Entries {
			if e.Day == query.Day {
				filtered = append(filtered, e)
			}
		}
		dto.Entries = filtered
	}
	return dto, nil
}
