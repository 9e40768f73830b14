package queries

import (
	"context"
	"testing"
	"time"

	"github.com/felixgeelhaar/studybuddy/internal/planning/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubScheduleRepo struct {
	latest *domain.Schedule
}

func (s *stubScheduleRepo) Save(context.Context, *domain.Schedule) error { return nil }

func (s *stubScheduleRepo) FindByID(_ context.Context, id uuid.UUID) (*domain.Schedule, error) {
	if s.latest != nil && s.latest.ID() == id {
		return s.latest, nil
	}
	return nil, domain.ErrScheduleNotFound
}

func (s *stubScheduleRepo) FindLatest(context.Context) (*domain.Schedule, error) {
	if s.latest == nil {
		return nil, domain.ErrScheduleNotFound
	}
	return s.latest, nil
}

func schedule() *domain.Schedule {
	now := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	nine := now.Add(time.Hour)
	taskID := uuid.New()
	return domain.NewSchedule(now, 2*time.Hour, []domain.Entry{
		{Day: 1, Date: domain.StartOfDay(now), Start: nine, End: nine.Add(2 * time.Hour), Kind: domain.EntryStudy, TaskID: taskID, Subject: "Math"},
		{Day: 2, Date: domain.StartOfDay(now).AddDate(0, 0, 1), Start: nine.AddDate(0, 0, 1), End: nine.AddDate(0, 0, 1).Add(time.Hour), Kind: domain.EntryStudy, TaskID: taskID, Subject: "Math"},
	}, now)
}

func TestGetScheduleHandler_Latest(t *testing.T) {
	s := schedule()
	dto, err := NewGetScheduleHandler(&stubScheduleRepo{latest: s}).Handle(context.Background(), GetScheduleQuery{})
	require.NoError(t, err)

	assert.Equal(t, s.ID(), dto.ID)
	assert.Equal(t, "2026-03-02", dto.StartDate)
	assert.Equal(t, 2.0, dto.DailyCapacity)
	assert.Equal(t, 2, dto.Days)
	assert.Equal(t, 3.0, dto.StudyHours)
	require.Len(t, dto.Entries, 2)
	assert.Equal(t, "2026-03-03", dto.Entries[1].Date)
	assert.Equal(t, "study", dto.Entries[0].Kind)
}

func TestGetScheduleHandler_DayFilter(t *testing.T) {
	s := schedule()
	dto, err := NewGetScheduleHandler(&stubScheduleRepo{latest: s}).Handle(context.Background(), GetScheduleQuery{ScheduleID: s.ID(), Day: 2})
	require.NoError(t, err)
	require.Len(t, dto.Entries, 1)
	assert.Equal(t, 1.0, dto.Entries[0].Hours)
}

func TestGetScheduleHandler_NotFound(t *testing.T) {
	_, err := NewGetScheduleHandler(&stubScheduleRepo{}).Handle(context.Background(), GetScheduleQuery{})
	assert.ErrorIs(t, err, domain.ErrScheduleNotFound)
}
