package queries

import (
	"context"
	"errors"
	"time"

	"github.com/felixgeelhaar/studybuddy/internal/focus/domain"
	"github.com/google/uuid"
)

// SessionDTO is the display form of the tracker.
type SessionDTO struct {
	ID             uuid.UUID  `json:"id"`
	State          string     `json:"state"`
	PauseReason    string     `json:"pause_reason,omitempty"`
	TaskID         *uuid.UUID `json:"task_id,omitempty"`
	Subject        string     `json:"subject,omitempty"`
	FocusedSeconds int64      `json:"focused_seconds"`
	Rounds         int        `json:"rounds"`
	NextBreakIn    int64      `json:"next_break_in_seconds,omitempty"`
	Segments       int        `json:"segments"`
	StartedAt      *time.Time `json:"started_at,omitempty"`
	EndedAt        *time.Time `json:"ended_at,omitempty"`
}

// ToDTO renders a snapshot as seen at time at.
func ToDTO(s domain.Snapshot, settings domain.Settings, at time.Time) SessionDTO {
	tracker := domain.Rehydrate(s)
	dto := SessionDTO{
		ID:             s.ID,
		State:          string(s.State),
		PauseReason:    string(s.PauseReason),
		Subject:        s.Subject,
		FocusedSeconds: int64(tracker.Elapsed(at) / time.Second),
		Rounds:         s.Rounds,
		Segments:       len(s.Segments),
	}
	if s.TaskID != uuid.Nil {
		id := s.TaskID
		dto.TaskID = &id
	}
	if !s.StartedAt.IsZero() {
		started := s.StartedAt
		dto.StartedAt = &started
	}
	if !s.EndedAt.IsZero() {
		ended := s.EndedAt
		dto.EndedAt = &ended
	}
	if s.State == domain.StateRunning {
		dto.NextBreakIn = int64(tracker.NextRoundIn(settings, at) / time.Second)
	}
	return dto
}

// GetSessionHandler reads the current tracker.
type GetSessionHandler struct {
	repo     domain.Repository
	settings domain.Settings
	now      func() time.Time
}

// NewGetSessionHandler creates a new GetSessionHandler.
func NewGetSessionHandler(repo domain.Repository, settings domain.Settings) *GetSessionHandler {
	return &GetSessionHandler{repo: repo, settings: settings, now: time.Now}
}

// WithClock overrides the handler clock.
func (h *GetSessionHandler) WithClock(now func() time.Time) *GetSessionHandler {
	h.now = now
	return h
}

// Handle returns the current session, or an idle one when none was ever
// started.
func (h *GetSessionHandler) Handle(ctx context.Context) (*SessionDTO, error) {
	now := h.now()
	s, err := h.repo.FindCurrent(ctx)
	if errors.Is(err, domain.ErrSessionNotFound) {
		s = domain.NewSessionTracker(now)
	} else if err != nil {
		return nil, err
	}

	dto := ToDTO(s.Snapshot(), h.settings, now)
	return &dto, nil
}
