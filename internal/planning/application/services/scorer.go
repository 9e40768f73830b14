package services

import (
	"math"
	"time"

	"github.com/felixgeelhaar/studybuddy/internal/planning/domain"
	"github.com/felixgeelhaar/studybuddy/internal/study/domain/task"
)

// ScorerConfig holds the exponents and decay of the priority function.
type ScorerConfig struct {
	UrgencyWeight    float64 // Wu
	ImportanceWeight float64 // Wi
	MagnitudeWeight  float64 // Wm
	DecayPerDay      float64 // λ
	// ImportanceFloor replaces an importance of zero so the score stays
	// positive.
	ImportanceFloor float64
}

// DefaultScorerConfig returns the stock weights.
func DefaultScorerConfig() ScorerConfig {
	return ScorerConfig{
		UrgencyWeight:    2.0,
		ImportanceWeight: 1.5,
		MagnitudeWeight:  0.5,
		DecayPerDay:      0.1,
		ImportanceFloor:  1e-3,
	}
}

// PriorityScorer computes
//
//	score = urgency^Wu × importance^Wi × magnitude^Wm
//	urgency   = exp(-λ · daysUntilDue), 1 when overdue
//	magnitude = ln(1 + totalHours)
//
// Scores are a pure function of the task and the injected clock.
type PriorityScorer struct {
	config ScorerConfig
	now    func() time.Time
}

// NewPriorityScorer creates a scorer. Negative weights are treated as zero.
func NewPriorityScorer(config ScorerConfig) *PriorityScorer {
	config.UrgencyWeight = math.Max(config.UrgencyWeight, 0)
	config.ImportanceWeight = math.Max(config.ImportanceWeight, 0)
	config.MagnitudeWeight = math.Max(config.MagnitudeWeight, 0)
	config.DecayPerDay = math.Max(config.DecayPerDay, 0)
	if config.ImportanceFloor <= 0 {
		config.ImportanceFloor = DefaultScorerConfig().ImportanceFloor
	}
	return &PriorityScorer{config: config, now: time.Now}
}

// WithClock replaces the wall clock.
func (s *PriorityScorer) WithClock(now func() time.Time) *PriorityScorer {
	s.now = now
	return s
}

// Score scores one task. Tasks without positive hours, without a due date
// or with importance outside [0,1] fail with *task.InvalidTaskError.
func (s *PriorityScorer) Score(t *task.Task) (domain.ScoredTask, error) {
	return s.score(t, s.now())
}

// ScoreAll scores every task against the same instant. Invalid tasks are
// returned as failures and do not stop the batch.
func (s *PriorityScorer) ScoreAll(tasks []*task.Task) ([]domain.ScoredTask, []error) {
	now := s.now()
	scored := make([]domain.ScoredTask, 0, len(tasks))
	var failures []error
	for i, t := range tasks {
		st, err := s.score(t, now)
		if err != nil {
			failures = append(failures, err)
			continue
		}
		st.Order = i
		scored = append(scored, st)
	}
	return scored, failures
}

func (s *PriorityScorer) score(t *task.Task, now time.Time) (domain.ScoredTask, error) {
	hours := t.TotalHours()
	if math.IsNaN(hours) || hours <= 0 {
		return domain.ScoredTask{}, &task.InvalidTaskError{TaskID: t.ID(), Subject: t.Subject(), Reason: "total hours must be positive"}
	}
	if t.DueDate().IsZero() {
		return domain.ScoredTask{}, &task.InvalidTaskError{TaskID: t.ID(), Subject: t.Subject(), Reason: "due date is required"}
	}
	if !t.Importance().Valid() {
		return domain.ScoredTask{}, &task.InvalidTaskError{TaskID: t.ID(), Subject: t.Subject(), Reason: "importance must be within [0,1]"}
	}

	urgency := s.urgency(t.DueDate(), now)
	importance := math.Max(t.Importance().Float64(), s.config.ImportanceFloor)
	magnitude := math.Log1p(hours)

	score := math.Pow(urgency, s.config.UrgencyWeight) *
		math.Pow(importance, s.config.ImportanceWeight) *
		math.Pow(magnitude, s.config.MagnitudeWeight)
	if score <= 0 || math.IsNaN(score) {
		score = math.SmallestNonzeroFloat64
	}

	return domain.ScoredTask{
		Task:       t,
		Score:      score,
		Urgency:    urgency,
		Importance: importance,
		Magnitude:  magnitude,
	}, nil
}

// urgency decays with whole calendar days between today and the due date.
func (s *PriorityScorer) urgency(due, now time.Time) float64 {
	days := DaysBetween(task.DateOf(now), task.DateOf(due))
	if days <= 0 {
		return 1
	}
	return math.Exp(-s.config.DecayPerDay * float64(days))
}

// DaysBetween counts calendar days from a to b. Both must be midnights in
// the same location.
func DaysBetween(a, b time.Time) int {
	return int(math.Round(b.Sub(a).Hours() / 24))
}
