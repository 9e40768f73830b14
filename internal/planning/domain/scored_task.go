package domain

import "github.com/felixgeelhaar/studybuddy/internal/study/domain/task"

// ScoredTask pairs a task with its priority for one scheduling pass.
type ScoredTask struct {
	Task  *task.Task
	Score float64

	// Sub-factors, before weighting.
	Urgency    float64
	Importance float64
	Magnitude  float64

	// Order is the task's index in the scorer input, used as the final
	// tie-break.
	Order int
}
