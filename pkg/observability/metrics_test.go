package observability

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestInMemoryMetrics(t *testing.T) {
	m := NewInMemoryMetrics()

	m.Counter(MetricTasksScored, 2)
	m.Counter(MetricTasksScored, 3)
	m.Counter(MetricSessionTransition, 1, T("to", "running"), T("from", "idle"))
	m.Timing(MetricScheduleDuration, 5*time.Millisecond)

	assert.Equal(t, int64(5), m.GetCounter(MetricTasksScored))
	assert.Equal(t, int64(1), m.GetCounter(MetricSessionTransition, T("from", "idle"), T("to", "running")),
		"tag order does not matter")
	assert.Equal(t, []time.Duration{5 * time.Millisecond}, m.GetTimings(MetricScheduleDuration))
	assert.Zero(t, m.GetCounter("unknown"))
}

func TestNoopMetrics(t *testing.T) {
	var m Metrics = NoopMetrics{}
	assert.NotPanics(t, func() {
		m.Counter("x", 1)
		m.Timing("y", time.Second)
	})
}
