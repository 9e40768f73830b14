package eventbus_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/studybuddy/internal/shared/infrastructure/eventbus"
	"github.com/felixgeelhaar/studybuddy/pkg/observability"
)

type recordingConsumer struct {
	eventTypes []string
	err        error
	events     []*eventbus.ConsumedEvent
}

func (c *recordingConsumer) EventTypes() []string { return c.eventTypes }

func (c *recordingConsumer) Handle(_ context.Context, event *eventbus.ConsumedEvent) error {
	c.events = append(c.events, event)
	return c.err
}

func envelope(t *testing.T, routingKey string, inner any) []byte {
	t.Helper()
	body, err := json.Marshal(inner)
	require.NoError(t, err)
	payload, err := json.Marshal(eventbus.ConsumedEvent{
		EventID:    uuid.New(),
		RoutingKey: routingKey,
		OccurredAt: time.Now(),
		Payload:    body,
	})
	require.NoError(t, err)
	return payload
}

func TestInProcessEventBus_DispatchesByRoutingKey(t *testing.T) {
	bus := eventbus.NewInProcessEventBus(observability.Discard())
	added := &recordingConsumer{eventTypes: []string{"study.task.added"}}
	both := &recordingConsumer{eventTypes: []string{"study.task.added", "study.task.removed"}}
	bus.RegisterConsumer(added)
	bus.RegisterConsumer(both)

	require.NoError(t, bus.Publish(context.Background(), "study.task.added", envelope(t, "study.task.added", map[string]string{"subject": "Physics"})))
	require.NoError(t, bus.Publish(context.Background(), "study.task.removed", envelope(t, "study.task.removed", map[string]string{})))

	assert.Len(t, added.events, 1)
	assert.Len(t, both.events, 2)

	var inner struct{ Subject string }
	require.NoError(t, added.events[0].Decode(&inner))
	assert.Equal(t, "Physics", inner.Subject)
}

func TestInProcessEventBus_ReturnsConsumerErrors(t *testing.T) {
	bus := eventbus.NewInProcessEventBus(observability.Discard())
	boom := errors.New("export failed")
	failing := &recordingConsumer{eventTypes: []string{"planning.schedule.generated"}, err: boom}
	healthy := &recordingConsumer{eventTypes: []string{"planning.schedule.generated"}}
	bus.RegisterConsumer(failing)
	bus.RegisterConsumer(healthy)

	err := bus.Publish(context.Background(), "planning.schedule.generated", envelope(t, "planning.schedule.generated", struct{}{}))

	assert.ErrorIs(t, err, boom)
	assert.Len(t, healthy.events, 1, "other consumers still run")
}

func TestInProcessEventBus_RejectsMalformedEnvelope(t *testing.T) {
	bus := eventbus.NewInProcessEventBus(observability.Discard())

	err := bus.Publish(context.Background(), "study.task.added", []byte("{not json"))

	assert.Error(t, err)
}

func TestInProcessEventBus_NoConsumersIsFine(t *testing.T) {
	bus := eventbus.NewInProcessEventBus(observability.Discard())

	assert.NoError(t, bus.Publish(context.Background(), "focus.session.started", envelope(t, "focus.session.started", struct{}{})))
}
