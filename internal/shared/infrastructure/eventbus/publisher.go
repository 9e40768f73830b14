package eventbus

import (
	"context"
	"errors"
	"log/slog"

	"github.com/felixgeelhaar/studybuddy/internal/shared/infrastructure/resilience"
)

// Publisher sends an encoded event to a transport.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, payload []byte) error
	Close() error
}

// NoopPublisher drops events.
type NoopPublisher struct {
	logger *slog.Logger
}

// NewNoopPublisher creates a NoopPublisher.
func NewNoopPublisher(logger *slog.Logger) *NoopPublisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &NoopPublisher{logger: logger}
}

func (p *NoopPublisher) Publish(_ context.Context, routingKey string, payload []byte) error {
	p.logger.Debug("noop publish", "routing_key", routingKey, "size", len(payload))
	return nil
}

func (p *NoopPublisher) Close() error { return nil }

// BreakerPublisher guards a remote publisher with a circuit breaker so an
// unreachable broker fails fast and the outbox backs off.
type BreakerPublisher struct {
	next    Publisher
	breaker *resilience.Breaker
}

// NewBreakerPublisher wraps next.
func NewBreakerPublisher(next Publisher, breaker *resilience.Breaker) *BreakerPublisher {
	return &BreakerPublisher{next: next, breaker: breaker}
}

func (p *BreakerPublisher) Publish(ctx context.Context, routingKey string, payload []byte) error {
	return p.breaker.Do(func() error {
		return p.next.Publish(ctx, routingKey, payload)
	})
}

func (p *BreakerPublisher) Close() error { return p.next.Close() }

// FanoutPublisher publishes to every target and joins their errors.
type FanoutPublisher struct {
	targets []Publisher
}

// NewFanoutPublisher creates a publisher over targets.
func NewFanoutPublisher(targets ...Publisher) *FanoutPublisher {
	return &FanoutPublisher{targets: targets}
}

func (p *FanoutPublisher) Publish(ctx context.Context, routingKey string, payload []byte) error {
	var errs []error
	for _, t := range p.targets {
		if err := t.Publish(ctx, routingKey, payload); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (p *FanoutPublisher) Close() error {
	var errs []error
	for _, t := range p.targets {
		errs = append(errs, t.Close())
	}
	return errors.Join(errs...)
}
