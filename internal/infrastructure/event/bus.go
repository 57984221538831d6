// Package event provides an in-process pub/sub bus for domain events.
package event

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/chedfms/liqtrack/internal/domain/shared"
)

// Handler processes one domain event.
type Handler func(ctx context.Context, event shared.DomainEvent) error

// InMemoryBus dispatches domain events to subscribed handlers synchronously.
type InMemoryBus struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
	logger   *zap.Logger
}

// NewInMemoryBus creates a new in-memory event bus.
func NewInMemoryBus(logger *zap.Logger) *InMemoryBus {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InMemoryBus{
		handlers: make(map[string][]Handler),
		logger:   logger,
	}
}

// Subscribe registers a handler for the given event types.
func (b *InMemoryBus) Subscribe(handler Handler, eventTypes ...string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, t := range eventTypes {
		b.handlers[t] = append(b.handlers[t], handler)
	}
}

// Publish dispatches events to all handlers registered for their type.
// A failing handler is logged and does not stop the others.
func (b *InMemoryBus) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	for _, ev := range events {
		b.mu.RLock()
		handlers := b.handlers[ev.GetEventType()]
		b.mu.RUnlock()

		for _, h := range handlers {
			if err := b.dispatch(ctx, h, ev); err != nil {
				b.logger.Error("event handler failed",
					zap.String("event_type", ev.GetEventType()),
					zap.String("event_id", ev.GetEventID().String()),
					zap.Error(err),
				)
			}
		}
	}
	return nil
}

func (b *InMemoryBus) dispatch(ctx context.Context, h Handler, ev shared.DomainEvent) (err error) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("event handler panicked",
				zap.String("event_type", ev.GetEventType()),
				zap.Any("panic", r),
			)
		}
	}()
	return h(ctx, ev)
}

var _ shared.EventPublisher = (*InMemoryBus)(nil)
