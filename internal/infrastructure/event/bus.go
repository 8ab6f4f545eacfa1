package event

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/distribo/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// deliveryDedupTTL bounds how long a delivered event id is remembered
const deliveryDedupTTL = 24 * time.Hour

// InMemoryEventBus implements EventBus with in-process pub/sub. Events
// are dispatched synchronously after their producing transaction has
// committed; a failing handler is logged and never propagated back to
// the caller, so side effects (notifications, projections) cannot undo
// ledger writes.
type InMemoryEventBus struct {
	registry *HandlerRegistry
	logger   *zap.Logger
	dedup    shared.IdempotencyStore
	running  atomic.Bool
	wg       sync.WaitGroup
}

// NewInMemoryEventBus creates a new in-memory event bus
func NewInMemoryEventBus(logger *zap.Logger) *InMemoryEventBus {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InMemoryEventBus{
		registry: NewHandlerRegistry(),
		logger:   logger,
	}
}

// SetDeduplicator installs a seen-event store. Retried publishes of the
// same event id (service retry after a conflict) are then delivered once.
func (b *InMemoryEventBus) SetDeduplicator(store shared.IdempotencyStore) {
	b.dedup = store
}

// Publish dispatches events to all registered handlers
func (b *InMemoryEventBus) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	for _, evt := range events {
		if b.dedup != nil {
			fresh, err := b.dedup.MarkProcessed(ctx, "event:"+evt.EventID().String(), deliveryDedupTTL)
			if err != nil {
				b.logger.Warn("event dedup check failed, delivering anyway",
					zap.String("event_id", evt.EventID().String()),
					zap.Error(err),
				)
			} else if !fresh {
				continue
			}
		}

		handlers := b.registry.GetHandlers(evt.EventType())

		for _, handler := range handlers {
			if err := b.dispatchToHandler(ctx, handler, evt); err != nil {
				b.logger.Error("handler failed to process event",
					zap.String("event_type", evt.EventType()),
					zap.String("event_id", evt.EventID().String()),
					zap.String("aggregate_id", evt.AggregateID().String()),
					zap.Error(err),
				)
			}
		}
	}
	return nil
}

// Subscribe registers a handler for specific event types
func (b *InMemoryEventBus) Subscribe(handler shared.EventHandler, eventTypes ...string) {
	if len(eventTypes) == 0 {
		eventTypes = handler.EventTypes()
	}
	b.registry.Register(handler, eventTypes...)
	b.logger.Debug("handler subscribed",
		zap.Strings("event_types", eventTypes),
	)
}

// Unsubscribe removes a handler
func (b *InMemoryEventBus) Unsubscribe(handler shared.EventHandler) {
	b.registry.Unregister(handler)
	b.logger.Debug("handler unsubscribed")
}

// Start starts the event bus
func (b *InMemoryEventBus) Start(ctx context.Context) error {
	b.running.Store(true)
	b.logger.Info("event bus started")
	return nil
}

// Stop stops the event bus gracefully
func (b *InMemoryEventBus) Stop(ctx context.Context) error {
	b.running.Store(false)
	b.wg.Wait()
	b.logger.Info("event bus stopped")
	return nil
}

// dispatchToHandler isolates handler panics from the publisher
func (b *InMemoryEventBus) dispatchToHandler(ctx context.Context, handler shared.EventHandler, evt shared.DomainEvent) (err error) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("handler panicked",
				zap.String("event_type", evt.EventType()),
				zap.Any("panic", r),
			)
		}
	}()

	return handler.Handle(ctx, evt)
}

// Ensure InMemoryEventBus implements EventBus
var _ shared.EventBus = (*InMemoryEventBus)(nil)
