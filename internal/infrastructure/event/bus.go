package event

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/avocado/teamhub/internal/domain/shared"
	"go.uber.org/zap"
)

// InMemoryEventBus dispatches events to subscribed handlers inside the
// process. Delivery is synchronous so the outbox processor learns about
// handler failures and can retry the row.
type InMemoryEventBus struct {
	mu       sync.RWMutex
	byType   map[string][]shared.EventHandler
	wildcard []shared.EventHandler

	logger *zap.Logger
}

func NewInMemoryEventBus(logger *zap.Logger) *InMemoryEventBus {
	return &InMemoryEventBus{
		byType: make(map[string][]shared.EventHandler),
		logger: logger,
	}
}

// Subscribe registers handler for eventTypes, or for handler.EventTypes()
// when none are given. A handler with no types at all sees every event.
func (b *InMemoryEventBus) Subscribe(handler shared.EventHandler, eventTypes ...string) {
	if len(eventTypes) == 0 {
		eventTypes = handler.EventTypes()
	}

	b.mu.Lock()
	if len(eventTypes) == 0 {
		b.wildcard = append(b.wildcard, handler)
	}
	for _, t := range eventTypes {
		b.byType[t] = append(b.byType[t], handler)
	}
	b.mu.Unlock()

	b.logger.Debug("Handler subscribed", zap.Strings("event_types", eventTypes))
}

// Unsubscribe drops every subscription of handler
func (b *InMemoryEventBus) Unsubscribe(handler shared.EventHandler) {
	isTarget := func(h shared.EventHandler) bool { return h == handler }

	b.mu.Lock()
	defer b.mu.Unlock()
	b.wildcard = slices.DeleteFunc(b.wildcard, isTarget)
	for t, hs := range b.byType {
		if hs = slices.DeleteFunc(hs, isTarget); len(hs) == 0 {
			delete(b.byType, t)
		} else {
			b.byType[t] = hs
		}
	}
}

// handlersFor returns a copy so handlers may subscribe while a publish runs
func (b *InMemoryEventBus) handlersFor(eventType string) []shared.EventHandler {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return slices.Concat(b.byType[eventType], b.wildcard)
}

// Publish hands each event to every matching handler. One failing handler
// does not stop the others; all failures come back joined.
func (b *InMemoryEventBus) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	var errs []error
	for _, event := range events {
		for _, handler := range b.handlersFor(event.EventType()) {
			if err := dispatch(ctx, handler, event); err != nil {
				b.logger.Error("Event handler failed",
					zap.String("event_type", event.EventType()),
					zap.String("event_id", event.EventID().String()),
					zap.Error(err),
				)
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

func dispatch(ctx context.Context, handler shared.EventHandler, event shared.DomainEvent) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%s handler panicked: %v", event.EventType(), r)
		}
	}()
	return handler.Handle(ctx, event)
}

// Start and Stop exist for the EventBus lifecycle; dispatch is synchronous
// so there is nothing to drain.
func (b *InMemoryEventBus) Start(context.Context) error {
	b.logger.Info("Event bus started")
	return nil
}

func (b *InMemoryEventBus) Stop(context.Context) error {
	b.logger.Info("Event bus stopped")
	return nil
}

var _ shared.EventBus = (*InMemoryEventBus)(nil)
