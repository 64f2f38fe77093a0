package event

import (
	"context"
	"sync/atomic"

	"github.com/avocado/teamhub/internal/domain/shared"
	"go.uber.org/zap"
)

// IdempotencyCounts is a snapshot of an IdempotentHandler's counters
type IdempotencyCounts struct {
	Handled    int64 `json:"handled"`
	Duplicates int64 `json:"duplicates"`
	Failed     int64 `json:"failed"`
}

// IdempotentHandler runs the wrapped handler at most once per event id.
// The outbox delivers at least once, so handlers with external side effects
// (an assistant reply, for one) go behind it.
//
// A failed run releases its mark: the outbox retries the event and the retry
// must reach the handler again instead of being skipped as a duplicate.
type IdempotentHandler struct {
	handler shared.EventHandler
	store   shared.IdempotencyStore
	config  shared.IdempotencyConfig
	logger  *zap.Logger

	handled    atomic.Int64
	duplicates atomic.Int64
	failed     atomic.Int64
}

// IdempotentHandlerOption configures an IdempotentHandler
type IdempotentHandlerOption func(*IdempotentHandler)

// WithIdempotencyConfig overrides the TTL and the enabled flag
func WithIdempotencyConfig(config shared.IdempotencyConfig) IdempotentHandlerOption {
	return func(h *IdempotentHandler) {
		h.config = config
	}
}

// NewIdempotentHandler wraps handler
func NewIdempotentHandler(
	handler shared.EventHandler,
	store shared.IdempotencyStore,
	logger *zap.Logger,
	opts ...IdempotentHandlerOption,
) *IdempotentHandler {
	h := &IdempotentHandler{
		handler: handler,
		store:   store,
		config:  shared.DefaultIdempotencyConfig(),
		logger:  logger,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// EventTypes delegates to the wrapped handler
func (h *IdempotentHandler) EventTypes() []string {
	return h.handler.EventTypes()
}

// Handle claims the event id and runs the wrapped handler when the claim is
// new. A store error does not block delivery: the handler runs unguarded.
func (h *IdempotentHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	if !h.config.Enabled {
		return h.handler.Handle(ctx, event)
	}

	eventID := event.EventID().String()
	fields := []zap.Field{
		zap.String("event_id", eventID),
		zap.String("event_type", event.EventType()),
	}

	claimed, err := h.store.MarkProcessed(ctx, eventID, h.config.TTL)
	switch {
	case err != nil:
		h.logger.Warn("Idempotency check failed, handling anyway", append(fields, zap.Error(err))...)
	case !claimed:
		h.duplicates.Add(1)
		h.logger.Debug("Duplicate event skipped", fields...)
		return nil
	}

	if err := h.handler.Handle(ctx, event); err != nil {
		h.failed.Add(1)
		h.logger.Error("Event handler failed", append(fields, zap.Error(err))...)
		if claimed {
			if relErr := h.store.Release(ctx, eventID); relErr != nil {
				h.logger.Warn("Failed to release idempotency mark", append(fields, zap.Error(relErr))...)
			}
		}
		return err
	}

	h.handled.Add(1)
	return nil
}

// Counts returns the handler's counters
func (h *IdempotentHandler) Counts() IdempotencyCounts {
	return IdempotencyCounts{
		Handled:    h.handled.Load(),
		Duplicates: h.duplicates.Load(),
		Failed:     h.failed.Load(),
	}
}

var _ shared.EventHandler = (*IdempotentHandler)(nil)
