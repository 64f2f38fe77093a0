package testutil

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/avocado/teamhub/internal/domain/shared"
)

// RecordingHandler is an EventHandler that keeps every event it receives.
// Subscribe it to a bus to see what the outbox processor delivered.
type RecordingHandler struct {
	types []string

	mu     sync.Mutex
	events []shared.DomainEvent
	fail   error
}

func NewRecordingHandler(eventTypes ...string) *RecordingHandler {
	return &RecordingHandler{types: eventTypes}
}

func (h *RecordingHandler) EventTypes() []string { return h.types }

func (h *RecordingHandler) Handle(_ context.Context, event shared.DomainEvent) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, event)
	return h.fail
}

// FailWith makes later deliveries return err; nil restores success
func (h *RecordingHandler) FailWith(err error) {
	h.mu.Lock()
	h.fail = err
	h.mu.Unlock()
}

// Events returns a copy of the received events in delivery order
func (h *RecordingHandler) Events() []shared.DomainEvent {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]shared.DomainEvent(nil), h.events...)
}

func (h *RecordingHandler) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.events)
}

// WaitFor polls until at least n events arrived or timeout passes
func (h *RecordingHandler) WaitFor(t *testing.T, n int, timeout time.Duration) bool {
	t.Helper()
	return WaitForCondition(t, func() bool { return h.Count() >= n }, timeout, 10*time.Millisecond)
}

// TestEvent is a domain event no production handler listens to
type TestEvent struct {
	shared.BaseDomainEvent
	Data string `json:"data"`
}

// NewTestEvent creates a TestEvent on the "TestAggregate" aggregate
func NewTestEvent(eventType, aggregateID string) *TestEvent {
	return &TestEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, "TestAggregate", aggregateID),
		Data:            "test-data",
	}
}

// WaitForCondition reports whether condition became true before timeout
func WaitForCondition(t *testing.T, condition func() bool, timeout, interval time.Duration) bool {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for {
		if condition() {
			return true
		}
		if time.Now().After(deadline) {
			return false
		}
		time.Sleep(interval)
	}
}
