package event

import (
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/avocado/teamhub/internal/domain/shared"
)

// eventPointer is satisfied by *E when E embeds shared.BaseDomainEvent
type eventPointer[E any] interface {
	*E
	shared.DomainEvent
}

// EventSerializer turns domain events into outbox payloads and back. Only
// registered event types round trip: a payload is decoded into a fresh
// value of the type registered under its event type.
type EventSerializer struct {
	mu        sync.RWMutex
	factories map[string]func() shared.DomainEvent
}

func NewEventSerializer() *EventSerializer {
	return &EventSerializer{factories: make(map[string]func() shared.DomainEvent)}
}

// Register binds eventType to the Go type E.
//
//	event.Register[channel.MessagePostedEvent](serializer, channel.EventTypeMessagePosted)
func Register[E any, P eventPointer[E]](s *EventSerializer, eventType string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.factories[eventType] = func() shared.DomainEvent { return P(new(E)) }
}

// Serialize encodes event as JSON. Unregistered types are refused so that a
// row the processor could never decode is not written to the outbox.
func (s *EventSerializer) Serialize(event shared.DomainEvent) ([]byte, error) {
	if !s.IsRegistered(event.EventType()) {
		return nil, fmt.Errorf("event type %q is not registered", event.EventType())
	}
	return json.Marshal(event)
}

// Deserialize decodes an outbox payload
func (s *EventSerializer) Deserialize(eventType string, data []byte) (shared.DomainEvent, error) {
	s.mu.RLock()
	factory, ok := s.factories[eventType]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown event type: %s", eventType)
	}

	event := factory()
	if err := json.Unmarshal(data, event); err != nil {
		return nil, fmt.Errorf("failed to unmarshal %s: %w", eventType, err)
	}
	return event, nil
}

func (s *EventSerializer) IsRegistered(eventType string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.factories[eventType]
	return ok
}

// RegisteredTypes lists the registered event types in sorted order
func (s *EventSerializer) RegisteredTypes() []string {
	s.mu.RLock()
	types := make([]string, 0, len(s.factories))
	for t := range s.factories {
		types = append(types, t)
	}
	s.mu.RUnlock()

	sort.Strings(types)
	return types
}
