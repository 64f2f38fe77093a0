package shared

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// DomainEvent is a fact recorded by an aggregate. It reaches handlers
// through the outbox once the transaction that produced it commits.
type DomainEvent interface {
	EventID() uuid.UUID
	EventType() string
	OccurredAt() time.Time
	// AggregateID is the natural key of the aggregate: a zid, a course code
	// or a decimal row id.
	AggregateID() string
	AggregateType() string
}

// BaseDomainEvent is embedded by every concrete event. The JSON names are
// the outbox payload format and must not change.
type BaseDomainEvent struct {
	ID            uuid.UUID `json:"id"`
	Type          string    `json:"type"`
	Timestamp     time.Time `json:"timestamp"`
	AggregateKey  string    `json:"aggregate_id"`
	AggregateKind string    `json:"aggregate_type"`
}

func NewBaseDomainEvent(eventType, aggregateType, aggregateID string) BaseDomainEvent {
	return BaseDomainEvent{
		ID:            uuid.New(),
		Type:          eventType,
		Timestamp:     time.Now(),
		AggregateKey:  aggregateID,
		AggregateKind: aggregateType,
	}
}

func (e *BaseDomainEvent) EventID() uuid.UUID    { return e.ID }
func (e *BaseDomainEvent) EventType() string     { return e.Type }
func (e *BaseDomainEvent) OccurredAt() time.Time { return e.Timestamp }
func (e *BaseDomainEvent) AggregateID() string   { return e.AggregateKey }
func (e *BaseDomainEvent) AggregateType() string { return e.AggregateKind }

// EventHandler reacts to published events. EventTypes lists the types it
// wants when subscribed without explicit ones; empty means every type.
type EventHandler interface {
	Handle(ctx context.Context, event DomainEvent) error
	EventTypes() []string
}

// EventBus delivers events relayed from the outbox to their handlers
type EventBus interface {
	Publish(ctx context.Context, events ...DomainEvent) error
	Subscribe(handler EventHandler, eventTypes ...string)
	Unsubscribe(handler EventHandler)
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

// OutboxEventSaver writes events to the outbox inside the caller's
// transaction. tx is the persistence layer's transaction handle.
type OutboxEventSaver interface {
	SaveEvents(ctx context.Context, tx any, events ...DomainEvent) error
}
