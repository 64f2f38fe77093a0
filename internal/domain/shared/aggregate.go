package shared

// EventRecorder collects domain events raised by an aggregate until the
// application layer writes them to the outbox.
type EventRecorder struct {
	domainEvents []DomainEvent
}

// AddDomainEvent records an event
func (r *EventRecorder) AddDomainEvent(event DomainEvent) {
	r.domainEvents = append(r.domainEvents, event)
}

// GetDomainEvents returns the recorded events
func (r *EventRecorder) GetDomainEvents() []DomainEvent {
	return r.domainEvents
}

// ClearDomainEvents drops all recorded events
func (r *EventRecorder) ClearDomainEvents() {
	r.domainEvents = nil
}

// PullDomainEvents returns the recorded events and clears them
func (r *EventRecorder) PullDomainEvents() []DomainEvent {
	events := r.domainEvents
	r.domainEvents = nil
	return events
}
