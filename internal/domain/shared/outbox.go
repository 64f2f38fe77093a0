package shared

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// OutboxStatus is the delivery state of an outbox row
type OutboxStatus string

const (
	OutboxStatusPending    OutboxStatus = "PENDING"
	OutboxStatusProcessing OutboxStatus = "PROCESSING"
	OutboxStatusSent       OutboxStatus = "SENT"
	OutboxStatusFailed     OutboxStatus = "FAILED"
	OutboxStatusDead       OutboxStatus = "DEAD"
)

const (
	DefaultMaxRetries  = 5
	DefaultBaseBackoff = time.Second
	// MaxBackoff caps the delay between two delivery attempts
	MaxBackoff = 5 * time.Minute
)

var (
	errNotClaimable  = errors.New("outbox entry is not pending or failed")
	errNotRequeuable = errors.New("outbox entry is not failed or dead")
)

// OutboxEntry is a domain event waiting for delivery to the in-process bus.
// It is written in the same transaction as the state change that raised it.
type OutboxEntry struct {
	ID            uuid.UUID
	EventID       uuid.UUID
	EventType     string
	AggregateID   string
	AggregateType string
	Payload       []byte
	Status        OutboxStatus
	RetryCount    int
	MaxRetries    int
	LastError     string
	NextRetryAt   *time.Time
	ProcessedAt   *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// NewOutboxEntry wraps a serialized event as a pending row
func NewOutboxEntry(event DomainEvent, payload []byte) *OutboxEntry {
	now := time.Now()
	return &OutboxEntry{
		ID:            uuid.New(),
		EventID:       event.EventID(),
		EventType:     event.EventType(),
		AggregateID:   event.AggregateID(),
		AggregateType: event.AggregateType(),
		Payload:       payload,
		Status:        OutboxStatusPending,
		MaxRetries:    DefaultMaxRetries,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// RetryBackoff returns the wait before the given attempt: 1s, 2s, 4s and so
// on, capped at MaxBackoff.
func RetryBackoff(attempt int) time.Duration {
	if attempt < 1 {
		return 0
	}
	if attempt > 20 {
		return MaxBackoff
	}
	if d := DefaultBaseBackoff << uint(attempt-1); d < MaxBackoff {
		return d
	}
	return MaxBackoff
}

// CanRetry reports whether a failed row still has attempts left
func (e *OutboxEntry) CanRetry() bool {
	return e.Status == OutboxStatusFailed && e.RetryCount < e.MaxRetries
}

// IsDead reports whether the row ran out of attempts
func (e *OutboxEntry) IsDead() bool {
	return e.Status == OutboxStatusDead
}

func (e *OutboxEntry) touch(status OutboxStatus) time.Time {
	now := time.Now()
	e.Status = status
	e.UpdatedAt = now
	return now
}

// MarkProcessing claims the row for one delivery attempt
func (e *OutboxEntry) MarkProcessing() error {
	if e.Status != OutboxStatusPending && e.Status != OutboxStatusFailed {
		return errNotClaimable
	}
	e.touch(OutboxStatusProcessing)
	return nil
}

// MarkSent records a successful delivery
func (e *OutboxEntry) MarkSent() {
	now := e.touch(OutboxStatusSent)
	e.ProcessedAt = &now
}

// MarkFailed records a failed attempt. The row is dead lettered once
// MaxRetries attempts have failed, otherwise it waits RetryBackoff.
func (e *OutboxEntry) MarkFailed(errMsg string) {
	e.RetryCount++
	e.LastError = errMsg
	if e.RetryCount >= e.MaxRetries {
		e.touch(OutboxStatusDead)
		e.NextRetryAt = nil
		return
	}
	next := e.touch(OutboxStatusFailed).Add(RetryBackoff(e.RetryCount))
	e.NextRetryAt = &next
}

// Requeue puts a failed or dead row back in the pending queue with a fresh
// retry budget.
func (e *OutboxEntry) Requeue() error {
	if e.Status != OutboxStatusFailed && e.Status != OutboxStatusDead {
		return errNotRequeuable
	}
	e.touch(OutboxStatusPending)
	e.RetryCount = 0
	e.LastError = ""
	e.NextRetryAt = nil
	return nil
}

// OutboxRepository persists outbox rows
type OutboxRepository interface {
	Save(ctx context.Context, entries ...*OutboxEntry) error
	// ClaimDue moves up to limit due rows to PROCESSING and returns them. A
	// row is due when pending, or failed with NextRetryAt at or before now.
	// Rows claimed by a concurrent caller are skipped.
	ClaimDue(ctx context.Context, now time.Time, limit int) ([]*OutboxEntry, error)
	// ReleaseStale returns rows claimed before the cutoff to PENDING
	ReleaseStale(ctx context.Context, before time.Time) (int64, error)
	Update(ctx context.Context, entry *OutboxEntry) error
	FindByID(ctx context.Context, id uuid.UUID) (*OutboxEntry, error)
	// List pages rows newest first; an empty status lists every row
	List(ctx context.Context, status OutboxStatus, page, pageSize int) ([]*OutboxEntry, int64, error)
	// RequeueDead requeues every dead row, see OutboxEntry.Requeue
	RequeueDead(ctx context.Context) (int64, error)
	// DeleteSentBefore removes sent rows processed before the cutoff
	DeleteSentBefore(ctx context.Context, before time.Time) (int64, error)
	CountByStatus(ctx context.Context) (map[OutboxStatus]int64, error)
}
