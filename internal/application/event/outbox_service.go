// Package event holds the outbox administration service and the domain
// event handlers subscribed to the bus.
package event

import (
	"context"
	"time"

	appshared "github.com/avocado/teamhub/internal/application/shared"
	"github.com/avocado/teamhub/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// OutboxService lets staff inspect the outbox and replay dead-lettered events
type OutboxService struct {
	repo   shared.OutboxRepository
	logger *zap.Logger
}

// NewOutboxService creates a new outbox service
func NewOutboxService(repo shared.OutboxRepository, logger *zap.Logger) *OutboxService {
	return &OutboxService{repo: repo, logger: logger}
}

// OutboxEntryDTO is the admin view of an outbox row
type OutboxEntryDTO struct {
	ID            uuid.UUID  `json:"id"`
	EventID       uuid.UUID  `json:"event_id"`
	EventType     string     `json:"event_type"`
	AggregateID   string     `json:"aggregate_id"`
	AggregateType string     `json:"aggregate_type"`
	Status        string     `json:"status"`
	RetryCount    int        `json:"retry_count"`
	MaxRetries    int        `json:"max_retries"`
	LastError     string     `json:"last_error,omitempty"`
	NextRetryAt   *time.Time `json:"next_retry_at,omitempty"`
	ProcessedAt   *time.Time `json:"processed_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// OutboxFilter pages the outbox, optionally narrowed to one status
type OutboxFilter struct {
	Status   string `form:"status,omitempty" binding:"omitempty,oneof=PENDING PROCESSING SENT FAILED DEAD"`
	Page     int    `form:"page,omitempty" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size,omitempty" binding:"omitempty,min=1,max=100"`
}

// OutboxListResult is one page of outbox rows
type OutboxListResult struct {
	Entries    []OutboxEntryDTO `json:"entries"`
	Total      int64            `json:"total"`
	Page       int              `json:"page"`
	PageSize   int              `json:"page_size"`
	TotalPages int              `json:"total_pages"`
}

// OutboxStatsDTO counts rows per status
type OutboxStatsDTO struct {
	Pending    int64 `json:"pending"`
	Processing int64 `json:"processing"`
	Sent       int64 `json:"sent"`
	Failed     int64 `json:"failed"`
	Dead       int64 `json:"dead"`
	Total      int64 `json:"total"`
}

// List returns a page of outbox rows, most recently touched first
func (s *OutboxService) List(ctx context.Context, filter OutboxFilter) (*OutboxListResult, error) {
	page := max(filter.Page, 1)
	pageSize := filter.PageSize
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	pageSize = min(pageSize, maxPageSize)

	entries, total, err := s.repo.List(ctx, shared.OutboxStatus(filter.Status), page, pageSize)
	if err != nil {
		return nil, appshared.Internal(s.logger, "Failed to list outbox entries", err)
	}

	out := make([]OutboxEntryDTO, len(entries))
	for i, entry := range entries {
		out[i] = toOutboxEntryDTO(entry)
	}
	return &OutboxListResult{
		Entries:    out,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: int((total + int64(pageSize) - 1) / int64(pageSize)),
	}, nil
}

// DeadLetters lists entries that exhausted their retries
func (s *OutboxService) DeadLetters(ctx context.Context, filter OutboxFilter) (*OutboxListResult, error) {
	filter.Status = string(shared.OutboxStatusDead)
	return s.List(ctx, filter)
}

// Entry returns one outbox row
func (s *OutboxService) Entry(ctx context.Context, id uuid.UUID) (*OutboxEntryDTO, error) {
	entry, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := toOutboxEntryDTO(entry)
	return &dto, nil
}

// Retry puts a failed or dead entry back in the pending queue
func (s *OutboxService) Retry(ctx context.Context, id uuid.UUID) (*OutboxEntryDTO, error) {
	entry, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := entry.Requeue(); err != nil {
		return nil, shared.ErrInvalidState.WithMessage("Only failed or dead letter entries can be retried")
	}
	if err := s.repo.Update(ctx, entry); err != nil {
		return nil, appshared.Internal(s.logger, "Failed to retry outbox entry", err, zap.String("id", id.String()))
	}

	s.logger.Info("Outbox entry requeued",
		zap.String("id", id.String()),
		zap.String("event_type", entry.EventType))
	dto := toOutboxEntryDTO(entry)
	return &dto, nil
}

// RetryAll requeues every dead entry
func (s *OutboxService) RetryAll(ctx context.Context) (int64, error) {
	count, err := s.repo.RequeueDead(ctx)
	if err != nil {
		return 0, appshared.Internal(s.logger, "Failed to requeue dead letters", err)
	}
	s.logger.Info("Dead letters requeued", zap.Int64("count", count))
	return count, nil
}

// Stats counts outbox rows per status
func (s *OutboxService) Stats(ctx context.Context) (*OutboxStatsDTO, error) {
	counts, err := s.repo.CountByStatus(ctx)
	if err != nil {
		return nil, appshared.Internal(s.logger, "Failed to count outbox entries", err)
	}

	stats := &OutboxStatsDTO{
		Pending:    counts[shared.OutboxStatusPending],
		Processing: counts[shared.OutboxStatusProcessing],
		Sent:       counts[shared.OutboxStatusSent],
		Failed:     counts[shared.OutboxStatusFailed],
		Dead:       counts[shared.OutboxStatusDead],
	}
	for _, n := range counts {
		stats.Total += n
	}
	return stats, nil
}

func (s *OutboxService) find(ctx context.Context, id uuid.UUID) (*shared.OutboxEntry, error) {
	entry, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, appshared.NotFound(s.logger, err, "Outbox entry not found")
	}
	if entry == nil {
		return nil, shared.ErrNotFound.WithMessage("Outbox entry not found")
	}
	return entry, nil
}

func toOutboxEntryDTO(entry *shared.OutboxEntry) OutboxEntryDTO {
	return OutboxEntryDTO{
		ID:            entry.ID,
		EventID:       entry.EventID,
		EventType:     entry.EventType,
		AggregateID:   entry.AggregateID,
		AggregateType: entry.AggregateType,
		Status:        string(entry.Status),
		RetryCount:    entry.RetryCount,
		MaxRetries:    entry.MaxRetries,
		LastError:     entry.LastError,
		NextRetryAt:   entry.NextRetryAt,
		ProcessedAt:   entry.ProcessedAt,
		CreatedAt:     entry.CreatedAt,
		UpdatedAt:     entry.UpdatedAt,
	}
}
