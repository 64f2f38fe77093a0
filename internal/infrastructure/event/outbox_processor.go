package event

import (
	"context"
	"sync"
	"time"

	"github.com/avocado/teamhub/internal/domain/shared"
	"go.uber.org/zap"
)

// OutboxProcessorConfig tunes the delivery and cleanup loops
type OutboxProcessorConfig struct {
	BatchSize      int
	PollInterval   time.Duration
	CleanupEnabled bool
	// CleanupRetention is how long sent rows are kept
	CleanupRetention time.Duration
	CleanupInterval  time.Duration
	// ClaimTimeout is how long a row may stay PROCESSING before it is
	// handed back to the queue
	ClaimTimeout time.Duration
}

// DefaultOutboxProcessorConfig polls every second and keeps sent rows a week
func DefaultOutboxProcessorConfig() OutboxProcessorConfig {
	return OutboxProcessorConfig{
		BatchSize:        100,
		PollInterval:     time.Second,
		CleanupEnabled:   true,
		CleanupRetention: 7 * 24 * time.Hour,
		CleanupInterval:  time.Hour,
		ClaimTimeout:     5 * time.Minute,
	}
}

// OutboxProcessor moves committed outbox rows onto the event bus. It runs a
// batch on every poll tick and whenever Wake is called, claims rows before
// publishing them so concurrent processors never deliver the same row, and
// records failures for a backoff retry.
type OutboxProcessor struct {
	repo       shared.OutboxRepository
	bus        shared.EventBus
	serializer *EventSerializer
	config     OutboxProcessorConfig
	logger     *zap.Logger

	wake   chan struct{}
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewOutboxProcessor creates a stopped processor
func NewOutboxProcessor(
	repo shared.OutboxRepository,
	bus shared.EventBus,
	serializer *EventSerializer,
	config OutboxProcessorConfig,
	logger *zap.Logger,
) *OutboxProcessor {
	if config.BatchSize <= 0 {
		config.BatchSize = 100
	}
	if config.PollInterval <= 0 {
		config.PollInterval = time.Second
	}
	if config.CleanupInterval <= 0 {
		config.CleanupInterval = time.Hour
	}
	if config.ClaimTimeout <= 0 {
		config.ClaimTimeout = 5 * time.Minute
	}
	return &OutboxProcessor{
		repo:       repo,
		bus:        bus,
		serializer: serializer,
		config:     config,
		logger:     logger,
		wake:       make(chan struct{}, 1),
	}
}

// Start releases claims left by a previous run, then launches the delivery
// and stale-claim loops and, when enabled, the cleanup loop.
func (p *OutboxProcessor) Start(ctx context.Context) error {
	ctx, p.cancel = context.WithCancel(ctx)
	p.releaseStale(ctx)

	p.wg.Add(2)
	go p.deliveryLoop(ctx)
	go p.every(ctx, p.config.ClaimTimeout/2, p.releaseStale)
	if p.config.CleanupEnabled {
		p.wg.Add(1)
		go p.every(ctx, p.config.CleanupInterval, p.cleanup)
	}

	p.logger.Info("Outbox processor started",
		zap.Int("batch_size", p.config.BatchSize),
		zap.Duration("poll_interval", p.config.PollInterval),
		zap.Bool("cleanup", p.config.CleanupEnabled),
	)
	return nil
}

// Wake asks for a batch now instead of at the next tick. It never blocks;
// wakes that arrive while one is queued are merged.
func (p *OutboxProcessor) Wake() {
	select {
	case p.wake <- struct{}{}:
	default:
	}
}

// Stop cancels the loops and waits for the batch in flight, bounded by ctx
func (p *OutboxProcessor) Stop(ctx context.Context) error {
	if p.cancel != nil {
		p.cancel()
	}

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.logger.Info("Outbox processor stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *OutboxProcessor) deliveryLoop(ctx context.Context) {
	defer p.wg.Done()

	ticker := time.NewTicker(p.config.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		case <-p.wake:
		}
		p.processBatch(ctx)
	}
}

func (p *OutboxProcessor) every(ctx context.Context, interval time.Duration, fn func(context.Context)) {
	defer p.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			fn(ctx)
		}
	}
}

// processBatch claims due rows and publishes them oldest first
func (p *OutboxProcessor) processBatch(ctx context.Context) {
	claimed, err := p.repo.ClaimDue(ctx, time.Now(), p.config.BatchSize)
	if err != nil {
		p.logger.Error("Failed to claim outbox rows", zap.Error(err))
		return
	}
	for _, entry := range claimed {
		p.publish(ctx, entry)
	}
}

func (p *OutboxProcessor) publish(ctx context.Context, entry *shared.OutboxEntry) {
	log := p.logger.With(
		zap.String("event_id", entry.EventID.String()),
		zap.String("event_type", entry.EventType),
		zap.String("aggregate", entry.AggregateType+":"+entry.AggregateID),
	)

	event, err := p.serializer.Deserialize(entry.EventType, entry.Payload)
	if err == nil {
		err = p.bus.Publish(ctx, event)
	}
	if err != nil {
		entry.MarkFailed(err.Error())
		if entry.IsDead() {
			log.Warn("Outbox row dead lettered", zap.Int("attempts", entry.RetryCount), zap.Error(err))
		} else {
			log.Error("Outbox delivery failed", zap.Int("attempt", entry.RetryCount), zap.Error(err))
		}
	} else {
		entry.MarkSent()
		log.Debug("Outbox row delivered")
	}

	if err := p.repo.Update(ctx, entry); err != nil {
		log.Error("Failed to save outbox row state", zap.String("status", string(entry.Status)), zap.Error(err))
	}
}

// cleanup deletes sent rows older than the retention period
func (p *OutboxProcessor) cleanup(ctx context.Context) {
	cutoff := time.Now().Add(-p.config.CleanupRetention)
	deleted, err := p.repo.DeleteSentBefore(ctx, cutoff)
	if err != nil {
		p.logger.Error("Outbox cleanup failed", zap.Error(err))
		return
	}
	if deleted > 0 {
		p.logger.Info("Outbox cleanup removed sent rows",
			zap.Int64("deleted", deleted),
			zap.Time("cutoff", cutoff),
		)
	}
}

func (p *OutboxProcessor) releaseStale(ctx context.Context) {
	released, err := p.repo.ReleaseStale(ctx, time.Now().Add(-p.config.ClaimTimeout))
	if err != nil {
		p.logger.Error("Failed to release stale outbox claims", zap.Error(err))
		return
	}
	if released > 0 {
		p.logger.Warn("Released stale outbox claims", zap.Int64("count", released))
	}
}
