//go:build integration

package integration

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/avocado/teamhub/internal/domain/shared"
	"github.com/avocado/teamhub/internal/infrastructure/event"
	"github.com/avocado/teamhub/tests/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func saveTestEvents(t *testing.T, db *gorm.DB, serializer *event.EventSerializer, n int) {
	t.Helper()
	publisher := event.NewOutboxPublisher(serializer)
	events := make([]shared.DomainEvent, 0, n)
	for i := 0; i < n; i++ {
		events = append(events, testutil.NewTestEvent("TestEvent", uuid.NewString()))
	}
	require.NoError(t, db.Transaction(func(tx *gorm.DB) error {
		return publisher.PublishWithTx(context.Background(), tx, events...)
	}))
}

func TestOutbox_ConcurrentClaimsDoNotOverlap(t *testing.T) {
	tdb := NewTestDB(t)
	serializer := event.NewEventSerializer()
	event.Register[testutil.TestEvent](serializer, "TestEvent")
	saveTestEvents(t, tdb.DB, serializer, 20)

	repo := event.NewGormOutboxRepository(tdb.DB)
	var (
		mu      sync.Mutex
		claimed = make(map[uuid.UUID]int)
		wg      sync.WaitGroup
	)
	// each worker keeps claiming small batches until the queue is drained
	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				entries, err := repo.ClaimDue(context.Background(), time.Now(), 3)
				if !assert.NoError(t, err) || len(entries) == 0 {
					return
				}
				mu.Lock()
				for _, e := range entries {
					claimed[e.ID]++
				}
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Len(t, claimed, 20)
	for id, n := range claimed {
		assert.Equal(t, 1, n, "entry %s claimed more than once", id)
	}

	counts, err := repo.CountByStatus(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(20), counts[shared.OutboxStatusProcessing])

	released, err := repo.ReleaseStale(context.Background(), time.Now().Add(time.Second))
	require.NoError(t, err)
	assert.Equal(t, int64(20), released)
}

func TestOutbox_ProcessorDeliversToBus(t *testing.T) {
	tdb := NewTestDB(t)
	serializer := event.NewEventSerializer()
	event.Register[testutil.TestEvent](serializer, "TestEvent")
	saveTestEvents(t, tdb.DB, serializer, 5)

	log := zap.NewNop()
	bus := event.NewInMemoryEventBus(log)
	handler := testutil.NewRecordingHandler("TestEvent")
	bus.Subscribe(handler)

	repo := event.NewGormOutboxRepository(tdb.DB)
	processor := event.NewOutboxProcessor(repo, bus, serializer, event.OutboxProcessorConfig{
		BatchSize:    10,
		PollInterval: 50 * time.Millisecond,
	}, log)

	ctx := context.Background()
	require.NoError(t, bus.Start(ctx))
	require.NoError(t, processor.Start(ctx))
	defer func() {
		_ = processor.Stop(ctx)
		_ = bus.Stop(ctx)
	}()

	require.True(t, handler.WaitFor(t, 5, 10*time.Second))
	testutil.AssertEventually(t, func() bool {
		counts, err := repo.CountByStatus(ctx)
		return err == nil && counts[shared.OutboxStatusSent] == 5
	}, 5*time.Second, 50*time.Millisecond)
}
