package event

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/avocado/teamhub/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestPublisher() *OutboxPublisher {
	serializer := NewEventSerializer()
	Register[testEvent](serializer, "TestEvent")
	return NewOutboxPublisher(serializer)
}

func TestOutboxPublisher_PublishWithTx(t *testing.T) {
	db := setupOutboxDB(t)
	publisher := newTestPublisher()
	ctx := context.Background()

	event := newTestEvent("TestEvent")
	err := db.Transaction(func(tx *gorm.DB) error {
		return publisher.PublishWithTx(ctx, tx, event)
	})
	require.NoError(t, err)

	pending, _, err := NewGormOutboxRepository(db).List(ctx, shared.OutboxStatusPending, 1, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, event.EventID(), pending[0].EventID)
	assert.Equal(t, "TestAggregate", pending[0].AggregateType)
	assert.Contains(t, string(pending[0].Payload), `"data":"test data"`)
}

func TestOutboxPublisher_WithMaxRetries(t *testing.T) {
	db := setupOutboxDB(t)
	serializer := NewEventSerializer()
	Register[testEvent](serializer, "TestEvent")
	ctx := context.Background()

	for _, tc := range []struct {
		name string
		opt  int
		want int
	}{
		{"configured", 2, 2},
		{"zero keeps default", 0, shared.DefaultMaxRetries},
	} {
		publisher := NewOutboxPublisher(serializer, WithMaxRetries(tc.opt))
		event := newTestEvent("TestEvent")
		require.NoError(t, db.Transaction(func(tx *gorm.DB) error {
			return publisher.PublishWithTx(ctx, tx, event)
		}), tc.name)

		pending, _, err := NewGormOutboxRepository(db).List(ctx, shared.OutboxStatusPending, 1, 10)
		require.NoError(t, err, tc.name)
		var found *shared.OutboxEntry
		for _, e := range pending {
			if e.EventID == event.EventID() {
				found = e
			}
		}
		require.NotNil(t, found, tc.name)
		assert.Equal(t, tc.want, found.MaxRetries, tc.name)
	}
}

func TestOutboxPublisher_PublishWithTx_MultipleEvents(t *testing.T) {
	db := setupOutboxDB(t)
	publisher := newTestPublisher()
	ctx := context.Background()

	events := []shared.DomainEvent{
		newTestEvent("TestEvent"),
		newTestEvent("TestEvent"),
		newTestEvent("TestEvent"),
	}
	err := db.Transaction(func(tx *gorm.DB) error {
		return publisher.PublishWithTx(ctx, tx, events...)
	})
	require.NoError(t, err)

	counts, err := NewGormOutboxRepository(db).CountByStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), counts[shared.OutboxStatusPending])
}

func TestOutboxPublisher_TransactionRollbackDiscardsEvents(t *testing.T) {
	db := setupOutboxDB(t)
	publisher := newTestPublisher()
	ctx := context.Background()

	testErr := errors.New("simulated error")
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := publisher.PublishWithTx(ctx, tx, newTestEvent("TestEvent")); err != nil {
			return err
		}
		return testErr
	})
	require.ErrorIs(t, err, testErr)

	pending, _, err := NewGormOutboxRepository(db).List(ctx, shared.OutboxStatusPending, 1, 10)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestOutboxPublisher_PublishWithTx_EmptyEvents(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	db, err := gorm.Open(postgres.New(postgres.Config{Conn: mockDB, DriverName: "postgres"}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	mock.ExpectBegin()
	mock.ExpectCommit()

	err = db.Transaction(func(tx *gorm.DB) error {
		return newTestPublisher().PublishWithTx(context.Background(), tx)
	})

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOutboxPublisher_SaveEvents_RejectsForeignTransaction(t *testing.T) {
	err := newTestPublisher().SaveEvents(context.Background(), "not a tx", newTestEvent("TestEvent"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "*gorm.DB")
}
