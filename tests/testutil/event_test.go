package testutil

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordingHandler(t *testing.T) {
	handler := NewRecordingHandler("MessagePosted", "UserRegistered")
	assert.Equal(t, []string{"MessagePosted", "UserRegistered"}, handler.EventTypes())

	first := NewTestEvent("MessagePosted", "7")
	require.NoError(t, handler.Handle(context.Background(), first))

	hubDown := errors.New("hub stopped")
	handler.FailWith(hubDown)
	second := NewTestEvent("MessagePosted", "7")
	assert.ErrorIs(t, handler.Handle(context.Background(), second), hubDown)

	handler.FailWith(nil)
	assert.NoError(t, handler.Handle(context.Background(), first))

	events := handler.Events()
	require.Len(t, events, 3, "failed deliveries are recorded too")
	assert.Same(t, first, events[0])
	assert.Same(t, second, events[1])
}

func TestNewTestEvent(t *testing.T) {
	event := NewTestEvent("MessagePosted", "7")

	assert.NotEqual(t, uuid.Nil, event.EventID())
	assert.Equal(t, "MessagePosted", event.EventType())
	assert.Equal(t, "7", event.AggregateID())
	assert.Equal(t, "TestAggregate", event.AggregateType())
	assert.WithinDuration(t, time.Now(), event.OccurredAt(), time.Second)
}

func TestRecordingHandler_WaitFor(t *testing.T) {
	handler := NewRecordingHandler("MessagePosted")

	go func() {
		time.Sleep(20 * time.Millisecond)
		_ = handler.Handle(context.Background(), NewTestEvent("MessagePosted", "1"))
		_ = handler.Handle(context.Background(), NewTestEvent("MessagePosted", "1"))
	}()

	assert.True(t, handler.WaitFor(t, 2, time.Second))
	assert.False(t, handler.WaitFor(t, 3, 30*time.Millisecond))
}

func TestWaitForCondition(t *testing.T) {
	var calls atomic.Int32
	assert.True(t, WaitForCondition(t, func() bool { return calls.Add(1) == 3 }, time.Second, time.Millisecond))
	assert.Equal(t, int32(3), calls.Load())

	assert.False(t, WaitForCondition(t, func() bool { return false }, 20*time.Millisecond, 5*time.Millisecond))
}
