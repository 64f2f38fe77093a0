package shared

import (
	"errors"
	"fmt"
	"testing"

	"github.com/avocado/teamhub/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestInternal(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	log := zap.New(core)

	assert.NoError(t, Internal(log, "unused", nil))

	notFound := shared.ErrNotFound.WithMessage("Group not found")
	err := Internal(log, "unused", fmt.Errorf("wrapped: %w", notFound))
	assert.Same(t, notFound, err, "domain errors pass through unwrapped")
	assert.Zero(t, logs.Len())

	err = Internal(log, "Failed to load", errors.New(`pq: relation "groups" does not exist`), zap.Int64("group_id", 4))
	assert.True(t, errors.Is(err, shared.ErrUnknown))
	assert.NotContains(t, err.Error(), "pq:")

	entries := logs.All()
	if assert.Len(t, entries, 1) {
		assert.Equal(t, "Failed to load", entries[0].Message)
		fields := entries[0].ContextMap()
		assert.Equal(t, int64(4), fields["group_id"])
		assert.Contains(t, fields["error"], "pq:")
	}
}

func TestNotFound(t *testing.T) {
	log := zap.NewNop()

	err := NotFound(log, shared.ErrNotFound, "Meeting not found")
	assert.True(t, errors.Is(err, shared.ErrNotFound))
	assert.Equal(t, "Meeting not found", err.Error())

	err = NotFound(log, errors.New("connection reset"), "Meeting not found")
	assert.True(t, errors.Is(err, shared.ErrUnknown))

	forbidden := shared.ErrForbidden.WithMessage("nope")
	assert.Same(t, forbidden, NotFound(log, forbidden, "Meeting not found"))
}
