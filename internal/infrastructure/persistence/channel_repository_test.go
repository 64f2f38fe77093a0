package persistence

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/avocado/teamhub/internal/domain/channel"
	"github.com/avocado/teamhub/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormChannelRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("duplicate name", func(t *testing.T) {
		repo := NewGormChannelRepository(newTestDB(t))
		c1, err := channel.NewChannel("general", "z1", false, nil)
		require.NoError(t, err)
		c2, err := channel.NewChannel("general", "z2", false, nil)
		require.NoError(t, err)

		require.NoError(t, repo.Create(ctx, c1))
		assert.ErrorIs(t, repo.Create(ctx, c2), shared.ErrAlreadyExists)
	})

	t.Run("delete removes messages and members", func(t *testing.T) {
		db := newTestDB(t)
		channels := NewGormChannelRepository(db)
		members := NewGormChannelMemberRepository(db)
		messages := NewGormMessageRepository(db)

		c, err := channel.NewChannel("team", "z1", true, nil)
		require.NoError(t, err)
		require.NoError(t, channels.Create(ctx, c))
		require.NoError(t, members.Add(ctx, &channel.Member{ChannelID: c.ID, Zid: "z1"}))
		msg, err := channel.NewMessage(c.ID, "z1", "hello", channel.DefaultMaxContentLength)
		require.NoError(t, err)
		require.NoError(t, messages.Create(ctx, msg))

		require.NoError(t, channels.Delete(ctx, c.ID))

		_, err = channels.FindByID(ctx, c.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
		left, err := messages.FindByChannel(ctx, c.ID)
		require.NoError(t, err)
		assert.Empty(t, left)
		ok, err := members.IsMember(ctx, c.ID, "z1")
		require.NoError(t, err)
		assert.False(t, ok)

		assert.ErrorIs(t, channels.Delete(ctx, c.ID), shared.ErrNotFound)
	})

	t.Run("find by member and group", func(t *testing.T) {
		db := newTestDB(t)
		channels := NewGormChannelRepository(db)
		members := NewGormChannelMemberRepository(db)
		gid := seedGroup(t, db, "COMP9900", "G")

		a, _ := channel.NewChannel("a", "z1", false, &gid)
		b, _ := channel.NewChannel("b", "z2", false, nil)
		require.NoError(t, channels.Create(ctx, a))
		require.NoError(t, channels.Create(ctx, b))
		require.NoError(t, members.Add(ctx, &channel.Member{ChannelID: b.ID, Zid: "z1"}))

		mine, err := channels.FindByMember(ctx, "z1")
		require.NoError(t, err)
		require.Len(t, mine, 1)
		assert.Equal(t, "b", mine[0].Name)

		byGroup, err := channels.FindByGroup(ctx, gid)
		require.NoError(t, err)
		require.Len(t, byGroup, 1)
		assert.Equal(t, "a", byGroup[0].Name)

		all, err := channels.FindAll(ctx)
		require.NoError(t, err)
		assert.Len(t, all, 2)
	})
}

func TestGormChannelMemberRepository(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	seedUser(t, db, "z1", "Alice", 1)
	repo := NewGormChannelMemberRepository(db)

	require.NoError(t, repo.Add(ctx, &channel.Member{ChannelID: 1, Zid: "z1"}))
	assert.ErrorIs(t, repo.Add(ctx, &channel.Member{ChannelID: 1, Zid: "z1"}), shared.ErrAlreadyExists)

	list, err := repo.FindByChannel(ctx, 1)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Alice", list[0].Name)
	assert.False(t, list[0].JoinedAt.IsZero())

	require.NoError(t, repo.Remove(ctx, 1, "z1"))
	assert.ErrorIs(t, repo.Remove(ctx, 1, "z1"), shared.ErrNotFound)
}

func TestGormMessageRepository_FindRecent(t *testing.T) {
	ctx := context.Background()
	repo := NewGormMessageRepository(newTestDB(t))
	start := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

	var ids []int64
	for i := 0; i < 8; i++ {
		m := &channel.Message{ChannelID: 7, SenderZid: "z1", Content: fmt.Sprintf("m%d", i), SentAt: start.Add(time.Duration(i) * time.Minute)}
		require.NoError(t, repo.Create(ctx, m))
		ids = append(ids, m.ID)
	}

	recent, err := repo.FindRecent(ctx, 7, 0, 5)
	require.NoError(t, err)
	require.Len(t, recent, 5)
	assert.Equal(t, "m3", recent[0].Content)
	assert.Equal(t, "m7", recent[4].Content)

	before, err := repo.FindRecent(ctx, 7, ids[7], 5)
	require.NoError(t, err)
	require.Len(t, before, 5)
	assert.Equal(t, "m2", before[0].Content)
	assert.Equal(t, "m6", before[4].Content)

	all, err := repo.FindByChannel(ctx, 7)
	require.NoError(t, err)
	assert.Len(t, all, 8)
}
