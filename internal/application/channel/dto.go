package channel

import (
	"time"

	"github.com/avocado/teamhub/internal/domain/channel"
)

// CreateChannelInput holds the fields of a new channel
type CreateChannelInput struct {
	Name      string
	CreatedBy string
	IsPrivate bool
	GroupID   *int64
}

// ChannelInfo is the public view of a channel
type ChannelInfo struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedBy string    `json:"created_by"`
	GroupID   *int64    `json:"group_id"`
	IsPrivate bool      `json:"is_private"`
	CreatedAt time.Time `json:"created_at"`
}

// MemberInfo is a channel member with the display name
type MemberInfo struct {
	Zid      string    `json:"zid"`
	Name     string    `json:"name"`
	JoinedAt time.Time `json:"joined_at"`
}

// Options tunes message limits and the assistant context window
type Options struct {
	MaxMessageLength int
	AssistantContext int
}

func toChannelInfo(c *channel.Channel) ChannelInfo {
	return ChannelInfo{
		ID:        c.ID,
		Name:      c.Name,
		CreatedBy: c.CreatedBy,
		GroupID:   c.GroupID,
		IsPrivate: c.IsPrivate,
		CreatedAt: c.CreatedAt,
	}
}

func toChannelInfos(rows []channel.Channel) []ChannelInfo {
	out := make([]ChannelInfo, 0, len(rows))
	for i := range rows {
		out = append(out, toChannelInfo(&rows[i]))
	}
	return out
}
