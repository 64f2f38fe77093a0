package channel

import "context"

// ChannelRepository persists channels
type ChannelRepository interface {
	// Create returns shared.ErrAlreadyExists on a duplicate name
	Create(ctx context.Context, c *Channel) error
	FindByID(ctx context.Context, id int64) (*Channel, error)
	FindAll(ctx context.Context) ([]Channel, error)
	FindByMember(ctx context.Context, zid string) ([]Channel, error)
	FindByGroup(ctx context.Context, groupID int64) ([]Channel, error)
	// Delete removes messages, members and the channel; shared.ErrNotFound if absent
	Delete(ctx context.Context, id int64) error
}

// MemberRepository persists channel memberships
type MemberRepository interface {
	// Add returns shared.ErrAlreadyExists when the zid is already a member
	Add(ctx context.Context, m *Member) error
	// Remove returns shared.ErrNotFound when the zid is not a member
	Remove(ctx context.Context, channelID int64, zid string) error
	FindByChannel(ctx context.Context, channelID int64) ([]Member, error)
	IsMember(ctx context.Context, channelID int64, zid string) (bool, error)
}

// MessageRepository persists messages
type MessageRepository interface {
	Create(ctx context.Context, m *Message) error
	// FindByChannel returns messages ordered by sent_at
	FindByChannel(ctx context.Context, channelID int64) ([]Message, error)
	// FindRecent returns the last limit messages before beforeID, oldest first
	FindRecent(ctx context.Context, channelID, beforeID int64, limit int) ([]Message, error)
}
