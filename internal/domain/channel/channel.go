package channel

import (
	"fmt"
	"strings"
	"time"

	"github.com/avocado/teamhub/internal/domain/shared"
)

// Channel is a named chat room
type Channel struct {
	ID        int64
	Name      string
	CreatedBy string
	GroupID   *int64
	IsPrivate bool
	CreatedAt time.Time
}

// Member is a user's membership in a channel
type Member struct {
	ChannelID int64
	Zid       string
	Name      string // read-only, joined from users
	JoinedAt  time.Time
}

// NewChannel validates the name and creator
func NewChannel(name, createdBy string, isPrivate bool, groupID *int64) (*Channel, error) {
	name = strings.TrimSpace(name)
	createdBy = strings.TrimSpace(createdBy)
	if name == "" || createdBy == "" {
		return nil, shared.ErrMissingFields.WithMessage("Missing required fields: name, created_by")
	}
	if len([]rune(name)) > 100 {
		return nil, shared.ErrInvalidInput.WithMessage("Channel name cannot exceed 100 characters")
	}
	return &Channel{
		Name:      name,
		CreatedBy: createdBy,
		GroupID:   groupID,
		IsPrivate: isPrivate,
		CreatedAt: time.Now(),
	}, nil
}

// RoomName is the realtime room of a channel
func RoomName(channelID int64) string {
	return fmt.Sprintf("channel_%d", channelID)
}
