package models

import (
	"time"

	"github.com/avocado/teamhub/internal/domain/channel"
)

// ChannelModel is the persistence model for chat channels
type ChannelModel struct {
	ID        int64     `gorm:"primaryKey"`
	Name      string    `gorm:"type:varchar(100);not null;uniqueIndex"`
	CreatedBy string    `gorm:"type:varchar(50);not null"`
	GroupID   *int64    `gorm:"index"`
	IsPrivate bool      `gorm:"not null;default:false"`
	CreatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ChannelModel) TableName() string { return "channels" }

// ToDomain converts the model to a domain Channel
func (m *ChannelModel) ToDomain() channel.Channel {
	return channel.Channel{
		ID:        m.ID,
		Name:      m.Name,
		CreatedBy: m.CreatedBy,
		GroupID:   m.GroupID,
		IsPrivate: m.IsPrivate,
		CreatedAt: m.CreatedAt,
	}
}

// ChannelModelFromDomain creates a model from a domain Channel
func ChannelModelFromDomain(c *channel.Channel) *ChannelModel {
	return &ChannelModel{
		ID:        c.ID,
		Name:      c.Name,
		CreatedBy: c.CreatedBy,
		GroupID:   c.GroupID,
		IsPrivate: c.IsPrivate,
		CreatedAt: c.CreatedAt,
	}
}

// ChannelMemberModel is the persistence model for channel memberships
type ChannelMemberModel struct {
	ChannelID int64     `gorm:"primaryKey;autoIncrement:false"`
	Zid       string    `gorm:"type:varchar(50);primaryKey;index"`
	JoinedAt  time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ChannelMemberModel) TableName() string { return "channel_members" }

// MessageModel is the persistence model for chat messages
type MessageModel struct {
	ID           int64     `gorm:"primaryKey"`
	ChannelID    int64     `gorm:"not null;index:idx_messages_channel_sent,priority:1"`
	SenderZid    string    `gorm:"type:varchar(50);not null;index"`
	Content      string    `gorm:"type:text;not null"`
	IsAIResponse bool      `gorm:"column:is_ai_response;not null;default:false"`
	SentAt       time.Time `gorm:"not null;index:idx_messages_channel_sent,priority:2"`
}

// TableName returns the table name for GORM
func (MessageModel) TableName() string { return "messages" }

// ToDomain converts the model to a domain Message
func (m *MessageModel) ToDomain() channel.Message {
	return channel.Message{
		ID:           m.ID,
		ChannelID:    m.ChannelID,
		SenderZid:    m.SenderZid,
		Content:      m.Content,
		IsAIResponse: m.IsAIResponse,
		SentAt:       m.SentAt,
	}
}

// MessageModelFromDomain creates a model from a domain Message
func MessageModelFromDomain(m *channel.Message) *MessageModel {
	return &MessageModel{
		ID:           m.ID,
		ChannelID:    m.ChannelID,
		SenderZid:    m.SenderZid,
		Content:      m.Content,
		IsAIResponse: m.IsAIResponse,
		SentAt:       m.SentAt,
	}
}
