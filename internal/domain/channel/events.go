package channel

import (
	"strconv"
	"time"

	"github.com/avocado/teamhub/internal/domain/shared"
)

// AggregateTypeChannel is the aggregate type of chat events
const AggregateTypeChannel = "Channel"

// Chat event types
const (
	EventTypeMessagePosted      = "MessagePosted"
	EventTypeAssistantMentioned = "AssistantMentioned"
)

// MessagePostedEvent is raised for every stored message; it drives the room broadcast
type MessagePostedEvent struct {
	shared.BaseDomainEvent
	MessageID    int64     `json:"message_id"`
	ChannelID    int64     `json:"channel_id"`
	SenderZid    string    `json:"sender_zid"`
	Content      string    `json:"content"`
	IsAIResponse bool      `json:"is_ai_response"`
	SentAt       time.Time `json:"sent_at"`
}

// NewMessagePostedEvent creates a MessagePostedEvent
func NewMessagePostedEvent(m *Message) *MessagePostedEvent {
	return &MessagePostedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeMessagePosted, AggregateTypeChannel, strconv.FormatInt(m.ChannelID, 10)),
		MessageID:       m.ID,
		ChannelID:       m.ChannelID,
		SenderZid:       m.SenderZid,
		Content:         m.Content,
		IsAIResponse:    m.IsAIResponse,
		SentAt:          m.SentAt,
	}
}

// Message rebuilds the posted message
func (e *MessagePostedEvent) Message() Message {
	return Message{
		ID:           e.MessageID,
		ChannelID:    e.ChannelID,
		SenderZid:    e.SenderZid,
		Content:      e.Content,
		IsAIResponse: e.IsAIResponse,
		SentAt:       e.SentAt,
	}
}

// AssistantMentionedEvent asks for an assistant reply to a message
type AssistantMentionedEvent struct {
	shared.BaseDomainEvent
	MessageID int64  `json:"message_id"`
	ChannelID int64  `json:"channel_id"`
	SenderZid string `json:"sender_zid"`
	Question  string `json:"question"`
}

// NewAssistantMentionedEvent creates an AssistantMentionedEvent
func NewAssistantMentionedEvent(m *Message) *AssistantMentionedEvent {
	return &AssistantMentionedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeAssistantMentioned, AggregateTypeChannel, strconv.FormatInt(m.ChannelID, 10)),
		MessageID:       m.ID,
		ChannelID:       m.ChannelID,
		SenderZid:       m.SenderZid,
		Question:        m.Content,
	}
}
