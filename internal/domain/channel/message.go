package channel

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/avocado/teamhub/internal/domain/shared"
	"github.com/microcosm-cc/bluemonday"
)

// AssistantZid is the sender id of assistant replies
const AssistantZid = "AI_ASSISTANT"

// DefaultMaxContentLength bounds message content in characters
const DefaultMaxContentLength = 10000

const assistantMention = "@assistant"

// Message is a chat message. Content is stored sanitised.
type Message struct {
	ID           int64     `json:"id"`
	ChannelID    int64     `json:"channel_id"`
	SenderZid    string    `json:"sender_zid"`
	Content      string    `json:"content"`
	IsAIResponse bool      `json:"is_ai_response"`
	SentAt       time.Time `json:"sent_at"`
}

var ugcPolicy = bluemonday.UGCPolicy()

// SanitizeContent strips scripts, event handlers and unsafe URLs while keeping
// basic formatting markup.
func SanitizeContent(content string) string {
	return ugcPolicy.Sanitize(content)
}

// NewMessage validates and sanitises a user message
func NewMessage(channelID int64, senderZid, content string, maxLen int) (*Message, error) {
	if maxLen <= 0 {
		maxLen = DefaultMaxContentLength
	}
	if strings.TrimSpace(senderZid) == "" {
		return nil, shared.ErrMissingFields.WithMessage("Missing required fields: sender_zid")
	}
	if strings.TrimSpace(content) == "" {
		return nil, shared.ErrInvalidInput.WithMessage("Message content cannot be empty")
	}
	if utf8.RuneCountInString(content) > maxLen {
		return nil, shared.ErrInvalidInput.WithMessage("Message content is too long")
	}

	clean := strings.TrimSpace(SanitizeContent(content))
	if clean == "" {
		return nil, shared.ErrInvalidInput.WithMessage("Message content cannot be empty")
	}
	return &Message{
		ChannelID: channelID,
		SenderZid: senderZid,
		Content:   clean,
		SentAt:    time.Now(),
	}, nil
}

// NewAssistantMessage builds a reply from the assistant
func NewAssistantMessage(channelID int64, reply string) *Message {
	return &Message{
		ChannelID:    channelID,
		SenderZid:    AssistantZid,
		Content:      SanitizeContent(reply),
		IsAIResponse: true,
		SentAt:       time.Now(),
	}
}

// MentionsAssistant reports whether content addresses the assistant
func MentionsAssistant(content string) bool {
	return strings.Contains(strings.ToLower(content), assistantMention)
}
