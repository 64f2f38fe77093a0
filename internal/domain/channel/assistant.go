package channel

import (
	"strings"

	"github.com/avocado/teamhub/internal/domain/shared"
)

// AssistantSystemPrompt frames every assistant conversation
const AssistantSystemPrompt = "I am a project assistant AI, helping the team with project tasks. I will provide concise and professional answers."

// AssistantFallbackReply is stored when the model cannot answer
const AssistantFallbackReply = "I apologize, but I cannot process this request at the moment. Please try again later."

// DefaultAssistantContext is the number of prior messages sent as context
const DefaultAssistantContext = 5

// AssistantConversation builds the prompt for an assistant reply.
// recent is ordered oldest first; only the last limit messages are kept.
// The mention itself is stripped from the question.
func AssistantConversation(recent []Message, question string, limit int) []shared.ChatMessage {
	if limit <= 0 {
		limit = DefaultAssistantContext
	}
	if len(recent) > limit {
		recent = recent[len(recent)-limit:]
	}

	turns := make([]shared.ChatMessage, 0, len(recent)+2)
	turns = append(turns, shared.ChatMessage{Role: shared.RoleSystem, Content: AssistantSystemPrompt})
	for _, m := range recent {
		role := shared.RoleUser
		if m.SenderZid == AssistantZid {
			role = shared.RoleAssistant
		}
		turns = append(turns, shared.ChatMessage{Role: role, Content: m.Content})
	}
	turns = append(turns, shared.ChatMessage{Role: shared.RoleUser, Content: StripMention(question)})
	return turns
}

// StripMention removes every case-insensitive "@assistant" from content
func StripMention(content string) string {
	lower := strings.ToLower(content)
	var b strings.Builder
	for {
		i := strings.Index(lower, assistantMention)
		if i < 0 {
			b.WriteString(content)
			break
		}
		b.WriteString(content[:i])
		content = content[i+len(assistantMention):]
		lower = lower[i+len(assistantMention):]
	}
	return strings.TrimSpace(b.String())
}
