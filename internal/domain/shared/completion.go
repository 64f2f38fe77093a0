package shared

import "context"

// Chat roles understood by completion models
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// CompletionPurpose selects the model and limits configured for a call
type CompletionPurpose string

const (
	PurposeAnalysis  CompletionPurpose = "analysis"
	PurposeAssistant CompletionPurpose = "assistant"
	PurposeAgenda    CompletionPurpose = "agenda"
)

// ChatMessage is one turn of a completion conversation
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Completer produces a chat completion. Implementations bound each call with
// their configured timeout; a disabled client returns ErrServiceUnavailable.
type Completer interface {
	Complete(ctx context.Context, purpose CompletionPurpose, messages []ChatMessage) (string, error)
}
