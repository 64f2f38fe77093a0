package channel

import (
	"errors"
	"strings"
	"testing"

	"github.com/avocado/teamhub/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMessage(t *testing.T) {
	t.Run("sanitises script", func(t *testing.T) {
		m, err := NewMessage(1, "z1", `<b>hi</b><script>alert(1)</script><img src=x onerror=alert(1)>`, 0)
		require.NoError(t, err)
		assert.Contains(t, m.Content, "<b>hi</b>")
		assert.NotContains(t, m.Content, "script")
		assert.NotContains(t, m.Content, "onerror")
	})

	t.Run("empty content", func(t *testing.T) {
		_, err := NewMessage(1, "z1", "   ", 0)
		assert.True(t, errors.Is(err, shared.ErrInvalidInput))
	})

	t.Run("content that sanitises to nothing", func(t *testing.T) {
		_, err := NewMessage(1, "z1", "<script>x</script>", 0)
		assert.True(t, errors.Is(err, shared.ErrInvalidInput))
	})

	t.Run("length limit counts characters", func(t *testing.T) {
		_, err := NewMessage(1, "z1", strings.Repeat("é", 10), 10)
		assert.NoError(t, err)
		_, err = NewMessage(1, "z1", strings.Repeat("a", 10001), 0)
		assert.True(t, errors.Is(err, shared.ErrInvalidInput))
	})

	t.Run("missing sender", func(t *testing.T) {
		_, err := NewMessage(1, "", "hi", 0)
		assert.True(t, errors.Is(err, shared.ErrMissingFields))
	})
}

func TestMentionsAssistant(t *testing.T) {
	assert.True(t, MentionsAssistant("hey @Assistant what is due?"))
	assert.True(t, MentionsAssistant("@ASSISTANT"))
	assert.False(t, MentionsAssistant("assistant please"))
}

func TestStripMention(t *testing.T) {
	assert.Equal(t, "what is due?", StripMention("@Assistant what is due?"))
	assert.Equal(t, "a  b", StripMention("a @assistant b @ASSISTANT"))
}

func TestAssistantConversation(t *testing.T) {
	recent := []Message{
		{SenderZid: "z1", Content: "m1"},
		{SenderZid: "z2", Content: "m2"},
		{SenderZid: AssistantZid, Content: "m3"},
		{SenderZid: "z1", Content: "m4"},
		{SenderZid: "z2", Content: "m5"},
		{SenderZid: "z1", Content: "m6"},
	}

	turns := AssistantConversation(recent, "@assistant summarise", 5)

	require.Len(t, turns, 7)
	assert.Equal(t, shared.ChatMessage{Role: shared.RoleSystem, Content: AssistantSystemPrompt}, turns[0])
	assert.Equal(t, "m2", turns[1].Content, "oldest message beyond the window is dropped")
	assert.Equal(t, shared.RoleAssistant, turns[2].Role)
	assert.Equal(t, shared.RoleUser, turns[3].Role)
	assert.Equal(t, shared.ChatMessage{Role: shared.RoleUser, Content: "summarise"}, turns[6])
}

func TestNewChannel(t *testing.T) {
	c, err := NewChannel("  general ", "z1", false, nil)
	require.NoError(t, err)
	assert.Equal(t, "general", c.Name)

	_, err = NewChannel("", "z1", false, nil)
	assert.True(t, errors.Is(err, shared.ErrMissingFields))

	assert.Equal(t, "channel_42", RoomName(42))
}

func TestNewAssistantMessage(t *testing.T) {
	m := NewAssistantMessage(3, "<p>Due Friday</p>")
	assert.Equal(t, AssistantZid, m.SenderZid)
	assert.True(t, m.IsAIResponse)
}
