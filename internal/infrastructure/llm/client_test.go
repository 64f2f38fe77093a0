package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/avocado/teamhub/internal/domain/shared"
	"github.com/avocado/teamhub/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturedRequest struct {
	Model    string `json:"model"`
	Messages []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
	MaxTokens int `json:"max_tokens"`
}

func newTestServer(t *testing.T, status int, reply string, captured *capturedRequest) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		if captured != nil {
			require.NoError(t, json.NewDecoder(r.Body).Decode(captured))
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if status != http.StatusOK {
			_, _ = w.Write([]byte(`{"error":{"message":"model overloaded","type":"server_error"}}`))
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":      "chatcmpl-1",
			"object":  "chat.completion",
			"created": 1,
			"model":   "gpt-4",
			"choices": []map[string]any{{
				"index":         0,
				"message":       map[string]string{"role": "assistant", "content": reply},
				"finish_reason": "stop",
			}},
			"usage": map[string]int{"prompt_tokens": 10, "completion_tokens": 5, "total_tokens": 15},
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func testConfig(baseURL string) config.LLMConfig {
	return config.LLMConfig{
		Enabled:        true,
		APIKey:         "test-key",
		BaseURL:        baseURL + "/v1/",
		Model:          "gpt-4",
		AssistantModel: "gpt-3.5-turbo",
		Timeout:        5 * time.Second,
		MaxTokens:      256,
	}
}

func TestNewOpenAIClient_Validation(t *testing.T) {
	_, err := NewOpenAIClient(config.LLMConfig{Model: "gpt-4"})
	assert.Error(t, err)

	_, err = NewOpenAIClient(config.LLMConfig{APIKey: "k"})
	assert.Error(t, err)

	c, err := NewOpenAIClient(config.LLMConfig{APIKey: "k", Model: "gpt-4"})
	require.NoError(t, err)
	assert.Equal(t, "gpt-4", c.assistantModel)
	assert.Equal(t, defaultTimeout, c.timeout)
}

func TestOpenAIClient_Complete(t *testing.T) {
	var captured capturedRequest
	srv := newTestServer(t, http.StatusOK, "  {\"fairness\": true}  ", &captured)

	c, err := NewOpenAIClient(testConfig(srv.URL))
	require.NoError(t, err)

	reply, err := c.Complete(context.Background(), shared.PurposeAnalysis, []shared.ChatMessage{
		{Role: shared.RoleSystem, Content: "You are a fair assessor."},
		{Role: shared.RoleUser, Content: "Analyse"},
	})
	require.NoError(t, err)
	assert.Equal(t, `{"fairness": true}`, reply)

	assert.Equal(t, "gpt-4", captured.Model)
	assert.Equal(t, 256, captured.MaxTokens)
	require.Len(t, captured.Messages, 2)
	assert.Equal(t, "system", captured.Messages[0].Role)
	assert.Equal(t, "user", captured.Messages[1].Role)
}

func TestOpenAIClient_AssistantUsesAssistantModel(t *testing.T) {
	var captured capturedRequest
	srv := newTestServer(t, http.StatusOK, "Sure.", &captured)

	c, err := NewOpenAIClient(testConfig(srv.URL))
	require.NoError(t, err)

	_, err = c.Complete(context.Background(), shared.PurposeAssistant, []shared.ChatMessage{
		{Role: shared.RoleAssistant, Content: "Earlier answer"},
		{Role: shared.RoleUser, Content: "Follow-up"},
	})
	require.NoError(t, err)
	assert.Equal(t, "gpt-3.5-turbo", captured.Model)
	assert.Equal(t, "assistant", captured.Messages[0].Role)
}

func TestOpenAIClient_APIErrorIsServiceUnavailable(t *testing.T) {
	srv := newTestServer(t, http.StatusInternalServerError, "", nil)

	c, err := NewOpenAIClient(testConfig(srv.URL))
	require.NoError(t, err)

	_, err = c.Complete(context.Background(), shared.PurposeAgenda, []shared.ChatMessage{{Role: shared.RoleUser, Content: "agenda"}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, shared.ErrServiceUnavailable))
	assert.Contains(t, err.Error(), "model overloaded")
}

func TestOpenAIClient_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	cfg := testConfig(srv.URL)
	cfg.Timeout = 50 * time.Millisecond
	c, err := NewOpenAIClient(cfg, WithHTTPClient(srv.Client()))
	require.NoError(t, err)

	_, err = c.Complete(context.Background(), shared.PurposeAnalysis, []shared.ChatMessage{{Role: shared.RoleUser, Content: "x"}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, shared.ErrServiceUnavailable))
	assert.Contains(t, err.Error(), "timed out")
}

func TestNew_DisabledReturnsDisabledCompleter(t *testing.T) {
	c, err := New(config.LLMConfig{Enabled: false})
	require.NoError(t, err)

	_, err = c.Complete(context.Background(), shared.PurposeAssistant, nil)
	assert.True(t, errors.Is(err, shared.ErrServiceUnavailable))
}
