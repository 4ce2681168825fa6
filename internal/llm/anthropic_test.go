package llm

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func anthropicMessage(text, stopReason string) map[string]any {
	return map[string]any{
		"id":          "msg_01",
		"type":        "message",
		"role":        "assistant",
		"model":       "claude-haiku-4-5-20251001",
		"content":     []any{map[string]any{"type": "text", "text": text}},
		"stop_reason": stopReason,
		"usage":       map[string]any{"input_tokens": 42, "output_tokens": 17},
	}
}

func anthropicFailure(kind, msg string) map[string]any {
	return map[string]any{
		"type":  "error",
		"error": map[string]any{"type": kind, "message": msg},
	}
}

func newTestAnthropic(t *testing.T, api *stubAPI) *AnthropicProvider {
	t.Helper()
	url := api.start(t)
	p, err := NewAnthropicProvider(AnthropicConfig{APIKey: "test-key", Model: "claude-haiku"}, option.WithBaseURL(url))
	require.NoError(t, err)
	return p
}

func TestAnthropic_Complete(t *testing.T) {
	api := &stubAPI{reply: anthropicMessage(explanationJSON, "end_turn")}
	p := newTestAnthropic(t, api)

	out, err := p.Complete(context.Background(), explainPrompt())
	require.NoError(t, err)
	assert.JSONEq(t, explanationJSON, string(out.JSON))
	assert.Equal(t, "claude-haiku-4-5-20251001", out.Model)
	assert.Equal(t, Usage{InputTokens: 42, OutputTokens: 17}, out.Usage)
	assert.False(t, out.Truncated)

	assert.Equal(t, "/v1/messages", api.lastPath())
	body := api.request()
	assert.Equal(t, "claude-haiku-4-5-20251001", body["model"])
	assert.EqualValues(t, 256, body["max_tokens"])
	assert.NotEmpty(t, body["system"])
	require.Contains(t, body, "output_config")
	assert.Contains(t, mustJSON(t, body["output_config"]), `"required":["explanation","nudge"]`)
	assert.NotContains(t, mustJSON(t, body["output_config"]), "maxLength")
	require.Len(t, body["messages"], 1)
}

func TestAnthropic_DefaultMaxTokens(t *testing.T) {
	api := &stubAPI{reply: anthropicMessage(`{}`, "end_turn")}
	p := newTestAnthropic(t, api)

	_, err := p.Complete(context.Background(), Prompt{User: "hi"})
	require.NoError(t, err)
	body := api.request()
	assert.EqualValues(t, defaultMaxTokens, body["max_tokens"])
	assert.NotContains(t, body, "output_config")
	assert.NotContains(t, body, "system")
}

func TestAnthropic_MaxTokensMarksTruncated(t *testing.T) {
	p := newTestAnthropic(t, &stubAPI{reply: anthropicMessage(`{"explanation":"Step 3 app`, "max_tokens")})

	out, err := p.Complete(context.Background(), explainPrompt())
	require.NoError(t, err)
	assert.True(t, out.Truncated)
}

func TestAnthropic_HTTPFailures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		header http.Header
		kind   error
		wait   time.Duration
	}{
		{"rate limit with retry-after", http.StatusTooManyRequests, http.Header{"Retry-After": {"3"}}, ErrRateLimit, 3 * time.Second},
		{"bad key", http.StatusUnauthorized, nil, ErrRejected, 0},
		{"bad request", http.StatusBadRequest, nil, ErrRejected, 0},
		{"server error", http.StatusInternalServerError, nil, ErrUnavailable, 0},
		{"overloaded", 529, nil, ErrUnavailable, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := &stubAPI{status: tt.status, header: tt.header, reply: anthropicFailure("api_error", "nope")}
			p := newTestAnthropic(t, api)

			_, err := p.Complete(context.Background(), explainPrompt())
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.kind)

			var e *Error
			require.ErrorAs(t, err, &e)
			assert.Equal(t, "anthropic", e.Provider)
			assert.Equal(t, tt.status, e.Status)
			assert.Equal(t, tt.wait, e.RetryAfter)
			assert.Equal(t, 1, api.calls(), "the SDK must not retry on its own")
		})
	}
}

func TestAnthropic_NoTextBlock(t *testing.T) {
	reply := anthropicMessage("", "end_turn")
	reply["content"] = []any{}
	p := newTestAnthropic(t, &stubAPI{reply: reply})

	_, err := p.Complete(context.Background(), explainPrompt())
	assert.ErrorIs(t, err, ErrInvalidOutput)
}

func TestAnthropic_ModelAliases(t *testing.T) {
	tests := []struct{ in, want string }{
		{"claude-haiku", "claude-haiku-4-5-20251001"},
		{"claude-sonnet", "claude-sonnet-4-5-20250929"},
		{"claude-opus-4-1", "claude-opus-4-1"},
	}
	for _, tt := range tests {
		p, err := NewAnthropicProvider(AnthropicConfig{APIKey: "k", Model: tt.in})
		require.NoError(t, err)
		assert.Equal(t, tt.want, p.Model())
	}

	_, err := NewAnthropicProvider(AnthropicConfig{Model: "claude-haiku"})
	assert.Error(t, err)
}
