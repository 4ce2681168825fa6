package llm

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discard() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func TestNewProvider_Disabled(t *testing.T) {
	_, err := NewProvider(context.Background(), DefaultConfig(), nil, discard())
	assert.ErrorIs(t, err, ErrDisabled)
}

func TestNewProvider_MissingKey(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Provider = "openai"
	_, err := NewProvider(context.Background(), cfg, nil, discard())
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrDisabled)
	assert.Contains(t, err.Error(), "PARSONS_OPENAI_API_KEY")
}

func TestNewProvider_Builds(t *testing.T) {
	for _, name := range []string{"anthropic", "openai", "gemini", "mock"} {
		t.Run(name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Provider = name
			cfg.Anthropic.APIKey = "k"
			cfg.OpenAI.APIKey = "k"
			cfg.Gemini.APIKey = "k"

			p, err := NewProvider(context.Background(), cfg, nil, discard())
			require.NoError(t, err)
			assert.NotEmpty(t, p.Model())
		})
	}
}

func TestNewProvider_MockFailureIsRecorded(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Provider = "mock"
	cfg.Retry = fastRetry(2)
	sink := &recordingSink{}

	p, err := NewProvider(context.Background(), cfg, sink, discard())
	require.NoError(t, err)

	// The factory's mock has no script, so every attempt fails.
	_, err = p.Complete(context.Background(), explainPrompt())
	assert.ErrorIs(t, err, ErrUnavailable)

	require.Len(t, sink.events, 2, "each attempt is logged")
	for _, ev := range sink.events {
		assert.False(t, ev.Success)
		assert.Equal(t, "mock", ev.Provider)
		assert.Equal(t, "step-explain", ev.Purpose)
		assert.Contains(t, ev.ErrorMessage, "script exhausted")
	}
}

func TestWithTimeout(t *testing.T) {
	blocked := funcProvider(func(ctx context.Context, _ Prompt) (*Completion, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})

	start := time.Now()
	_, err := WithTimeout(blocked, 20*time.Millisecond).Complete(context.Background(), explainPrompt())
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), time.Second)

	_, wrapped := WithTimeout(blocked, 0).(*timeoutProvider)
	assert.False(t, wrapped)
}
