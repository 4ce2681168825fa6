package llm

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithLogging_RecordsSuccess(t *testing.T) {
	mock := NewMockProvider(MockResponse{
		Content: []byte(explanationJSON),
		Usage:   Usage{InputTokens: 120, OutputTokens: 30},
	})
	sink := &recordingSink{}
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))

	_, err := WithLogging(mock, "mock", sink, logger).Complete(context.Background(), explainPrompt())
	require.NoError(t, err)

	require.Len(t, sink.events, 1)
	ev := sink.events[0]
	assert.Equal(t, "step-explain", ev.Purpose)
	assert.Equal(t, "mock", ev.Provider)
	assert.Equal(t, "mock", ev.Model)
	assert.True(t, ev.Success)
	assert.Equal(t, 120, ev.InputTokens)
	assert.Equal(t, 30, ev.OutputTokens)
	assert.Equal(t, explanationJSON, ev.ResponseBody)
	assert.Contains(t, ev.RequestBody, "--- system ---\nYou explain proof steps.")
	assert.Contains(t, ev.RequestBody, "--- user ---\nWhy does block ind1-3 come third?")
	assert.Contains(t, ev.RequestBody, "--- schema step-explanation ---")

	assert.Contains(t, logs.String(), "level=DEBUG")
	assert.Contains(t, logs.String(), "purpose=step-explain")
}

func TestWithLogging_RecordsFailure(t *testing.T) {
	mock := NewMockProvider(failWith(ErrRateLimit))
	sink := &recordingSink{}
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))

	_, err := WithLogging(mock, "mock", sink, logger).Complete(context.Background(), explainPrompt())
	assert.ErrorIs(t, err, ErrRateLimit)

	require.Len(t, sink.events, 1)
	assert.False(t, sink.events[0].Success)
	assert.Contains(t, sink.events[0].ErrorMessage, "rate limited")
	assert.Contains(t, logs.String(), "level=WARN")
}

func TestWithLogging_UnlabelledPurpose(t *testing.T) {
	sink := &recordingSink{}
	p := WithLogging(NewMockProvider(okReply()), "mock", sink, discard())

	_, err := p.Complete(context.Background(), Prompt{User: "hi"})
	require.NoError(t, err)
	assert.Equal(t, "unknown", sink.events[0].Purpose)
}

func TestWithLogging_SinkErrorDoesNotFailCall(t *testing.T) {
	sink := &recordingSink{err: errors.New("disk full")}
	var logs bytes.Buffer
	p := WithLogging(NewMockProvider(okReply()), "mock", sink, slog.New(slog.NewTextHandler(&logs, nil)))

	_, err := p.Complete(context.Background(), explainPrompt())
	require.NoError(t, err)
	assert.Contains(t, logs.String(), "record llm call")
}

func TestWithLogging_NilSinks(t *testing.T) {
	p := WithLogging(NewMockProvider(okReply()), "mock", nil, nil)
	_, err := p.Complete(context.Background(), explainPrompt())
	assert.NoError(t, err)
}
