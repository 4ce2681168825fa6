package llm

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/abhisek/parsons/internal/store"
)

// EventRecorder persists LLM calls. store.EventRepo satisfies it.
type EventRecorder interface {
	AppendLLMRequest(ctx context.Context, data store.LLMRequestEventData) error
}

type loggingProvider struct {
	inner  Provider
	name   string
	events EventRecorder
	log    *slog.Logger
}

// WithLogging records every call as an event and a log line. Either sink
// may be nil.
func WithLogging(p Provider, name string, events EventRecorder, logger *slog.Logger) Provider {
	if logger == nil {
		logger = slog.Default()
	}
	return &loggingProvider{inner: p, name: name, events: events, log: logger}
}

func (l *loggingProvider) Complete(ctx context.Context, p Prompt) (*Completion, error) {
	start := time.Now()
	out, err := l.inner.Complete(ctx, p)

	ev := store.LLMRequestEventData{
		Provider:    l.name,
		Model:       l.inner.Model(),
		Purpose:     p.purpose(),
		LatencyMs:   time.Since(start).Milliseconds(),
		Success:     err == nil,
		RequestBody: transcript(p),
	}
	if out != nil {
		if out.Model != "" {
			ev.Model = out.Model
		}
		ev.InputTokens = out.Usage.InputTokens
		ev.OutputTokens = out.Usage.OutputTokens
		ev.ResponseBody = string(out.JSON)
	}
	if err != nil {
		ev.ErrorMessage = err.Error()
	}

	level := slog.LevelDebug
	attrs := []slog.Attr{
		slog.String("provider", ev.Provider),
		slog.String("model", ev.Model),
		slog.String("purpose", ev.Purpose),
		slog.Int64("latency_ms", ev.LatencyMs),
		slog.Int("input_tokens", ev.InputTokens),
		slog.Int("output_tokens", ev.OutputTokens),
	}
	if err != nil {
		level = slog.LevelWarn
		attrs = append(attrs, slog.Any("error", err))
	}
	l.log.LogAttrs(ctx, level, "llm call", attrs...)

	if l.events != nil {
		if rerr := l.events.AppendLLMRequest(ctx, ev); rerr != nil {
			l.log.WarnContext(ctx, "record llm call", "error", rerr)
		}
	}
	return out, err
}

func (l *loggingProvider) Model() string { return l.inner.Model() }

// transcript renders p for the event log.
func transcript(p Prompt) string {
	var b strings.Builder
	if p.System != "" {
		b.WriteString("--- system ---\n" + p.System + "\n")
	}
	b.WriteString("--- user ---\n" + p.User + "\n")
	if p.Schema != nil {
		if def, err := json.Marshal(p.Schema.Definition); err == nil {
			b.WriteString("--- schema " + p.Schema.Name + " ---\n" + string(def) + "\n")
		}
	}
	return b.String()
}
