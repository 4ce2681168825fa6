// Package llm sends single-turn prompts to a hosted model and returns
// JSON checked against a schema.
package llm

import (
	"context"
	"encoding/json"
)

// Provider completes one prompt. Implementations are safe for concurrent
// use.
type Provider interface {
	Complete(ctx context.Context, p Prompt) (*Completion, error)

	// Model is the model id requests are sent to.
	Model() string
}

// Prompt is one system + user exchange.
type Prompt struct {
	// Purpose labels the call in the event log, e.g. "step-explain".
	Purpose string

	System string
	User   string

	// Schema asks the provider for JSON in this shape. NewProvider checks
	// every completion against it.
	Schema *Schema

	MaxTokens   int
	Temperature float64
}

// Completion is a model's answer to a Prompt.
type Completion struct {
	JSON  json.RawMessage
	Model string
	Usage Usage

	// Truncated is set when generation stopped at MaxTokens.
	Truncated bool
}

// Usage counts tokens for one call.
type Usage struct {
	InputTokens  int
	OutputTokens int
}

func (p Prompt) purpose() string {
	if p.Purpose == "" {
		return "unknown"
	}
	return p.Purpose
}
