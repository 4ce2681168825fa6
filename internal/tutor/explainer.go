// Package tutor asks an LLM to explain the first hint of a validation
// result.
package tutor

import (
	"context"
	"errors"
	"fmt"

	"github.com/abhisek/parsons/internal/llm"
	"github.com/abhisek/parsons/internal/proof"
)

var (
	// ErrUnavailable is returned when no LLM provider is configured.
	ErrUnavailable = errors.New("tutor unavailable: no LLM provider configured")

	// ErrNothingToExplain is returned for a correct proof.
	ErrNothingToExplain = errors.New("nothing to explain: the proof is already correct")
)

// Purpose tags tutor calls in the LLM event log.
const Purpose = "step-explain"

// Config holds explanation generation settings.
type Config struct {
	MaxTokens   int
	Temperature float64
}

// DefaultConfig returns sensible defaults for explanations.
func DefaultConfig() Config {
	return Config{
		MaxTokens:   400,
		Temperature: 0.3,
	}
}

// Explanation is the tutor's answer for one validation result.
type Explanation struct {
	Explanation string      `json:"explanation"`
	Nudge       string      `json:"nudge"`
	Hint        *proof.Hint `json:"hint,omitempty"`
	Model       string      `json:"model"`
}

// Explainer generates explanations. The zero value and an Explainer built
// with a nil provider both report ErrUnavailable.
type Explainer struct {
	provider llm.Provider
	cfg      Config
}

// NewExplainer creates an Explainer. provider may be nil.
func NewExplainer(provider llm.Provider, cfg Config) *Explainer {
	return &Explainer{provider: provider, cfg: cfg}
}

// Available reports whether a provider is configured.
func (e *Explainer) Available() bool {
	return e != nil && e.provider != nil
}

type explanationOutput struct {
	Explanation string `json:"explanation"`
	Nudge       string `json:"nudge"`
}

// Explain describes why the first hint of res matters for the student's
// order. The prompt carries the student's arrangement and the hinted
// step, never the solution order.
func (e *Explainer) Explain(ctx context.Context, p proof.Puzzle, order []string, res proof.ValidationResult) (*Explanation, error) {
	if !e.Available() {
		return nil, ErrUnavailable
	}
	if res.IsCorrect {
		return nil, ErrNothingToExplain
	}

	resp, err := e.provider.Complete(ctx, llm.Prompt{
		Purpose:     Purpose,
		System:      systemPrompt,
		User:        buildUserMessage(p, order, res),
		Schema:      ExplanationSchema,
		MaxTokens:   e.cfg.MaxTokens,
		Temperature: e.cfg.Temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("explain puzzle %s: %w", p.ID, err)
	}

	var out explanationOutput
	if err := ExplanationSchema.Decode(resp.JSON, &out); err != nil {
		return nil, fmt.Errorf("parse explanation response: %w", err)
	}

	ex := &Explanation{
		Explanation: out.Explanation,
		Nudge:       out.Nudge,
		Model:       resp.Model,
	}
	if len(res.Hints) > 0 {
		h := res.Hints[0]
		ex.Hint = &h
	}
	return ex, nil
}
