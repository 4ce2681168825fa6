package tutor

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/parsons/internal/llm"
	"github.com/abhisek/parsons/internal/proof"
)

func fiveStepPuzzle(t *testing.T) *proof.Validator {
	t.Helper()
	p := proof.Puzzle{
		ID:           "p5",
		DisplayTitle: "Five steps",
		Statement:    `a = e`,
	}
	for i := 1; i <= 5; i++ {
		id := fmt.Sprintf("s%d", i)
		p.Steps = append(p.Steps, proof.Step{ID: id, Content: fmt.Sprintf(`\text{line %d}`, i)})
		p.SolutionOrder = append(p.SolutionOrder, id)
	}
	v, err := proof.NewValidator(p)
	require.NoError(t, err)
	return v
}

func validExplanation() json.RawMessage {
	return json.RawMessage(`{"explanation":"Line 1 sets up the goal.","nudge":"What does line 1 let you assume?"}`)
}

func TestExplain(t *testing.T) {
	v := fiveStepPuzzle(t)
	order := []string{"s2", "s1"}
	res := v.Validate(order)
	require.NotEmpty(t, res.Hints)

	mock := llm.NewMockProvider(llm.MockResponse{Content: validExplanation()})
	ex, err := NewExplainer(mock, DefaultConfig()).Explain(context.Background(), v.Puzzle(), order, res)
	require.NoError(t, err)

	assert.Equal(t, "Line 1 sets up the goal.", ex.Explanation)
	assert.Equal(t, "What does line 1 let you assume?", ex.Nudge)
	assert.Equal(t, "mock", ex.Model)
	require.NotNil(t, ex.Hint)
	assert.Equal(t, res.Hints[0], *ex.Hint)

	require.Equal(t, 1, mock.CallCount())
	req := mock.Prompts()[0]
	assert.Equal(t, Purpose, req.Purpose)
	assert.Same(t, ExplanationSchema, req.Schema)
	assert.Equal(t, 400, req.MaxTokens)
	msg := req.User
	assert.Contains(t, msg, "Statement to prove: a = e")
	assert.Contains(t, msg, "1. \\text{line 2}\n2. \\text{line 1}\n")
	assert.Contains(t, msg, "Hinted line: "+res.Hints[0].Content)
}

func TestExplainDoesNotLeakUnplacedSteps(t *testing.T) {
	v := fiveStepPuzzle(t)
	order := []string{"s1", "s3"}
	res := v.Validate(order)

	mock := llm.NewMockProvider(llm.MockResponse{Content: validExplanation()})
	_, err := NewExplainer(mock, DefaultConfig()).Explain(context.Background(), v.Puzzle(), order, res)
	require.NoError(t, err)

	msg := mock.Prompts()[0].User
	// Only the first hint is sent; steps neither placed nor hinted first
	// never appear.
	for _, id := range []string{"s4", "s5"} {
		if id == res.Hints[0].StepID {
			continue
		}
		s, _ := v.Step(id)
		assert.False(t, strings.Contains(msg, s.Content), "prompt leaks %s", id)
	}
}

func TestExplainCorrectProof(t *testing.T) {
	v := fiveStepPuzzle(t)
	p := v.Puzzle()
	res := v.Validate(p.SolutionOrder)

	mock := llm.NewMockProvider()
	_, err := NewExplainer(mock, DefaultConfig()).Explain(context.Background(), p, p.SolutionOrder, res)
	require.ErrorIs(t, err, ErrNothingToExplain)
	assert.Equal(t, 0, mock.CallCount())
}

func TestExplainWithoutProvider(t *testing.T) {
	v := fiveStepPuzzle(t)
	res := v.Validate(nil)

	_, err := NewExplainer(nil, DefaultConfig()).Explain(context.Background(), v.Puzzle(), nil, res)
	require.ErrorIs(t, err, ErrUnavailable)

	var nilExplainer *Explainer
	assert.False(t, nilExplainer.Available())
}

func TestExplainProviderError(t *testing.T) {
	v := fiveStepPuzzle(t)
	order := []string{"s2"}
	res := v.Validate(order)

	rl := &llm.Error{Kind: llm.ErrRateLimit, Provider: "mock", Status: 429, RetryAfter: 2 * time.Second}
	mock := llm.NewMockProvider(llm.MockResponse{Err: rl})
	_, err := NewExplainer(mock, DefaultConfig()).Explain(context.Background(), v.Puzzle(), order, res)

	require.ErrorIs(t, err, llm.ErrRateLimit)
	var got *llm.Error
	require.ErrorAs(t, err, &got)
	assert.Equal(t, 2*time.Second, got.RetryAfter)
}

func TestExplainRateLimitOutlastsRetries(t *testing.T) {
	v := fiveStepPuzzle(t)
	order := []string{"s2"}
	res := v.Validate(order)

	limited := llm.MockResponse{Err: &llm.Error{Kind: llm.ErrRateLimit, Provider: "mock", Status: 429}}
	mock := llm.NewMockProvider(limited, limited)
	p := llm.WithRetry(mock, llm.RetryConfig{MaxAttempts: 2, InitialWait: time.Millisecond, Multiplier: 1})

	_, err := NewExplainer(p, DefaultConfig()).Explain(context.Background(), v.Puzzle(), order, res)
	require.ErrorIs(t, err, llm.ErrRateLimit)
	assert.Equal(t, 2, mock.CallCount())
}

func TestExplainRejectsOffSchemaReplies(t *testing.T) {
	v := fiveStepPuzzle(t)
	order := []string{"s2"}
	res := v.Validate(order)

	tests := []struct {
		name  string
		reply string
	}{
		{"missing nudge", `{"explanation":"Line 1 sets up the goal."}`},
		{"empty nudge", `{"explanation":"Line 1 sets up the goal.","nudge":""}`},
		{"over-long explanation", fmt.Sprintf(`{"explanation":%q,"nudge":"Why?"}`, strings.Repeat("x", maxExplanationLen+1))},
		{"over-long nudge", fmt.Sprintf(`{"explanation":"ok","nudge":%q}`, strings.Repeat("?", maxNudgeLen+1))},
		{"leaks the solution", `{"explanation":"e","nudge":"n","solution":["s1","s2","s3"]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage(tt.reply)})
			_, err := NewExplainer(mock, DefaultConfig()).Explain(context.Background(), v.Puzzle(), order, res)
			require.ErrorIs(t, err, llm.ErrInvalidOutput)
		})
	}
}

func TestExplainAcceptsRepliesAtTheCaps(t *testing.T) {
	v := fiveStepPuzzle(t)
	order := []string{"s2"}
	res := v.Validate(order)

	reply := fmt.Sprintf(`{"explanation":%q,"nudge":%q}`, strings.Repeat("x", maxExplanationLen), strings.Repeat("?", maxNudgeLen))
	mock := llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage(reply)})
	ex, err := NewExplainer(mock, DefaultConfig()).Explain(context.Background(), v.Puzzle(), order, res)
	require.NoError(t, err)
	assert.Len(t, ex.Explanation, maxExplanationLen)
}

func TestExplainMalformedResponse(t *testing.T) {
	v := fiveStepPuzzle(t)
	order := []string{"s2"}
	res := v.Validate(order)

	mock := llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage(`not json`)})
	_, err := NewExplainer(mock, DefaultConfig()).Explain(context.Background(), v.Puzzle(), order, res)
	require.ErrorIs(t, err, llm.ErrInvalidOutput)
	assert.Contains(t, err.Error(), "parse explanation response")
}

func TestBuildUserMessageEmptyOrder(t *testing.T) {
	v := fiveStepPuzzle(t)
	msg := buildUserMessage(v.Puzzle(), nil, v.Validate(nil))
	assert.Contains(t, msg, "(empty)")
	assert.NotContains(t, msg, "Hinted line")
}
