package llm

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchema_Check(t *testing.T) {
	long := strings.Repeat("because ", 100)
	tests := []struct {
		name    string
		raw     string
		wantErr bool
	}{
		{"explanation and nudge", explanationJSON, false},
		{"missing nudge", `{"explanation":"Step 3 applies the hypothesis."}`, true},
		{"empty nudge", `{"explanation":"Step 3 applies the hypothesis.","nudge":""}`, true},
		{"over-long explanation", `{"explanation":"` + long + `","nudge":"Why?"}`, true},
		{"extra field", `{"explanation":"e","nudge":"n","solution":["a","b"]}`, true},
		{"nudge is not a string", `{"explanation":"e","nudge":3}`, true},
		{"prose instead of JSON", `Step 3 applies the hypothesis.`, true},
		{"empty", ``, true},
	}
	s := stepExplanation()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := s.Check([]byte(tt.raw))
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidOutput)
		})
	}
}

func TestSchema_Decode(t *testing.T) {
	var out struct {
		Explanation string `json:"explanation"`
		Nudge       string `json:"nudge"`
	}
	require.NoError(t, stepExplanation().Decode([]byte(explanationJSON), &out))
	assert.Equal(t, "What did you assume for k?", out.Nudge)

	err := stepExplanation().Decode([]byte(`{"explanation":"only"}`), &out)
	assert.ErrorIs(t, err, ErrInvalidOutput)
}

func TestSchema_BrokenDefinition(t *testing.T) {
	s := &Schema{Name: "broken", Definition: map[string]any{"type": 12}}
	err := s.Check([]byte(`{}`))
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidOutput)
}

func TestCheckedProvider(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Content: []byte(explanationJSON)},
		MockResponse{Content: []byte(`{"explanation":"cut off`), Truncated: true},
		MockResponse{Content: []byte(`{"explanation":"no nudge"}`)},
	)
	p := checkedProvider{inner: mock}

	out, err := p.Complete(context.Background(), explainPrompt())
	require.NoError(t, err)
	assert.JSONEq(t, explanationJSON, string(out.JSON))

	out, err = p.Complete(context.Background(), explainPrompt())
	assert.ErrorIs(t, err, ErrTruncated)
	require.NotNil(t, out, "the rejected completion is kept for the event log")

	_, err = p.Complete(context.Background(), explainPrompt())
	assert.ErrorIs(t, err, ErrInvalidOutput)
	assert.NotErrorIs(t, err, ErrTruncated)
}

func TestCheckedProvider_NoSchemaPassesThrough(t *testing.T) {
	p := checkedProvider{inner: NewMockProvider(MockResponse{Content: []byte(`plain text`)})}
	prompt := explainPrompt()
	prompt.Schema = nil
	out, err := p.Complete(context.Background(), prompt)
	require.NoError(t, err)
	assert.Equal(t, "plain text", string(out.JSON))
}

func TestWithoutLengthCaps(t *testing.T) {
	def := stepExplanation().Definition
	got := withoutLengthCaps(def)

	props := got["properties"].(map[string]any)
	assert.NotContains(t, props["explanation"], "maxLength")
	assert.NotContains(t, props["nudge"], "minLength")
	assert.Equal(t, "string", props["nudge"].(map[string]any)["type"])
	assert.Equal(t, false, got["additionalProperties"])

	// The original keeps its caps for checking replies.
	assert.Contains(t, def["properties"].(map[string]any)["explanation"], "maxLength")
}
