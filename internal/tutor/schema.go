package tutor

import "github.com/abhisek/parsons/internal/llm"

// Length caps on the tutor's answer. A reply over either one is rejected
// rather than cut, so the student never reads half a sentence.
const (
	maxExplanationLen = 600
	maxNudgeLen       = 200
)

// ExplanationSchema defines the JSON schema for step explanations.
var ExplanationSchema = &llm.Schema{
	Name:        "step-explanation",
	Description: "Why a proof step belongs where the hint points, without giving away the rest of the proof",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"explanation": map[string]any{
				"type":        "string",
				"description": "2-4 sentences on the logical role of the hinted step",
				"minLength":   1,
				"maxLength":   maxExplanationLen,
			},
			"nudge": map[string]any{
				"type":        "string",
				"description": "One short question that points the student at the next thing to check",
				"minLength":   1,
				"maxLength":   maxNudgeLen,
			},
		},
		"required":             []any{"explanation", "nudge"},
		"additionalProperties": false,
	},
}
