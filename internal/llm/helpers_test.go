package llm

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/abhisek/parsons/internal/store"
)

// stepExplanation mirrors the tutor's output schema; the tutor package
// imports this one, so the shape is repeated here.
func stepExplanation() *Schema {
	return &Schema{
		Name:        "step-explanation",
		Description: "Why a proof step belongs where the hint points",
		Definition: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"explanation": map[string]any{"type": "string", "minLength": 1, "maxLength": 600},
				"nudge":       map[string]any{"type": "string", "minLength": 1, "maxLength": 200},
			},
			"required":             []any{"explanation", "nudge"},
			"additionalProperties": false,
		},
	}
}

const explanationJSON = `{"explanation":"Step 3 applies the hypothesis to k+1.","nudge":"What did you assume for k?"}`

func explainPrompt() Prompt {
	return Prompt{
		Purpose:   "step-explain",
		System:    "You explain proof steps.",
		User:      "Why does block ind1-3 come third?",
		Schema:    stepExplanation(),
		MaxTokens: 256,
	}
}

// stubAPI serves one canned reply and keeps the last request body.
type stubAPI struct {
	mu     sync.Mutex
	body   map[string]any
	path   string
	n      int
	status int
	header http.Header
	reply  any
}

func (s *stubAPI) start(t *testing.T) string {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		s.mu.Lock()
		s.n++
		s.path = r.URL.Path
		s.body = nil
		_ = json.Unmarshal(raw, &s.body)
		s.mu.Unlock()

		for k, v := range s.header {
			w.Header()[k] = v
		}
		w.Header().Set("Content-Type", "application/json")
		if s.status != 0 {
			w.WriteHeader(s.status)
		}
		_ = json.NewEncoder(w).Encode(s.reply)
	}))
	t.Cleanup(srv.Close)
	return srv.URL
}

func (s *stubAPI) request() map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.body
}

func (s *stubAPI) lastPath() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.path
}

func (s *stubAPI) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.n
}

type recordingSink struct {
	mu     sync.Mutex
	events []store.LLMRequestEventData
	err    error
}

func (r *recordingSink) AppendLLMRequest(_ context.Context, data store.LLMRequestEventData) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, data)
	return r.err
}

func mustJSON(t *testing.T, v any) string {
	t.Helper()
	raw, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return string(raw)
}

// funcProvider adapts a function to Provider.
type funcProvider func(ctx context.Context, p Prompt) (*Completion, error)

func (f funcProvider) Complete(ctx context.Context, p Prompt) (*Completion, error) { return f(ctx, p) }
func (funcProvider) Model() string                                                  { return "func" }
