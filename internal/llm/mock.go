package llm

import (
	"context"
	"encoding/json"
	"errors"
	"slices"
	"sync"
)

// MockResponse is one scripted reply.
type MockResponse struct {
	Content   json.RawMessage
	Usage     Usage
	Truncated bool
	Err       error
}

// MockProvider replays scripted replies in order and keeps every prompt it
// was sent. Once the script runs out it fails with ErrUnavailable.
type MockProvider struct {
	mu      sync.Mutex
	script  []MockResponse
	prompts []Prompt
}

func NewMockProvider(script ...MockResponse) *MockProvider {
	return &MockProvider{script: script}
}

func (m *MockProvider) Complete(_ context.Context, p Prompt) (*Completion, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.prompts = append(m.prompts, p)
	if len(m.script) == 0 {
		return nil, &Error{Kind: ErrUnavailable, Provider: "mock", Err: errors.New("script exhausted")}
	}
	r := m.script[0]
	m.script = m.script[1:]
	if r.Err != nil {
		return nil, r.Err
	}
	return &Completion{JSON: r.Content, Model: "mock", Usage: r.Usage, Truncated: r.Truncated}, nil
}

func (m *MockProvider) Model() string { return "mock" }

// Prompts returns the prompts received so far.
func (m *MockProvider) Prompts() []Prompt {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.prompts)
}

func (m *MockProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.prompts)
}
