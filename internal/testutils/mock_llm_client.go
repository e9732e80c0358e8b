// Package testutils provides deterministic test doubles for the
// verification pipeline: a pattern-matching mock LLM client and
// scripted agent stubs with call accounting.
package testutils

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/ahrav/codelens/internal/ports"
)

var _ ports.LLMClient = (*MockLLMClient)(nil)

// MockLLMClient implements the LLMClient interface with deterministic
// responses for consistent testing.
// Responses are matched against prompts by substring, so a test can
// script distinct replies for the critic check, the writer draft, and
// the regeneration request within one scenario.
type MockLLMClient struct {
	mu sync.Mutex

	// model is the mock model identifier.
	model string
	// responses are tried in registration order; the first whose
	// pattern appears in the prompt wins.
	responses []MockResponse
	// failWith, when set, makes every Generate call fail.
	failWith error
	// prompts records every prompt received, in call order.
	prompts []string
}

// MockResponse defines a pre-configured response pattern for the mock
// client.
type MockResponse struct {
	// Pattern is matched against prompts by substring.
	Pattern string
	// Response is the text returned for matching prompts.
	Response string
}

// NewMockLLMClient creates a MockLLMClient with no scripted responses.
// Unmatched prompts receive a generic acknowledgement so components
// that tolerate free-form replies still make progress.
func NewMockLLMClient(model string) *MockLLMClient {
	return &MockLLMClient{model: model}
}

// AddResponse registers a response for prompts containing the pattern.
func (m *MockLLMClient) AddResponse(r MockResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = append(m.responses, r)
}

// FailWith makes every subsequent Generate call return the given error.
// Pass nil to restore normal operation.
func (m *MockLLMClient) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failWith = err
}

// Generate returns the first scripted response whose pattern appears in
// the prompt.
func (m *MockLLMClient) Generate(ctx context.Context, prompt string, options map[string]any) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.prompts = append(m.prompts, prompt)
	if m.failWith != nil {
		return "", m.failWith
	}
	for _, r := range m.responses {
		if strings.Contains(prompt, r.Pattern) {
			return r.Response, nil
		}
	}
	return "mock response", nil
}

// EstimateTokens approximates tokens as one per four characters.
func (m *MockLLMClient) EstimateTokens(text string) (int, error) {
	return len(text)/4 + 1, nil
}

// Model returns the mock model identifier.
func (m *MockLLMClient) Model() string {
	if m.model == "" {
		return "mock-model"
	}
	return m.model
}

// CallCount returns how many Generate calls the mock has received.
func (m *MockLLMClient) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.prompts)
}

// Prompts returns a copy of every prompt received, in call order.
func (m *MockLLMClient) Prompts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.prompts))
	copy(out, m.prompts)
	return out
}

// LastPrompt returns the most recent prompt, or an error when no call
// has been made yet.
func (m *MockLLMClient) LastPrompt() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.prompts) == 0 {
		return "", fmt.Errorf("mock llm client: no calls recorded")
	}
	return m.prompts[len(m.prompts)-1], nil
}
