package llm

import (
	"context"
	"errors"
	"sync"
)

var errScriptExhausted = errors.New("mock script exhausted")

// MockResponse is one scripted reply. A non-nil Err is returned instead of
// a response.
type MockResponse struct {
	Text  string
	Usage Usage
	Err   error
}

// MockProvider replays a script of responses in order and records every
// request it receives. Once the script runs out, each call fails with
// ErrProviderUnavailable.
type MockProvider struct {
	mu     sync.Mutex
	script []MockResponse
	Calls  []Request
}

func NewMockProvider(script ...MockResponse) *MockProvider {
	return &MockProvider{script: script}
}

func (m *MockProvider) Generate(_ context.Context, req Request) (*Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = append(m.Calls, req)
	if len(m.script) == 0 {
		return nil, &ErrProviderUnavailable{Err: errScriptExhausted}
	}
	next := m.script[0]
	m.script = m.script[1:]

	if next.Err != nil {
		return nil, next.Err
	}
	return &Response{Text: next.Text, Usage: next.Usage, Model: m.ModelID(), StopReason: "end"}, nil
}

func (m *MockProvider) ModelID() string { return "mock" }

func (m *MockProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

// Prompts lists the first user message of each recorded call.
func (m *MockProvider) Prompts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	prompts := make([]string, 0, len(m.Calls))
	for _, call := range m.Calls {
		for _, msg := range call.Messages {
			if msg.Role == RoleUser {
				prompts = append(prompts, msg.Content)
				break
			}
		}
	}
	return prompts
}
