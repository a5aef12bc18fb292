package llm

import (
	"context"
	"sync"
)

// MockClient implements Client for tests. Responses are consumed in order;
// the last one repeats once the queue drains.
type MockClient struct {
	mu        sync.Mutex
	Responses []string
	Err       error
	calls     []CompletionRequest
}

// Complete returns the next queued response.
func (m *MockClient) Complete(_ context.Context, req CompletionRequest) (*CompletionResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, req)
	if m.Err != nil {
		return nil, m.Err
	}
	content := ""
	if len(m.Responses) > 0 {
		content = m.Responses[0]
		if len(m.Responses) > 1 {
			m.Responses = m.Responses[1:]
		}
	}
	return &CompletionResponse{Content: content}, nil
}

// Model returns a fixed test model name.
func (m *MockClient) Model() string {
	return "mock-model"
}

// Calls returns a copy of every request seen so far.
func (m *MockClient) Calls() []CompletionRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]CompletionRequest, len(m.calls))
	copy(out, m.calls)
	return out
}
