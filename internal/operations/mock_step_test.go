package operations

import (
	"context"
	"sync"
)

// mockStep is a configurable Step that records its calls
type mockStep struct {
	BaseStep

	executeFunc  func(ctx context.Context, state *RunState) error
	validateFunc func(state *RunState) error

	mu            sync.Mutex
	executeCalls  int
	validateCalls int
}

func newMockStep(id string) *mockStep {
	return &mockStep{BaseStep: NewBaseStep(id, "Mock "+id)}
}

func (m *mockStep) Validate(state *RunState) error {
	m.mu.Lock()
	m.validateCalls++
	m.mu.Unlock()

	if m.validateFunc != nil {
		return m.validateFunc(state)
	}
	return nil
}

func (m *mockStep) Execute(ctx context.Context, state *RunState) error {
	m.mu.Lock()
	m.executeCalls++
	m.mu.Unlock()

	if m.executeFunc != nil {
		return m.executeFunc(ctx, state)
	}
	return nil
}

func (m *mockStep) ExecuteCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.executeCalls
}
