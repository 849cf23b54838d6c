package api

import (
	"context"
	"sync"

	"github.com/diogo/chatllm/internal/models"
)

// MockClient is a scripted Complete implementation for tests
type MockClient struct {
	// Reply and Err are returned when Handler is nil
	Reply string
	Err   error

	// Handler, when set, computes the result from the received history
	Handler func(history []models.WireMessage) (string, error)

	// Started, if non-nil, receives a value when a call begins.
	// Gate, if non-nil, blocks the call until it is closed or receives.
	Started chan struct{}
	Gate    chan struct{}

	mu    sync.Mutex
	calls [][]models.WireMessage
}

// Complete records history and returns the scripted result
func (m *MockClient) Complete(ctx context.Context, history []models.WireMessage) (string, error) {
	recorded := make([]models.WireMessage, len(history))
	copy(recorded, history)

	m.mu.Lock()
	m.calls = append(m.calls, recorded)
	m.mu.Unlock()

	if m.Started != nil {
		m.Started <- struct{}{}
	}
	if m.Gate != nil {
		select {
		case <-m.Gate:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}

	if m.Handler != nil {
		return m.Handler(recorded)
	}
	return m.Reply, m.Err
}

// Calls returns the histories received so far
func (m *MockClient) Calls() [][]models.WireMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([][]models.WireMessage, len(m.calls))
	copy(out, m.calls)
	return out
}

// CallCount returns how many times Complete was invoked
func (m *MockClient) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}
