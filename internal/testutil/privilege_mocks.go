package testutil

import (
	"errors"
	"sync"

	"github.com/QwQ3213/ACELimiter/internal/privilege"
)

// MockTokenAPI implements privilege.TokenAPI for testing
type MockTokenAPI struct {
	// Behavior controls
	ShouldFailOpen   bool
	ShouldFailLookup bool
	ShouldFailAdjust bool

	// Tracking fields
	Operations []string
	OpenCount  int
	CloseCount int
	mu         sync.Mutex
}

// NewMockTokenAPI creates a token API mock that grants everything
func NewMockTokenAPI() *MockTokenAPI {
	return &MockTokenAPI{Operations: make([]string, 0)}
}

// OpenCurrentToken mocks opening the process token
func (m *MockTokenAPI) OpenCurrentToken() (privilege.Token, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Operations = append(m.Operations, "open_token")
	if m.ShouldFailOpen {
		return 0, errors.New("mock token open failure")
	}
	m.OpenCount++
	return privilege.Token(42), nil
}

// LookupPrivilege mocks the privilege lookup
func (m *MockTokenAPI) LookupPrivilege(name string) (privilege.LUID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Operations = append(m.Operations, "lookup:"+name)
	if m.ShouldFailLookup {
		return privilege.LUID{}, errors.New("mock lookup failure")
	}
	return privilege.LUID{LowPart: 20}, nil
}

// EnablePrivilege mocks adjusting the token
func (m *MockTokenAPI) EnablePrivilege(token privilege.Token, luid privilege.LUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Operations = append(m.Operations, "adjust")
	if m.ShouldFailAdjust {
		return errors.New("mock not all privileges assigned")
	}
	return nil
}

// CloseToken mocks releasing the token
func (m *MockTokenAPI) CloseToken(token privilege.Token) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Operations = append(m.Operations, "close_token")
	m.CloseCount++
	return nil
}

// MockElevator implements privilege.Elevator with a fixed result
type MockElevator struct {
	Result privilege.Result
	calls  int
	mu     sync.Mutex
}

// NewMockElevator creates an elevator that always reports status
func NewMockElevator(status privilege.Status) *MockElevator {
	return &MockElevator{Result: privilege.Result{Status: status}}
}

// EnableDebugPrivilege returns the configured result
func (m *MockElevator) EnableDebugPrivilege() privilege.Result {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls++
	return m.Result
}

// Calls returns how many times elevation was requested
func (m *MockElevator) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.calls
}
