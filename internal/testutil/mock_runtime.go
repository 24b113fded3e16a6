// Package testutil provides testing utilities for the launcher.
package testutil

import (
	"sync"
)

// MockRuntime is a test implementation of an embedded runtime.
// It allows tests to drive the launch sequence and the forwarding listener
// without loading a JVM.
type MockRuntime struct {
	// Configurable errors for testing error paths
	MainErr     error
	DispatchErr error
	DestroyErr  error

	// MainBlock, when set, makes RunMain wait until it is closed.
	MainBlock chan struct{}
	// OnDispatch, when set, is called after every recorded dispatch.
	OnDispatch func(DispatchRecord)

	// Call tracking
	mu         sync.RWMutex
	destroyed  bool
	MainCalls  [][]string
	Dispatches []DispatchRecord
}

// DispatchRecord tracks a forwarded command line for verification.
type DispatchRecord struct {
	WorkDir     string
	CommandLine string
}

// NewMockRuntime creates a mock runtime whose main returns immediately.
func NewMockRuntime() *MockRuntime {
	return &MockRuntime{}
}

// RunMain records the arguments and returns MainErr.
func (m *MockRuntime) RunMain(args []string) error {
	m.mu.Lock()
	recorded := make([]string, len(args))
	copy(recorded, args)
	m.MainCalls = append(m.MainCalls, recorded)
	block := m.MainBlock
	m.mu.Unlock()

	if block != nil {
		<-block
	}

	return m.MainErr
}

// Dispatch records a forwarded command line and returns DispatchErr.
func (m *MockRuntime) Dispatch(workDir, commandLine string) error {
	rec := DispatchRecord{WorkDir: workDir, CommandLine: commandLine}

	m.mu.Lock()
	m.Dispatches = append(m.Dispatches, rec)
	hook := m.OnDispatch
	err := m.DispatchErr
	m.mu.Unlock()

	if hook != nil {
		hook(rec)
	}

	return err
}

// Destroy marks the runtime destroyed and returns DestroyErr.
func (m *MockRuntime) Destroy() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.destroyed = true

	return m.DestroyErr
}

// IsDestroyed returns whether Destroy was called.
func (m *MockRuntime) IsDestroyed() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.destroyed
}

// GetMainCalls returns all recorded main invocations.
func (m *MockRuntime) GetMainCalls() [][]string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	calls := make([][]string, len(m.MainCalls))
	copy(calls, m.MainCalls)

	return calls
}

// GetDispatches returns all recorded dispatches.
func (m *MockRuntime) GetDispatches() []DispatchRecord {
	m.mu.RLock()
	defer m.mu.RUnlock()

	records := make([]DispatchRecord, len(m.Dispatches))
	copy(records, m.Dispatches)

	return records
}

// Reset clears all recorded calls.
func (m *MockRuntime) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.MainCalls = nil
	m.Dispatches = nil
	m.destroyed = false
}
