package testutil

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/QwQ3213/ACELimiter/internal/process"
)

// Errors returned by MockProcessAPI
var (
	ErrMockAccessDenied = errors.New("mock access denied")
	ErrMockNoProcess    = errors.New("mock process not found")
	ErrMockEnumeration  = errors.New("mock enumeration failure")
	ErrMockBadHandle    = errors.New("mock invalid handle")
)

// MockProcessAPI implements process.API over an in-memory process table
type MockProcessAPI struct {
	// Behavior controls
	CPUs            int
	EnumError       error
	ImagePathFails  map[uint32]bool
	ModuleNameFails map[uint32]bool
	DeniedAccess    map[uint32]map[process.Access]bool
	PriorityErrors  map[uint32]error
	AffinityErrors  map[uint32]error
	PriorityDelay   time.Duration

	// Tracking fields
	OpenedAccess  []process.Access
	PriorityCalls map[uint32]int
	AffinityCalls map[uint32]int
	PriorityClass map[uint32]uint32
	AffinityMasks map[uint32]uintptr
	EnumCalls     int
	handles       map[process.Handle]uint32
	closes        map[process.Handle]int
	nextHandle    process.Handle
	processes     map[uint32]string
	order         []uint32
	mu            sync.Mutex
}

// NewMockProcessAPI creates an empty mock with the given CPU count
func NewMockProcessAPI(cpus int) *MockProcessAPI {
	return &MockProcessAPI{
		CPUs:            cpus,
		ImagePathFails:  make(map[uint32]bool),
		ModuleNameFails: make(map[uint32]bool),
		DeniedAccess:    make(map[uint32]map[process.Access]bool),
		PriorityErrors:  make(map[uint32]error),
		AffinityErrors:  make(map[uint32]error),
		PriorityCalls:   make(map[uint32]int),
		AffinityCalls:   make(map[uint32]int),
		PriorityClass:   make(map[uint32]uint32),
		AffinityMasks:   make(map[uint32]uintptr),
		handles:         make(map[process.Handle]uint32),
		closes:          make(map[process.Handle]int),
		nextHandle:      100,
		processes:       make(map[uint32]string),
	}
}

// AddProcess registers a running process with its full image path
func (m *MockProcessAPI) AddProcess(pid uint32, imagePath string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.processes[pid]; !exists {
		m.order = append(m.order, pid)
	}
	m.processes[pid] = imagePath
}

// ListPID adds pid to the enumeration output without a process behind it,
// as happens when a process exits between enumeration and open
func (m *MockProcessAPI) ListPID(pid uint32) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.order = append(m.order, pid)
}

// DenyAccess makes OpenProcess fail for pid with the given access set
func (m *MockProcessAPI) DenyAccess(pid uint32, access process.Access) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.DeniedAccess[pid] == nil {
		m.DeniedAccess[pid] = make(map[process.Access]bool)
	}
	m.DeniedAccess[pid][access] = true
}

// SetPriorityError makes SetPriorityClass fail for pid (nil clears it)
func (m *MockProcessAPI) SetPriorityError(pid uint32, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err == nil {
		delete(m.PriorityErrors, pid)
		return
	}
	m.PriorityErrors[pid] = err
}

// SetAffinityError makes SetAffinityMask fail for pid (nil clears it)
func (m *MockProcessAPI) SetAffinityError(pid uint32, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err == nil {
		delete(m.AffinityErrors, pid)
		return
	}
	m.AffinityErrors[pid] = err
}

// EnumProcesses mocks bulk PID enumeration
func (m *MockProcessAPI) EnumProcesses(pids []uint32) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.EnumCalls++
	if m.EnumError != nil {
		return 0, m.EnumError
	}
	return copy(pids, m.order), nil
}

// OpenProcess mocks opening a process handle
func (m *MockProcessAPI) OpenProcess(access process.Access, pid uint32) (process.Handle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.processes[pid]; !exists {
		return 0, ErrMockNoProcess
	}
	if m.DeniedAccess[pid][access] {
		return 0, ErrMockAccessDenied
	}

	m.nextHandle++
	h := m.nextHandle
	m.handles[h] = pid
	m.OpenedAccess = append(m.OpenedAccess, access)
	return h, nil
}

// CloseHandle mocks releasing a handle and counts every release
func (m *MockProcessAPI) CloseHandle(h process.Handle) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.handles[h]; !exists {
		return ErrMockBadHandle
	}
	m.closes[h]++
	return nil
}

func (m *MockProcessAPI) pidFor(h process.Handle) (uint32, error) {
	pid, exists := m.handles[h]
	if !exists {
		return 0, ErrMockBadHandle
	}
	return pid, nil
}

// QueryImagePath mocks reading the full image path
func (m *MockProcessAPI) QueryImagePath(h process.Handle) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	pid, err := m.pidFor(h)
	if err != nil {
		return "", err
	}
	if m.ImagePathFails[pid] {
		return "", ErrMockAccessDenied
	}
	return m.processes[pid], nil
}

// ModuleBaseName mocks reading the main module name
func (m *MockProcessAPI) ModuleBaseName(h process.Handle) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	pid, err := m.pidFor(h)
	if err != nil {
		return "", err
	}
	if m.ModuleNameFails[pid] {
		return "", ErrMockAccessDenied
	}
	path := m.processes[pid]
	return path[strings.LastIndex(path, `\`)+1:], nil
}

// SetPriorityClass mocks the priority change
func (m *MockProcessAPI) SetPriorityClass(h process.Handle, class uint32) error {
	m.mu.Lock()
	pid, err := m.pidFor(h)
	if err != nil {
		m.mu.Unlock()
		return err
	}
	m.PriorityCalls[pid]++
	delay := m.PriorityDelay
	m.mu.Unlock()

	if delay > 0 {
		time.Sleep(delay)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.PriorityErrors[pid]; err != nil {
		return err
	}
	m.PriorityClass[pid] = class
	return nil
}

// SetAffinityMask mocks the affinity change
func (m *MockProcessAPI) SetAffinityMask(h process.Handle, mask uintptr) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	pid, err := m.pidFor(h)
	if err != nil {
		return err
	}
	m.AffinityCalls[pid]++
	if err := m.AffinityErrors[pid]; err != nil {
		return err
	}
	m.AffinityMasks[pid] = mask
	return nil
}

// CPUCount returns the configured CPU count
func (m *MockProcessAPI) CPUCount() int {
	return m.CPUs
}

// AdjustCount returns how many priority changes were attempted on pid
func (m *MockProcessAPI) AdjustCount(pid uint32) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.PriorityCalls[pid]
}

// HandlesOpened returns how many handles were handed out
func (m *MockProcessAPI) HandlesOpened() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.handles)
}

// VerifyHandlesReleased returns an error unless every opened handle was closed exactly once
func (m *MockProcessAPI) VerifyHandlesReleased() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for h, pid := range m.handles {
		if n := m.closes[h]; n != 1 {
			return fmt.Errorf("handle %d for PID %d closed %d times", h, pid, n)
		}
	}
	return nil
}
