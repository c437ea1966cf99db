package testutil

import (
	"sync"
	"time"
)

// RecordingEmitter implements events.Emitter and keeps every emitted name
type RecordingEmitter struct {
	names []string
	mu    sync.Mutex
}

// NewRecordingEmitter creates an empty recorder
func NewRecordingEmitter() *RecordingEmitter {
	return &RecordingEmitter{}
}

// Emit records name
func (r *RecordingEmitter) Emit(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.names = append(r.names, name)
}

// Events returns a copy of the emitted names in order
func (r *RecordingEmitter) Events() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

// Count returns how many times name was emitted
func (r *RecordingEmitter) Count(name string) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for _, emitted := range r.names {
		if emitted == name {
			n++
		}
	}
	return n
}

// WaitFor polls until name was emitted at least n times or timeout elapses
func (r *RecordingEmitter) WaitFor(name string, n int, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if r.Count(name) >= n {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return r.Count(name) >= n
}
