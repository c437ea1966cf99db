// Package events carries the notifications the limiter raises for its front end.
package events

import "sync"

// Event names
const (
	// ProcessUpdated is raised after a monitor cycle limited at least one new process
	ProcessUpdated = "process-updated"
	// ScanCompleted is raised at the end of every monitor cycle
	ScanCompleted = "scan-completed"
)

// Emitter publishes named notifications without payload
type Emitter interface {
	Emit(name string)
}

// Listener receives an emitted event name
type Listener func(name string)

// Bus fans events out to subscribers. Each listener runs in its own goroutine.
type Bus struct {
	mu        sync.RWMutex
	listeners map[int]Listener
	nextID    int
}

// NewBus creates a bus with no subscribers
func NewBus() *Bus {
	return &Bus{listeners: make(map[int]Listener)}
}

// Subscribe registers listener and returns a function that removes it
func (b *Bus) Subscribe(listener Listener) (unsubscribe func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	b.listeners[id] = listener

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.listeners, id)
	}
}

// Emit notifies every current subscriber
func (b *Bus) Emit(name string) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, listener := range b.listeners {
		go listener(name)
	}
}

// Discard is an Emitter that drops every event
var Discard Emitter = discard{}

type discard struct{}

func (discard) Emit(string) {}
