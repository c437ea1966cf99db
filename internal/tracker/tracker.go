// Package tracker remembers which PIDs have already been throttled.
package tracker

import (
	"sort"
	"sync"
)

// Set is the session-scoped record of limited PIDs. Entries are never
// removed; a PID reused by a new process stays marked.
type Set struct {
	mu       sync.Mutex
	limited  map[uint32]struct{}
	inFlight map[uint32]chan struct{}
}

// New returns an empty Set
func New() *Set {
	return &Set{}
}

func (s *Set) init() {
	if s.limited == nil {
		s.limited = make(map[uint32]struct{})
		s.inFlight = make(map[uint32]chan struct{})
	}
}

// IsLimited reports whether pid was marked
func (s *Set) IsLimited(pid uint32) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.limited[pid]
	return ok
}

// MarkLimited records pid. Marking twice is a no-op.
func (s *Set) MarkLimited(pid uint32) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.init()
	s.limited[pid] = struct{}{}
}

// Acquire claims pid for one adjustment attempt. If another caller holds
// pid, Acquire waits for it to release first. limited reports whether pid
// is already marked; release must be called exactly once either way.
func (s *Set) Acquire(pid uint32) (release func(), limited bool) {
	s.mu.Lock()
	s.init()
	for {
		wait, busy := s.inFlight[pid]
		if !busy {
			break
		}
		s.mu.Unlock()
		<-wait
		s.mu.Lock()
	}

	done := make(chan struct{})
	s.inFlight[pid] = done
	_, limited = s.limited[pid]
	s.mu.Unlock()

	var once sync.Once
	release = func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.inFlight, pid)
			s.mu.Unlock()
			close(done)
		})
	}
	return release, limited
}

// Len returns the number of marked PIDs
func (s *Set) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.limited)
}

// PIDs returns the marked PIDs in ascending order
func (s *Set) PIDs() []uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()

	pids := make([]uint32, 0, len(s.limited))
	for pid := range s.limited {
		pids = append(pids, pid)
	}
	sort.Slice(pids, func(i, j int) bool { return pids[i] < pids[j] })
	return pids
}
