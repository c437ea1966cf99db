// Package monitor runs the periodic throttling loop.
package monitor

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/QwQ3213/ACELimiter/internal/logging"
)

// DefaultInterval is used when Start is given a non-positive interval
const DefaultInterval = 30 * time.Second

// CycleFunc performs one scan-and-limit pass. It is never interrupted
// mid-cycle; ctx only tells it the loop is shutting down.
type CycleFunc func(ctx context.Context)

// Monitor owns the single background worker that calls a CycleFunc on a fixed period
type Monitor struct {
	cycle  CycleFunc
	logger *logging.Logger

	running atomic.Bool
	cycles  atomic.Uint64

	mu       sync.Mutex
	cancel   context.CancelFunc
	interval time.Duration
	wg       sync.WaitGroup
}

// NewMonitor creates a stopped monitor
func NewMonitor(cycle CycleFunc, logger *logging.Logger) *Monitor {
	if logger == nil {
		logger = logging.DefaultLogger
	}
	if logger == nil {
		logger = logging.NewLogger("[monitor]", false)
	}
	return &Monitor{
		cycle:  cycle,
		logger: logger,
	}
}

// Start launches the worker. It returns false without side effects when a
// worker is already active.
func (m *Monitor) Start(interval time.Duration) bool {
	if interval <= 0 {
		interval = DefaultInterval
	}

	// running and cancel change together under mu
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.running.CompareAndSwap(false, true) {
		m.logger.Debug("Monitor already running, ignoring start")
		return false
	}

	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	m.interval = interval

	m.logger.Infof("Starting monitor, interval %v", interval)

	m.wg.Add(1)
	go m.run(ctx, interval)

	return true
}

// Stop requests the worker to exit after its current cycle. It is idempotent
// and always returns true.
func (m *Monitor) Stop() bool {
	m.mu.Lock()
	cancel := m.cancel
	m.cancel = nil
	m.mu.Unlock()

	if cancel != nil {
		m.logger.Info("Stopping monitor")
		cancel()
	}
	return true
}

// Running reports whether a worker is active
func (m *Monitor) Running() bool {
	return m.running.Load()
}

// Interval returns the period of the current or most recent run
func (m *Monitor) Interval() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.interval
}

// Cycles returns how many cycles have completed since the monitor was created
func (m *Monitor) Cycles() uint64 {
	return m.cycles.Load()
}

// Wait blocks until the worker has exited
func (m *Monitor) Wait() {
	m.wg.Wait()
}

func (m *Monitor) run(ctx context.Context, interval time.Duration) {
	defer m.wg.Done()
	defer m.running.Store(false)

	for {
		if ctx.Err() != nil {
			m.logger.Debug("Monitor stopped")
			return
		}

		m.cycle(ctx)
		m.cycles.Add(1)

		if !sleep(ctx, interval) {
			m.logger.Debug("Monitor stopped")
			return
		}
	}
}

// sleep waits for d and reports false if ctx was cancelled first
func sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
