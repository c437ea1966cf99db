// Package limiter ties enumeration, adjustment and the monitor loop into the
// operations exposed to the command line and the TUI.
package limiter

import (
	"context"
	"sync"
	"time"

	"github.com/QwQ3213/ACELimiter/internal/events"
	"github.com/QwQ3213/ACELimiter/internal/logging"
	"github.com/QwQ3213/ACELimiter/internal/monitor"
	"github.com/QwQ3213/ACELimiter/internal/privilege"
	"github.com/QwQ3213/ACELimiter/internal/process"
	"github.com/QwQ3213/ACELimiter/internal/tracker"
)

// SystemInfo describes the CPU layout used for pinning
type SystemInfo struct {
	CPUCount      int `json:"cpu_count"`
	LastCoreIndex int `json:"last_core_index"`
}

// Options holds the optional collaborators of a Service
type Options struct {
	Logger  *logging.Logger
	Journal *logging.Journal
	Emitter events.Emitter
	// Now replaces time.Now for scan timestamps
	Now func() time.Time
}

// Service owns the limited-PID set, the last scan time and the monitor loop
type Service struct {
	api        process.API
	enumerator *process.Enumerator
	adjuster   *process.Adjuster
	elevator   privilege.Elevator
	limited    *tracker.Set
	monitor    *monitor.Monitor
	emitter    events.Emitter
	journal    *logging.Journal
	logger     *logging.Logger
	now        func() time.Time

	scanMu   sync.Mutex
	lastScan time.Time
	scanned  bool
	records  []process.Record

	privMu   sync.Mutex
	privLast privilege.Status
	privSeen bool
}

// New creates a Service over api. elevator is asked for the debug right
// before every scan and limit.
func New(api process.API, elevator privilege.Elevator, opts Options) *Service {
	logger := opts.Logger
	if logger == nil {
		logger = logging.DefaultLogger
	}
	if logger == nil {
		logger = logging.NewLogger("[acelimiter]", false)
	}
	emitter := opts.Emitter
	if emitter == nil {
		emitter = events.Discard
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	s := &Service{
		api:        api,
		enumerator: process.NewEnumerator(api, logger.Named("[enum]")),
		adjuster:   process.NewAdjuster(api, logger.Named("[adjust]")),
		elevator:   elevator,
		limited:    tracker.New(),
		emitter:    emitter,
		journal:    opts.Journal,
		logger:     logger,
		now:        now,
	}
	s.monitor = monitor.NewMonitor(s.Cycle, logger.Named("[monitor]"))
	return s
}

// NewSystemService creates a Service backed by the operating system
func NewSystemService(opts Options) *Service {
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewLogger("[acelimiter]", false)
		opts.Logger = logger
	}
	return New(process.NewSystemAPI(), privilege.NewPrivilegeManager(logger.Named("[privilege]")), opts)
}

// ScanProcesses lists the running target processes. PIDs limited earlier in
// the session are reported as adjusted without touching them again.
func (s *Service) ScanProcesses() []process.Record {
	s.elevate()
	s.recordScan()

	records := s.enumerator.Scan()
	for i := range records {
		if s.limited.IsLimited(records[i].PID) {
			records[i].Adjusted = true
		}
	}
	if records == nil {
		records = []process.Record{}
	}
	s.storeRecords(records)
	return records
}

// LimitProcess throttles pid unless it was already throttled this session
func (s *Service) LimitProcess(pid uint32) process.Record {
	s.elevate()
	record, _ := s.limit(pid, "")
	return record
}

// LimitAll throttles every running target process
func (s *Service) LimitAll() []process.Record {
	s.elevate()

	candidates := s.enumerator.Scan()
	results := make([]process.Record, 0, len(candidates))
	for _, candidate := range candidates {
		record, _ := s.limit(candidate.PID, candidate.Name)
		results = append(results, record)
	}
	s.storeRecords(results)
	return results
}

// limit runs one guarded adjustment. applied is true only when this call
// performed a successful adjustment.
func (s *Service) limit(pid uint32, name string) (record process.Record, applied bool) {
	release, limited := s.limited.Acquire(pid)
	defer release()

	if limited {
		if name == "" {
			name = process.PlaceholderName(pid)
		}
		return process.Record{Name: name, PID: pid, Adjusted: true}, false
	}

	if name == "" {
		resolved, err := s.enumerator.ResolveName(pid)
		if err != nil {
			s.logger.Debugf("Using placeholder name for PID %d: %v", pid, err)
			resolved = process.PlaceholderName(pid)
		}
		name = resolved
	}

	record = process.Record{Name: name, PID: pid}
	if err := s.adjuster.Adjust(pid); err != nil {
		record.Error = err.Error()
		s.logger.Warnf("Failed to limit %s (PID %d): %v", name, pid, err)
		s.journal.LogLimit(name, pid, false, record.Error)
		return record, false
	}

	s.limited.MarkLimited(pid)
	record.Adjusted = true
	s.logger.Infof("Limited %s (PID %d)", name, pid)
	s.journal.LogLimit(name, pid, true, "")
	return record, true
}

// Cycle performs one monitor pass: limit every untracked match, then emit
// ProcessUpdated if anything changed and ScanCompleted unconditionally.
// A started pass always covers every candidate, so the loop context is unused.
func (s *Service) Cycle(_ context.Context) {
	s.recordScan()
	s.elevate()

	candidates := s.enumerator.Scan()
	s.logger.Debugf("Cycle found %d target process(es)", len(candidates))

	records := make([]process.Record, 0, len(candidates))
	changed := 0
	for _, candidate := range candidates {
		if s.limited.IsLimited(candidate.PID) {
			candidate.Adjusted = true
			records = append(records, candidate)
			continue
		}
		record, applied := s.limit(candidate.PID, candidate.Name)
		if applied {
			changed++
		}
		records = append(records, record)
	}
	s.storeRecords(records)

	if changed > 0 {
		s.emitter.Emit(events.ProcessUpdated)
	}
	s.emitter.Emit(events.ScanCompleted)

	s.journal.LogEvent(logging.EventScanCompleted, "Monitor cycle completed", map[string]interface{}{
		"matches": len(candidates),
		"limited": changed,
	})
}

// StartMonitor launches the background loop. interval <= 0 selects
// monitor.DefaultInterval. It returns false if the loop is already running.
func (s *Service) StartMonitor(interval time.Duration) bool {
	if !s.monitor.Start(interval) {
		return false
	}
	s.journal.LogEvent(logging.EventMonitorStart, "Monitor started", map[string]interface{}{
		"interval_ms": s.monitor.Interval().Milliseconds(),
	})
	return true
}

// StopMonitor asks the loop to stop after its current cycle. Always true.
func (s *Service) StopMonitor() bool {
	if s.monitor.Running() {
		s.journal.LogEvent(logging.EventMonitorStop, "Monitor stop requested", nil)
	}
	return s.monitor.Stop()
}

// IsMonitorRunning reports whether the loop worker is active
func (s *Service) IsMonitorRunning() bool {
	return s.monitor.Running()
}

// Shutdown stops the loop and waits for its worker to exit
func (s *Service) Shutdown() {
	s.StopMonitor()
	s.monitor.Wait()
}

// LastScanTime returns the epoch-millisecond time of the latest scan or
// cycle, and false if none has happened yet
func (s *Service) LastScanTime() (int64, bool) {
	s.scanMu.Lock()
	defer s.scanMu.Unlock()

	if !s.scanned {
		return 0, false
	}
	return s.lastScan.UnixMilli(), true
}

// SystemInfo reports the logical CPU count and the index of the core targets are pinned to
func (s *Service) SystemInfo() SystemInfo {
	n := s.api.CPUCount()
	if n < 1 {
		n = 1
	}
	return SystemInfo{CPUCount: n, LastCoreIndex: n - 1}
}

// Records returns the records of the latest scan, limit-all or cycle without
// touching the OS. Call it to refresh a view after an event.
func (s *Service) Records() []process.Record {
	s.scanMu.Lock()
	defer s.scanMu.Unlock()

	records := make([]process.Record, len(s.records))
	copy(records, s.records)
	return records
}

// LimitedPIDs returns the PIDs throttled this session
func (s *Service) LimitedPIDs() []uint32 {
	return s.limited.PIDs()
}

func (s *Service) storeRecords(records []process.Record) {
	s.scanMu.Lock()
	defer s.scanMu.Unlock()

	s.records = append(s.records[:0:0], records...)
}

func (s *Service) recordScan() {
	now := s.now()

	s.scanMu.Lock()
	defer s.scanMu.Unlock()

	if !s.scanned || now.After(s.lastScan) {
		s.lastScan = now
	}
	s.scanned = true
}

// elevate requests the debug right; failures are logged by the elevator and
// journaled once per status change here
func (s *Service) elevate() {
	if s.elevator == nil {
		return
	}
	result := s.elevator.EnableDebugPrivilege()

	s.privMu.Lock()
	changed := !s.privSeen || s.privLast != result.Status
	s.privLast = result.Status
	s.privSeen = true
	s.privMu.Unlock()

	if changed && result.Status != privilege.Granted {
		msg := result.Status.String()
		if result.Err != nil {
			msg = result.Err.Error()
		}
		s.journal.LogEvent(logging.EventPrivilegeDenied, msg, map[string]interface{}{
			"privilege": privilege.DebugPrivilegeName,
			"status":    result.Status.String(),
		})
	}
}
