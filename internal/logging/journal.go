package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Journal event types
const (
	EventMonitorStart    = "MONITOR_START"
	EventMonitorStop     = "MONITOR_STOP"
	EventProcessLimited  = "PROCESS_LIMITED"
	EventLimitFailed     = "LIMIT_FAILED"
	EventScanCompleted   = "SCAN_COMPLETED"
	EventPrivilegeDenied = "PRIVILEGE_DENIED"
)

// JournalEvent is one line of the activity journal
type JournalEvent struct {
	Timestamp   time.Time              `json:"timestamp"`
	EventType   string                 `json:"event_type"`
	ProcessName string                 `json:"process_name,omitempty"`
	ProcessID   uint32                 `json:"process_id,omitempty"`
	Success     bool                   `json:"success,omitempty"`
	Message     string                 `json:"message,omitempty"`
	Details     map[string]interface{} `json:"details,omitempty"`
}

// JournalListener is a callback function that receives journal events
type JournalListener func(event JournalEvent)

// Journal appends throttling activity to a JSON-lines file
type Journal struct {
	logger    *Logger
	logFile   *os.File
	logPath   string
	mu        sync.Mutex
	listeners []JournalListener
}

// NewJournal opens (or creates) the journal file at logPath
func NewJournal(logPath string, stdLogger *Logger) (*Journal, error) {
	if logPath == "" {
		return nil, fmt.Errorf("journal path is empty")
	}

	if err := os.MkdirAll(filepath.Dir(logPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create journal directory: %w", err)
	}

	logFile, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0640)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal file: %w", err)
	}

	if stdLogger == nil {
		stdLogger = DefaultLogger
		if stdLogger == nil {
			stdLogger = NewLogger("[journal]", false)
		}
	}

	return &Journal{
		logger:  stdLogger,
		logFile: logFile,
		logPath: logPath,
	}, nil
}

// Path returns the journal file location
func (j *Journal) Path() string {
	if j == nil {
		return ""
	}
	return j.logPath
}

// Close closes the journal file. A nil journal is a no-op.
func (j *Journal) Close() error {
	if j == nil {
		return nil
	}
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.logFile == nil {
		return nil
	}
	err := j.logFile.Close()
	j.logFile = nil
	return err
}

// LogEvent records a generic event
func (j *Journal) LogEvent(eventType string, message string, details map[string]interface{}) {
	j.record(JournalEvent{
		Timestamp: time.Now(),
		EventType: eventType,
		Message:   message,
		Details:   details,
	})
}

// LogLimit records the outcome of one limit attempt
func (j *Journal) LogLimit(name string, pid uint32, success bool, errMsg string) {
	event := JournalEvent{
		Timestamp:   time.Now(),
		EventType:   EventProcessLimited,
		ProcessName: name,
		ProcessID:   pid,
		Success:     success,
		Message:     "Process limited",
	}
	if !success {
		event.EventType = EventLimitFailed
		event.Message = errMsg
	}

	j.record(event)
}

// AddListener registers a callback for journal events
func (j *Journal) AddListener(listener JournalListener) {
	if j == nil {
		return
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	j.listeners = append(j.listeners, listener)
}

// record writes the event and notifies listeners. Recording on a nil
// journal does nothing, so callers need not check whether one is configured.
func (j *Journal) record(event JournalEvent) {
	if j == nil {
		return
	}
	j.mu.Lock()
	defer j.mu.Unlock()

	line, err := json.Marshal(event)
	if err != nil {
		j.logger.Errorf("Failed to marshal journal event: %v", err)
		return
	}

	if j.logFile != nil {
		if _, err := j.logFile.Write(append(line, '\n')); err != nil {
			j.logger.Errorf("Failed to write journal event: %v", err)
		}
	}

	j.logger.Debugf("Journal %s: %s", event.EventType, event.Message)

	for _, listener := range j.listeners {
		go listener(event)
	}
}
