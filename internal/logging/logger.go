package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"sync"
)

// Level names used as the line prefix
const (
	levelDebug = "DEBUG"
	levelInfo  = "INFO"
	levelWarn  = "WARN"
	levelError = "ERROR"
)

// Logger provides application-wide logging functionality
type Logger struct {
	logger  *log.Logger
	prefix  string
	verbose bool
	mu      sync.Mutex
}

// Global logger instance
var (
	DefaultLogger *Logger
	once          sync.Once
)

// InitLogger initializes the global logger
func InitLogger(prefix string, verbose bool) {
	once.Do(func() {
		DefaultLogger = NewLogger(prefix, verbose)
	})
}

// NewLogger creates a new logger instance
func NewLogger(prefix string, verbose bool) *Logger {
	return &Logger{
		logger:  log.New(os.Stdout, "", log.LstdFlags),
		prefix:  prefix,
		verbose: verbose,
	}
}

// Named returns a logger sharing this logger's output and verbosity with a different prefix
func (l *Logger) Named(prefix string) *Logger {
	l.mu.Lock()
	defer l.mu.Unlock()

	return &Logger{
		logger:  log.New(l.logger.Writer(), "", l.logger.Flags()),
		prefix:  prefix,
		verbose: l.verbose,
	}
}

// SetVerbose changes the verbosity level of the logger
func (l *Logger) SetVerbose(verbose bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.verbose = verbose
}

// Verbose reports whether debug output is enabled
func (l *Logger) Verbose() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.verbose
}

// SetOutput sets the output destination for the logger
func (l *Logger) SetOutput(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.logger.SetOutput(w)
}

func (l *Logger) output(level, msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.prefix != "" {
		l.logger.Printf("%s [%s] %s", l.prefix, level, msg)
		return
	}
	l.logger.Printf("[%s] %s", level, msg)
}

// Debug logs debug messages (only in verbose mode)
func (l *Logger) Debug(v ...interface{}) {
	if l.Verbose() {
		l.output(levelDebug, fmt.Sprint(v...))
	}
}

// Debugf logs formatted debug messages (only in verbose mode)
func (l *Logger) Debugf(format string, v ...interface{}) {
	if l.Verbose() {
		l.output(levelDebug, fmt.Sprintf(format, v...))
	}
}

// Info logs informational messages
func (l *Logger) Info(v ...interface{}) {
	l.output(levelInfo, fmt.Sprint(v...))
}

// Infof logs formatted informational messages
func (l *Logger) Infof(format string, v ...interface{}) {
	l.output(levelInfo, fmt.Sprintf(format, v...))
}

// Warn logs warning messages
func (l *Logger) Warn(v ...interface{}) {
	l.output(levelWarn, fmt.Sprint(v...))
}

// Warnf logs formatted warning messages
func (l *Logger) Warnf(format string, v ...interface{}) {
	l.output(levelWarn, fmt.Sprintf(format, v...))
}

// Error logs error messages
func (l *Logger) Error(v ...interface{}) {
	l.output(levelError, fmt.Sprint(v...))
}

// Errorf logs formatted error messages
func (l *Logger) Errorf(format string, v ...interface{}) {
	l.output(levelError, fmt.Sprintf(format, v...))
}
