package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/QwQ3213/ACELimiter/internal/config"
	"github.com/QwQ3213/ACELimiter/internal/logging"
)

// Image paths of the throttled binaries as they appear on a typical install
const (
	GuardImagePath   = `C:\Program Files\AntiCheatExpert\SGuard\x64\SGuard64.exe`
	ServiceImagePath = `C:\Program Files\AntiCheatExpert\SGuard\x64\SGuardSvc64.exe`
	OtherImagePath   = `C:\Windows\System32\notepad.exe`
)

// CreateTempDir creates a temporary directory for testing
// Returns the directory path and a cleanup function
func CreateTempDir(t *testing.T) (string, func()) {
	tmpDir, err := os.MkdirTemp("", "acelimiter-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp directory: %v", err)
	}

	return tmpDir, func() { os.RemoveAll(tmpDir) }
}

// WriteTempConfig writes content to a config.toml in a fresh temp directory
func WriteTempConfig(t *testing.T, content string) string {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}
	return path
}

// SetupTestConfig creates a test configuration with a short monitor interval
func SetupTestConfig(t *testing.T) *config.Config {
	cfg := config.Default()
	cfg.Monitor.IntervalMs = 10
	cfg.Verbose = true
	return cfg
}

// SetupTestLogger creates a logger for testing
func SetupTestLogger() *logging.Logger {
	return logging.NewLogger("[test]", true)
}
