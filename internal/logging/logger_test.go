package logging_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/QwQ3213/ACELimiter/internal/logging"
)

func TestLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewLogger("[test]", false)
	logger.SetOutput(&buf)

	logger.Debug("hidden debug line")
	logger.Infof("limited %s", "SGuard64.exe")
	logger.Warn("privilege denied")
	logger.Errorf("set priority class: %d", 5)

	out := buf.String()
	if strings.Contains(out, "hidden debug line") {
		t.Errorf("Debug output should be suppressed when not verbose: %q", out)
	}
	for _, want := range []string{
		"[test] [INFO] limited SGuard64.exe",
		"[test] [WARN] privilege denied",
		"[test] [ERROR] set priority class: 5",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected output to contain %q, got %q", want, out)
		}
	}
}

func TestLoggerVerbose(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewLogger("[test]", false)
	logger.SetOutput(&buf)

	logger.SetVerbose(true)
	logger.Debugf("pid %d skipped", 7)

	if !strings.Contains(buf.String(), "[DEBUG] pid 7 skipped") {
		t.Errorf("Expected debug line in verbose mode, got %q", buf.String())
	}
}

func TestLoggerNamed(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewLogger("[root]", true)
	logger.SetOutput(&buf)

	child := logger.Named("[monitor]")
	child.Info("cycle complete")

	if !strings.Contains(buf.String(), "[monitor] [INFO] cycle complete") {
		t.Errorf("Expected child prefix in output, got %q", buf.String())
	}
	if !child.Verbose() {
		t.Errorf("Expected child to inherit verbosity")
	}
}
