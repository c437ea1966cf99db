//go:build !windows

package limiter_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/QwQ3213/ACELimiter/internal/limiter"
	"github.com/QwQ3213/ACELimiter/internal/testutil"
)

func TestSystemServiceOutsideWindows(t *testing.T) {
	svc := limiter.NewSystemService(limiter.Options{Logger: testutil.SetupTestLogger()})

	assert.Empty(t, svc.ScanProcesses())
	_, ok := svc.LastScanTime()
	assert.True(t, ok)

	record := svc.LimitProcess(4242)
	assert.False(t, record.Adjusted)
	assert.Contains(t, record.Error, "unsupported platform")
	assert.Equal(t, "PID:4242", record.Name)

	assert.Equal(t, limiter.SystemInfo{CPUCount: 1, LastCoreIndex: 0}, svc.SystemInfo())
}
