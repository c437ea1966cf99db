package process

import (
	"runtime"

	"github.com/shirou/gopsutil/v3/cpu"
)

// LogicalCPUCount returns the number of logical CPUs, never less than 1
func LogicalCPUCount() int {
	n, err := cpu.Counts(true)
	if err != nil || n < 1 {
		n = runtime.NumCPU()
	}
	if n < 1 {
		n = 1
	}
	return n
}
