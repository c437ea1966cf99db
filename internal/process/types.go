package process

import (
	"fmt"
	"strings"
)

// TargetNames is the fixed allow-list of executables this tool throttles.
// Matching is exact and case-insensitive.
var TargetNames = [2]string{"SGuard64.exe", "SGuardSvc64.exe"}

// Record describes one matching process as seen by a scan or limit call
type Record struct {
	Name     string `json:"name"`
	PID      uint32 `json:"pid"`
	Adjusted bool   `json:"adjusted"`
	Error    string `json:"error,omitempty"`
}

// IsTarget reports whether name is one of TargetNames
func IsTarget(name string) bool {
	for _, target := range TargetNames {
		if strings.EqualFold(target, name) {
			return true
		}
	}
	return false
}

// PlaceholderName is used when a PID's executable name is unknown
func PlaceholderName(pid uint32) string {
	return fmt.Sprintf("PID:%d", pid)
}

// baseName trims a Windows or slash-separated path to its final component
func baseName(path string) string {
	if i := strings.LastIndexAny(path, `\/`); i >= 0 {
		return path[i+1:]
	}
	return path
}
