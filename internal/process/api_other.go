//go:build !windows

package process

import (
	"github.com/QwQ3213/ACELimiter/internal/errors"
)

// unsupportedAPI reports every process operation as unavailable. Scans come
// back empty, limit calls fail with an explanatory error and the CPU layout
// is reported as a single core.
type unsupportedAPI struct{}

// NewSystemAPI returns the fallback API used outside Windows
func NewSystemAPI() API {
	return &unsupportedAPI{}
}

func (u *unsupportedAPI) EnumProcesses(pids []uint32) (int, error) {
	return 0, errors.UnsupportedPlatform("enumerate processes")
}

func (u *unsupportedAPI) OpenProcess(access Access, pid uint32) (Handle, error) {
	return 0, errors.UnsupportedPlatform("open process")
}

func (u *unsupportedAPI) CloseHandle(h Handle) error {
	return nil
}

func (u *unsupportedAPI) QueryImagePath(h Handle) (string, error) {
	return "", errors.UnsupportedPlatform("query image path")
}

func (u *unsupportedAPI) ModuleBaseName(h Handle) (string, error) {
	return "", errors.UnsupportedPlatform("query module name")
}

func (u *unsupportedAPI) SetPriorityClass(h Handle, class uint32) error {
	return errors.UnsupportedPlatform("set priority class")
}

func (u *unsupportedAPI) SetAffinityMask(h Handle, mask uintptr) error {
	return errors.UnsupportedPlatform("set affinity mask")
}

func (u *unsupportedAPI) CPUCount() int {
	return 1
}
