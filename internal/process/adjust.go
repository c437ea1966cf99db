package process

import (
	stderrors "errors"
	"fmt"
	"math/bits"

	"github.com/QwQ3213/ACELimiter/internal/errors"
	"github.com/QwQ3213/ACELimiter/internal/logging"
)

// AdjustAccess lists the access sets tried, in order, when opening a target
var AdjustAccess = []Access{
	AccessSetInformation | AccessQueryInformation,
	AccessSetInformation | AccessQueryLimitedInformation,
}

// AffinityMask returns a mask selecting only the highest-indexed logical CPU.
// Counts of 0 or 1 select CPU 0.
func AffinityMask(cpuCount int) uintptr {
	if cpuCount <= 1 {
		return 1
	}
	if cpuCount > bits.UintSize {
		cpuCount = bits.UintSize
	}
	return uintptr(1) << uint(cpuCount-1)
}

// Adjuster lowers a process to idle priority and pins it to the last CPU
type Adjuster struct {
	api    API
	logger *logging.Logger
	access []Access
}

// NewAdjuster creates an adjuster using AdjustAccess
func NewAdjuster(api API, logger *logging.Logger) *Adjuster {
	return &Adjuster{
		api:    api,
		logger: logger,
		access: AdjustAccess,
	}
}

// Adjust applies the priority change and then the affinity change to pid.
// A failed affinity change leaves the new priority in place.
func (a *Adjuster) Adjust(pid uint32) error {
	h, err := a.open(pid)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.api.CloseHandle(h); err != nil {
			a.logger.Warnf("Failed to close handle for PID %d: %v", pid, err)
		}
	}()

	if err := a.api.SetPriorityClass(h, PriorityClassIdle); err != nil {
		return errors.AdjustmentError("set priority class", err)
	}

	mask := AffinityMask(a.api.CPUCount())
	if err := a.api.SetAffinityMask(h, mask); err != nil {
		return errors.AdjustmentError(fmt.Sprintf("set cpu affinity to %#x", mask), err)
	}

	a.logger.Debugf("Adjusted PID %d: idle priority, affinity %#x", pid, mask)
	return nil
}

// open tries each access set in order and returns the first handle obtained
func (a *Adjuster) open(pid uint32) (Handle, error) {
	var errs []error
	for _, access := range a.access {
		h, err := a.api.OpenProcess(access, pid)
		if err == nil {
			return h, nil
		}
		errs = append(errs, fmt.Errorf("access %#x: %w", uint32(access), err))
	}
	return 0, errors.HandleOpenError(fmt.Sprintf("cannot open process %d", pid), stderrors.Join(errs...))
}
