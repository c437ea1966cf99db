package process

import (
	stderrors "errors"
	"fmt"

	"github.com/QwQ3213/ACELimiter/internal/errors"
	"github.com/QwQ3213/ACELimiter/internal/logging"
)

// NameStrategy is one way of reading a process's executable name
type NameStrategy struct {
	Name   string
	Access Access
	Query  func(api API, h Handle) (string, error)
}

// DefaultNameStrategies tries the full image path through a limited-information
// handle first, which works for protected processes, then falls back to the
// module base name through a query+read handle.
func DefaultNameStrategies() []NameStrategy {
	return []NameStrategy{
		{
			Name:   "image path",
			Access: AccessQueryLimitedInformation,
			Query: func(api API, h Handle) (string, error) {
				path, err := api.QueryImagePath(h)
				if err != nil {
					return "", err
				}
				return baseName(path), nil
			},
		},
		{
			Name:   "module base name",
			Access: AccessQueryInformation | AccessVMRead,
			Query: func(api API, h Handle) (string, error) {
				return api.ModuleBaseName(h)
			},
		},
	}
}

// Enumerator lists live processes and picks out the target executables
type Enumerator struct {
	api        API
	logger     *logging.Logger
	capacity   int
	strategies []NameStrategy
}

// NewEnumerator creates an enumerator with the default buffer size and name strategies
func NewEnumerator(api API, logger *logging.Logger) *Enumerator {
	return &Enumerator{
		api:        api,
		logger:     logger,
		capacity:   MaxProcesses,
		strategies: DefaultNameStrategies(),
	}
}

// WithCapacity overrides the enumeration buffer size
func (e *Enumerator) WithCapacity(capacity int) *Enumerator {
	if capacity > 0 {
		e.capacity = capacity
	}
	return e
}

// ResolveName returns the executable name of pid using the first strategy that succeeds
func (e *Enumerator) ResolveName(pid uint32) (string, error) {
	var errs []error

	for _, strategy := range e.strategies {
		name, err := e.tryStrategy(strategy, pid)
		if err == nil && name != "" {
			return name, nil
		}
		if err == nil {
			err = fmt.Errorf("%s: empty name", strategy.Name)
		}
		errs = append(errs, err)
	}

	return "", errors.NameResolutionError(fmt.Sprintf("resolve name of process %d", pid), stderrors.Join(errs...))
}

func (e *Enumerator) tryStrategy(strategy NameStrategy, pid uint32) (string, error) {
	h, err := e.api.OpenProcess(strategy.Access, pid)
	if err != nil {
		return "", fmt.Errorf("%s: open: %w", strategy.Name, err)
	}
	defer e.release(h, pid)

	name, err := strategy.Query(e.api, h)
	if err != nil {
		return "", fmt.Errorf("%s: %w", strategy.Name, err)
	}
	return name, nil
}

func (e *Enumerator) release(h Handle, pid uint32) {
	if err := e.api.CloseHandle(h); err != nil {
		e.logger.Debugf("Failed to close handle for PID %d: %v", pid, err)
	}
}

// Scan enumerates processes and returns a record for every target match.
// An enumeration failure is logged and yields an empty result.
func (e *Enumerator) Scan() []Record {
	pids := make([]uint32, e.capacity)
	n, err := e.api.EnumProcesses(pids)
	if err != nil {
		e.logger.Errorf("%v", errors.EnumerationError("enumerate processes", err))
		return nil
	}
	if n > len(pids) {
		n = len(pids)
	}

	results := make([]Record, 0, len(TargetNames))
	seen := make(map[uint32]struct{}, n)

	for _, pid := range pids[:n] {
		if pid == 0 {
			continue
		}
		if _, dup := seen[pid]; dup {
			continue
		}
		seen[pid] = struct{}{}

		name, err := e.ResolveName(pid)
		if err != nil {
			e.logger.Debugf("Skipping PID %d: %v", pid, err)
			continue
		}

		if IsTarget(name) {
			results = append(results, Record{Name: name, PID: pid})
		}
	}

	return results
}
