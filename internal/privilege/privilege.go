package privilege

import (
	"sync"

	"github.com/QwQ3213/ACELimiter/internal/errors"
	"github.com/QwQ3213/ACELimiter/internal/logging"
)

// DebugPrivilegeName is the token right that allows opening processes owned
// by other security contexts
const DebugPrivilegeName = "SeDebugPrivilege"

// Status is the outcome of an elevation attempt
type Status int

const (
	// Granted means the right is enabled on the process token
	Granted Status = iota
	// DeniedContinuing means the token refused the right; callers carry on
	// and rely on whatever access the process already has
	DeniedContinuing
	// Failed means the token or the privilege could not be looked up
	Failed
)

func (s Status) String() string {
	switch s {
	case Granted:
		return "granted"
	case DeniedContinuing:
		return "denied"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Result carries the elevation status and the error behind a non-granted status
type Result struct {
	Status Status
	Err    error
}

// Elevator enables the debug right for the current process
type Elevator interface {
	EnableDebugPrivilege() Result
}

// Token is an opaque access-token handle
type Token uintptr

// LUID identifies a privilege on the local system
type LUID struct {
	LowPart  uint32
	HighPart int32
}

// TokenAPI is the OS surface used to adjust the process token
type TokenAPI interface {
	OpenCurrentToken() (Token, error)
	LookupPrivilege(name string) (LUID, error)
	EnablePrivilege(token Token, luid LUID) error
	CloseToken(token Token) error
}

// PrivilegeManager handles debug-privilege elevation
type PrivilegeManager struct {
	logger *logging.Logger
	api    TokenAPI
	last   Status
	logged bool
	mu     sync.Mutex
}

// NewPrivilegeManager creates a privilege manager backed by the platform token API
func NewPrivilegeManager(logger *logging.Logger) *PrivilegeManager {
	return NewPrivilegeManagerWithAPI(logger, newTokenAPI())
}

// NewPrivilegeManagerWithAPI creates a privilege manager over api
func NewPrivilegeManagerWithAPI(logger *logging.Logger, api TokenAPI) *PrivilegeManager {
	return &PrivilegeManager{
		logger: logger,
		api:    api,
	}
}

// EnableDebugPrivilege enables DebugPrivilegeName on the process token.
// It is safe to call repeatedly and never aborts the caller.
func (p *PrivilegeManager) EnableDebugPrivilege() Result {
	result := p.enable()
	p.logResult(result)
	return result
}

func (p *PrivilegeManager) enable() Result {
	token, err := p.api.OpenCurrentToken()
	if err != nil {
		return Result{Status: Failed, Err: errors.PrivilegeError("open process token", err)}
	}
	defer func() {
		if err := p.api.CloseToken(token); err != nil {
			p.logger.Debugf("Failed to close process token: %v", err)
		}
	}()

	luid, err := p.api.LookupPrivilege(DebugPrivilegeName)
	if err != nil {
		return Result{Status: Failed, Err: errors.PrivilegeError("look up "+DebugPrivilegeName, err)}
	}

	if err := p.api.EnablePrivilege(token, luid); err != nil {
		return Result{Status: DeniedContinuing, Err: errors.PrivilegeError("adjust token privileges", err)}
	}

	return Result{Status: Granted}
}

// logResult reports at info/warn level only when the status changes
func (p *PrivilegeManager) logResult(result Result) {
	p.mu.Lock()
	changed := !p.logged || p.last != result.Status
	p.last = result.Status
	p.logged = true
	p.mu.Unlock()

	if !changed {
		p.logger.Debugf("%s %s", DebugPrivilegeName, result.Status)
		return
	}

	if result.Status == Granted {
		p.logger.Infof("Enabled %s", DebugPrivilegeName)
		return
	}
	p.logger.Warnf("%s %s, continuing without it: %v", DebugPrivilegeName, result.Status, result.Err)
}
