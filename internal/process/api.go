package process

// Handle is an opaque OS process handle
type Handle uintptr

// Access is a process access-rights mask. Values match the Win32 PROCESS_* rights.
type Access uint32

const (
	AccessVMRead                  Access = 0x0010
	AccessSetInformation          Access = 0x0200
	AccessQueryInformation        Access = 0x0400
	AccessQueryLimitedInformation Access = 0x1000
)

// PriorityClassIdle is the Win32 IDLE_PRIORITY_CLASS value
const PriorityClassIdle uint32 = 0x00000040

// MaxProcesses is the capacity of the enumeration buffer. Processes beyond
// it are silently left out of a scan.
const MaxProcesses = 4096

// API is the operating-system surface the enumerator and adjuster use
type API interface {
	// EnumProcesses fills pids and returns how many entries were written
	EnumProcesses(pids []uint32) (int, error)
	OpenProcess(access Access, pid uint32) (Handle, error)
	CloseHandle(h Handle) error
	// QueryImagePath returns the full executable path of the process
	QueryImagePath(h Handle) (string, error)
	// ModuleBaseName returns the base name of the process's main module
	ModuleBaseName(h Handle) (string, error)
	SetPriorityClass(h Handle, class uint32) error
	SetAffinityMask(h Handle, mask uintptr) error
	CPUCount() int
}
