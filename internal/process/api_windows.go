//go:build windows

package process

import (
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	modkernel32                = windows.NewLazySystemDLL("kernel32.dll")
	procSetProcessAffinityMask = modkernel32.NewProc("SetProcessAffinityMask")
)

// imagePathBufferLen is the UTF-16 buffer size passed to QueryFullProcessImageName
const imagePathBufferLen = 1024

type systemAPI struct {
	cpuCount int
}

// NewSystemAPI returns the Win32 implementation of API
func NewSystemAPI() API {
	return &systemAPI{cpuCount: LogicalCPUCount()}
}

func (s *systemAPI) EnumProcesses(pids []uint32) (int, error) {
	if len(pids) == 0 {
		return 0, nil
	}
	var bytesReturned uint32
	if err := windows.EnumProcesses(pids, &bytesReturned); err != nil {
		return 0, err
	}
	return int(bytesReturned) / int(unsafe.Sizeof(pids[0])), nil
}

func (s *systemAPI) OpenProcess(access Access, pid uint32) (Handle, error) {
	h, err := windows.OpenProcess(uint32(access), false, pid)
	if err != nil {
		return 0, err
	}
	return Handle(h), nil
}

func (s *systemAPI) CloseHandle(h Handle) error {
	return windows.CloseHandle(windows.Handle(h))
}

func (s *systemAPI) QueryImagePath(h Handle) (string, error) {
	buf := make([]uint16, imagePathBufferLen)
	size := uint32(len(buf))
	if err := windows.QueryFullProcessImageName(windows.Handle(h), 0, &buf[0], &size); err != nil {
		return "", err
	}
	return windows.UTF16ToString(buf[:size]), nil
}

func (s *systemAPI) ModuleBaseName(h Handle) (string, error) {
	var buf [windows.MAX_PATH]uint16
	if err := windows.GetModuleBaseName(windows.Handle(h), 0, &buf[0], uint32(len(buf))); err != nil {
		return "", err
	}
	return windows.UTF16ToString(buf[:]), nil
}

func (s *systemAPI) SetPriorityClass(h Handle, class uint32) error {
	return windows.SetPriorityClass(windows.Handle(h), class)
}

func (s *systemAPI) SetAffinityMask(h Handle, mask uintptr) error {
	if err := procSetProcessAffinityMask.Find(); err != nil {
		return err
	}
	ret, _, err := procSetProcessAffinityMask.Call(uintptr(h), mask)
	if ret == 0 {
		return err
	}
	return nil
}

func (s *systemAPI) CPUCount() int {
	return s.cpuCount
}
