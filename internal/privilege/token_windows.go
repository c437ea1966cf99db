//go:build windows

package privilege

import (
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	modadvapi32               = windows.NewLazySystemDLL("advapi32.dll")
	procAdjustTokenPrivileges = modadvapi32.NewProc("AdjustTokenPrivileges")
)

type windowsTokenAPI struct{}

func newTokenAPI() TokenAPI {
	return windowsTokenAPI{}
}

func (windowsTokenAPI) OpenCurrentToken() (Token, error) {
	var token windows.Token
	err := windows.OpenProcessToken(windows.CurrentProcess(), windows.TOKEN_ADJUST_PRIVILEGES|windows.TOKEN_QUERY, &token)
	if err != nil {
		return 0, err
	}
	return Token(token), nil
}

func (windowsTokenAPI) LookupPrivilege(name string) (LUID, error) {
	namePtr, err := windows.UTF16PtrFromString(name)
	if err != nil {
		return LUID{}, err
	}
	var luid windows.LUID
	if err := windows.LookupPrivilegeValue(nil, namePtr, &luid); err != nil {
		return LUID{}, err
	}
	return LUID{LowPart: luid.LowPart, HighPart: luid.HighPart}, nil
}

// EnablePrivilege calls AdjustTokenPrivileges directly so that a call that
// succeeds without assigning the right (ERROR_NOT_ALL_ASSIGNED) is reported.
func (windowsTokenAPI) EnablePrivilege(token Token, luid LUID) error {
	tp := windows.Tokenprivileges{
		PrivilegeCount: 1,
		Privileges: [1]windows.LUIDAndAttributes{{
			Luid:       windows.LUID{LowPart: luid.LowPart, HighPart: luid.HighPart},
			Attributes: windows.SE_PRIVILEGE_ENABLED,
		}},
	}

	if err := procAdjustTokenPrivileges.Find(); err != nil {
		return err
	}
	ret, _, err := procAdjustTokenPrivileges.Call(uintptr(token), 0, uintptr(unsafe.Pointer(&tp)), 0, 0, 0)
	if ret == 0 {
		return err
	}
	if err == windows.ERROR_NOT_ALL_ASSIGNED {
		return err
	}
	return nil
}

func (windowsTokenAPI) CloseToken(token Token) error {
	return windows.Token(token).Close()
}

// IsElevated reports whether the process runs with an elevated (administrator) token
func IsElevated() bool {
	return windows.GetCurrentProcessToken().IsElevated()
}
