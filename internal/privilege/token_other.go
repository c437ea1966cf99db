//go:build !windows

package privilege

import (
	"os"

	"github.com/QwQ3213/ACELimiter/internal/errors"
)

type unsupportedTokenAPI struct{}

func newTokenAPI() TokenAPI {
	return unsupportedTokenAPI{}
}

func (unsupportedTokenAPI) OpenCurrentToken() (Token, error) {
	return 0, errors.UnsupportedPlatform("open process token")
}

func (unsupportedTokenAPI) LookupPrivilege(name string) (LUID, error) {
	return LUID{}, errors.UnsupportedPlatform("look up privilege")
}

func (unsupportedTokenAPI) EnablePrivilege(token Token, luid LUID) error {
	return errors.UnsupportedPlatform("adjust token privileges")
}

func (unsupportedTokenAPI) CloseToken(token Token) error {
	return nil
}

// IsElevated reports whether the process runs as root
func IsElevated() bool {
	return os.Geteuid() == 0
}
