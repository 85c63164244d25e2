//go:build windows

package fs

import (
	"syscall"

	"github.com/justyntemme/glance/internal/errors"
)

// ERROR_NOT_SAME_DEVICE
const errNotSameDevice = syscall.Errno(17)

func crossDevice(err error) bool {
	return errors.Is(err, errNotSameDevice) || errors.Is(err, syscall.EXDEV)
}
