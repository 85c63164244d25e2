//go:build !windows

package fs

import (
	"syscall"

	"github.com/justyntemme/glance/internal/errors"
)

func crossDevice(err error) bool {
	return errors.Is(err, syscall.EXDEV)
}
