package fileops

import (
	"os/exec"
	"runtime"

	"github.com/justyntemme/glance/internal/debug"
)

// SystemOpener starts the platform's default-application launcher.
type SystemOpener struct{}

func (SystemOpener) Open(path string) error {
	cmd := openCommand(runtime.GOOS, path)
	debug.Log(debug.OPS, "open: %v", cmd.Args)
	return cmd.Start()
}

func openCommand(goos, path string) *exec.Cmd {
	switch goos {
	case "darwin":
		return exec.Command("open", path)
	case "windows":
		// the empty argument is the window title
		return exec.Command("cmd", "/c", "start", "", path)
	default:
		return exec.Command("xdg-open", path)
	}
}
