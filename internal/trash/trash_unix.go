//go:build !windows && !darwin

package trash

import (
	"os"
	"path/filepath"
)

// Default returns the user's freedesktop.org home trash.
func Default() (Bin, error) {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		dataHome = filepath.Join(home, ".local", "share")
	}
	return Dir{Root: filepath.Join(dataHome, "Trash")}, nil
}
