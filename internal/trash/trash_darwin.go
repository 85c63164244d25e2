//go:build darwin

package trash

import (
	"os"
	"path/filepath"
)

// Default returns ~/.Trash.
func Default() (Bin, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	return Dir{Root: filepath.Join(home, ".Trash"), Flat: true}, nil
}
