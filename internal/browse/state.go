// Package browse holds the file browser's location as a value. Every
// navigation returns a new State; the caller keeps the single current one.
package browse

import (
	"os"
	"path/filepath"

	"github.com/justyntemme/glance/internal/debug"
	"github.com/justyntemme/glance/internal/fs"
)

// State is one directory listing together with its display rows.
// Entries and Rows are index-aligned.
type State struct {
	Dir       string
	Entries   []fs.Entry
	Rows      []fs.DisplayRow
	NameWidth int
}

// Load lists dir and returns the resulting state.
func Load(dir string, nameWidth int) (State, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return State{}, err
	}
	entries, err := fs.List(abs)
	if err != nil {
		return State{}, err
	}
	debug.Log(debug.APP, "browse: loaded %q (%d entries)", abs, len(entries))
	return State{
		Dir:       abs,
		Entries:   entries,
		Rows:      fs.Rows(entries, nameWidth),
		NameWidth: nameWidth,
	}, nil
}

// StartDir resolves the configured start directory, falling back to the
// home directory and then the working directory when it does not exist.
func StartDir(configured string) string {
	candidates := []string{configured}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, home)
	}
	if wd, err := os.Getwd(); err == nil {
		candidates = append(candidates, wd)
	}
	for _, c := range candidates {
		if c == "" {
			continue
		}
		if info, err := os.Stat(c); err == nil && info.IsDir() {
			return c
		}
	}
	return string(filepath.Separator)
}

// Len returns the number of entries.
func (s State) Len() int {
	return len(s.Entries)
}

// EntryAt returns entry i; ok is false when i is out of range.
func (s State) EntryAt(i int) (fs.Entry, bool) {
	if i < 0 || i >= len(s.Entries) {
		return fs.Entry{}, false
	}
	return s.Entries[i], true
}

// Selected maps row indices to entries, skipping out-of-range indices.
func (s State) Selected(indices []int) []fs.Entry {
	var out []fs.Entry
	for _, i := range indices {
		if e, ok := s.EntryAt(i); ok {
			out = append(out, e)
		}
	}
	return out
}

// Enter descends into the folder at row i. For a file, or an index out of
// range, it returns s unchanged and ok=false.
func (s State) Enter(i int) (State, bool, error) {
	e, ok := s.EntryAt(i)
	if !ok || !e.IsDir {
		return s, false, nil
	}
	next, err := Load(e.Path, s.NameWidth)
	if err != nil {
		return s, false, err
	}
	return next, true, nil
}

// Parent moves to the parent directory. At the filesystem root it is a
// no-op.
func (s State) Parent() (State, error) {
	parent := filepath.Dir(s.Dir)
	if parent == s.Dir {
		return s, nil
	}
	return Load(parent, s.NameWidth)
}

// Refresh re-reads the current directory.
func (s State) Refresh() (State, error) {
	return Load(s.Dir, s.NameWidth)
}

// Header is the caption for the listing.
func (s State) Header() string {
	return fs.Header(s.Dir, len(s.Entries))
}
