// Package fileops applies trash, move, open and rename to a multi-item
// selection. Items are processed independently: one failure is recorded
// and the rest of the batch still runs.
package fileops

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"

	"github.com/justyntemme/glance/internal/debug"
	"github.com/justyntemme/glance/internal/errors"
	"github.com/justyntemme/glance/internal/fs"
)

// Trasher moves a path into the trash.
type Trasher interface {
	MoveToTrash(path string) error
}

// Opener launches a path with the default application.
type Opener interface {
	Open(path string) error
}

// ItemFailure is the error for one item of a batch.
type ItemFailure struct {
	Path string
	Err  error
}

// Result reports which items of a batch succeeded and which failed.
type Result struct {
	Op        string
	Succeeded []string
	Failures  []ItemFailure
}

// Err joins the per-item failures, or returns nil when every item worked.
func (r Result) Err() error {
	if len(r.Failures) == 0 {
		return nil
	}
	errs := make([]error, len(r.Failures))
	for i, f := range r.Failures {
		errs[i] = errors.Wrap(f.Err, errors.OperationFailure, r.Op, f.Path)
	}
	return errors.Join(errs...)
}

// Summary is a one-line status message.
func (r Result) Summary() string {
	if len(r.Failures) == 0 {
		return fmt.Sprintf("%s: %d item(s)", r.Op, len(r.Succeeded))
	}
	return fmt.Sprintf("%s: %d succeeded, %d failed", r.Op, len(r.Succeeded), len(r.Failures))
}

func (r *Result) record(path string, err error) {
	if err != nil {
		debug.Log(debug.OPS, "%s %q: %v", r.Op, path, err)
		r.Failures = append(r.Failures, ItemFailure{Path: path, Err: err})
		return
	}
	r.Succeeded = append(r.Succeeded, path)
}

func each(op string, paths []string, fn func(string) error) Result {
	r := Result{Op: op}
	for _, p := range paths {
		r.record(p, fn(p))
	}
	debug.Log(debug.OPS, "%s", r.Summary())
	return r
}

// Trash moves each path into the bin.
func Trash(bin Trasher, paths []string) Result {
	return each("trash", paths, bin.MoveToTrash)
}

// Move moves each path into destDir, keeping its name. Existing files in
// destDir are never replaced.
func Move(paths []string, destDir string) Result {
	info, err := os.Stat(destDir)
	if err == nil && !info.IsDir() {
		err = errors.New(errors.InvalidInput, "destination is not a directory")
	}
	return each("move", paths, func(p string) error {
		if err != nil {
			return err
		}
		if fs.Within(destDir, p) {
			return errors.Newf(errors.InvalidInput, "cannot move %s into itself", filepath.Base(p))
		}
		dst := filepath.Join(destDir, filepath.Base(p))
		if filepath.Clean(p) == filepath.Clean(dst) {
			return nil
		}
		return fs.MovePath(p, dst)
	})
}

// Open launches each path.
func Open(o Opener, paths []string) Result {
	return each("open", paths, o.Open)
}

// RenamedName builds prefix + base + suffix + extension.
func RenamedName(name, prefix, suffix string) string {
	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)
	if base == "" {
		// dotfile: the whole name is the base
		base, ext = name, ""
	}
	return prefix + base + suffix + ext
}

// Rename adds prefix and suffix around the base name of each path.
func Rename(paths []string, prefix, suffix string) Result {
	if prefix == "" && suffix == "" {
		r := Result{Op: "rename"}
		for _, p := range paths {
			r.record(p, errors.New(errors.InvalidInput, "prefix and suffix are both empty"))
		}
		return r
	}
	return each("rename", paths, func(p string) error {
		dst := filepath.Join(filepath.Dir(p), RenamedName(filepath.Base(p), prefix, suffix))
		if fs.Exists(dst) {
			return errors.Wrap(os.ErrExist, errors.OperationFailure, "rename", dst)
		}
		if err := os.Rename(p, dst); err != nil {
			return errors.Wrap(err, errors.OperationFailure, "rename", p)
		}
		return nil
	})
}

// SelectMatching returns the indices of entries whose name matches the
// glob pattern.
func SelectMatching(entries []fs.Entry, pattern string) ([]int, error) {
	g, err := glob.Compile(pattern)
	if err != nil {
		return nil, errors.Wrap(err, errors.InvalidInput, "match", pattern)
	}
	var out []int
	for i, e := range entries {
		if g.Match(e.Name) {
			out = append(out, i)
		}
	}
	return out, nil
}

// Paths returns the paths of entries.
func Paths(entries []fs.Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Path
	}
	return out
}
