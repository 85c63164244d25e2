package fs

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/justyntemme/glance/internal/debug"
	"github.com/justyntemme/glance/internal/errors"
)

var errIntoItself = errors.New(errors.InvalidInput, "cannot move a folder into itself")

// Exists reports whether anything (including a broken symlink) is at path.
func Exists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}

// Within reports whether path is dir itself or lies below it. Both are
// made absolute first; symlinks are resolved where they exist.
func Within(path, dir string) bool {
	path, dir = resolved(path), resolved(dir)
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}

// resolved returns the absolute, symlink-free form of p. A missing tail is
// kept as written below its deepest existing ancestor.
func resolved(p string) string {
	abs, err := filepath.Abs(p)
	if err != nil {
		return filepath.Clean(p)
	}
	var tail []string
	for cur := abs; ; {
		if target, err := filepath.EvalSymlinks(cur); err == nil {
			for i := len(tail) - 1; i >= 0; i-- {
				target = filepath.Join(target, tail[i])
			}
			return target
		}
		parent := filepath.Dir(cur)
		if parent == cur {
			return abs
		}
		tail = append(tail, filepath.Base(cur))
		cur = parent
	}
}

// MovePath moves src to dst, refusing to replace an existing dst or to move
// a folder into itself. Only when the rename crosses filesystems is the
// tree copied and the source removed.
func MovePath(src, dst string) error {
	if Within(dst, src) {
		return errors.Wrap(errIntoItself, errors.InvalidInput, "move", src)
	}
	if Exists(dst) {
		return errors.Wrap(os.ErrExist, errors.OperationFailure, "move", dst)
	}
	err := os.Rename(src, dst)
	switch {
	case err == nil:
		return nil
	case !Exists(src):
		return errors.Wrap(err, errors.NotFound, "move", src)
	case !crossDevice(err):
		return errors.Wrap(err, errors.OperationFailure, "move", src)
	}

	debug.Log(debug.OPS, "MovePath: %q is on another device, copying", src)
	info, err := os.Lstat(src)
	if err != nil {
		return errors.Wrap(err, errors.NotFound, "move", src)
	}
	if err := copyTree(src, dst, info); err != nil {
		os.RemoveAll(dst)
		return errors.Wrap(err, errors.OperationFailure, "move", src)
	}
	if err := os.RemoveAll(src); err != nil {
		return errors.Wrap(err, errors.OperationFailure, "move", src)
	}
	return nil
}

func copyTree(src, dst string, info os.FileInfo) error {
	switch {
	case info.Mode()&os.ModeSymlink != 0:
		target, err := os.Readlink(src)
		if err != nil {
			return err
		}
		return os.Symlink(target, dst)
	case info.IsDir():
		if err := os.MkdirAll(dst, info.Mode().Perm()); err != nil {
			return err
		}
		entries, err := os.ReadDir(src)
		if err != nil {
			return err
		}
		for _, e := range entries {
			child, err := os.Lstat(filepath.Join(src, e.Name()))
			if err != nil {
				return err
			}
			if err := copyTree(filepath.Join(src, e.Name()), filepath.Join(dst, e.Name()), child); err != nil {
				return err
			}
		}
		return nil
	default:
		return copyFile(src, dst, info.Mode().Perm())
	}
}

func copyFile(src, dst string, perm os.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, perm)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
