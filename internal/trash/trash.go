// Package trash moves files to the user's trash instead of deleting them,
// and lists or empties what is already there.
package trash

import (
	"bufio"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/justyntemme/glance/internal/debug"
	"github.com/justyntemme/glance/internal/errors"
	"github.com/justyntemme/glance/internal/fs"
)

const deletionDateLayout = "2006-01-02T15:04:05"

// Item represents a file or directory in the trash
type Item struct {
	Name         string    // name inside the trash
	OriginalPath string    // where it was deleted from, when known
	TrashPath    string    // current path in trash
	DeletedAt    time.Time // when it was deleted
	Size         int64
	IsDir        bool
}

// Bin is a trash location.
type Bin interface {
	MoveToTrash(path string) error
	List() ([]Item, error)
	Empty() error
	DisplayName() string
}

// Dir is a directory-backed trash. With Flat unset it follows the
// freedesktop.org layout:
//
//	Root/files/<name>             trashed file
//	Root/info/<name>.trashinfo    original path and deletion date
//
// With Flat set, files go directly into Root and conflicting names get a
// timestamp, the way the macOS ~/.Trash works.
type Dir struct {
	Root string
	Flat bool
}

func (d Dir) filesPath() string {
	if d.Flat {
		return d.Root
	}
	return filepath.Join(d.Root, "files")
}

func (d Dir) infoPath() string {
	return filepath.Join(d.Root, "info")
}

func (d Dir) DisplayName() string {
	return "Trash"
}

// MoveToTrash moves path into the trash.
func (d Dir) MoveToTrash(path string) error {
	if d.Root == "" {
		return errors.New(errors.OperationFailure, "trash directory not found")
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return errors.Wrap(err, errors.InvalidInput, "trash", path)
	}
	if !fs.Exists(absPath) {
		return errors.Wrap(os.ErrNotExist, errors.NotFound, "trash", absPath)
	}

	if err := os.MkdirAll(d.filesPath(), 0o700); err != nil {
		return errors.Wrap(err, errors.OperationFailure, "trash", d.filesPath())
	}
	if d.Flat {
		dest := d.flatName(filepath.Base(absPath), time.Now())
		return d.move(absPath, dest)
	}

	if err := os.MkdirAll(d.infoPath(), 0o700); err != nil {
		return errors.Wrap(err, errors.OperationFailure, "trash", d.infoPath())
	}
	destName, infoFile, err := d.reserve(filepath.Base(absPath))
	if err != nil {
		return errors.Wrap(err, errors.OperationFailure, "trash", absPath)
	}

	content := fmt.Sprintf("[Trash Info]\nPath=%s\nDeletionDate=%s\n",
		escapePath(absPath), time.Now().Format(deletionDateLayout))
	if _, err := infoFile.WriteString(content); err != nil {
		infoFile.Close()
		os.Remove(infoFile.Name())
		return errors.Wrap(err, errors.OperationFailure, "trash", absPath)
	}
	infoFile.Close()

	if err := d.move(absPath, filepath.Join(d.filesPath(), destName)); err != nil {
		os.Remove(infoFile.Name())
		return err
	}
	return nil
}

func (d Dir) move(src, dst string) error {
	debug.Log(debug.OPS, "trash: %q -> %q", src, dst)
	return fs.MovePath(src, dst)
}

// reserve claims a unique name by exclusively creating its .trashinfo file.
func (d Dir) reserve(base string) (string, *os.File, error) {
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	name := base
	for n := 1; ; n++ {
		if !fs.Exists(filepath.Join(d.filesPath(), name)) {
			f, err := os.OpenFile(filepath.Join(d.infoPath(), name+".trashinfo"),
				os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
			if err == nil {
				return name, f, nil
			}
			if !os.IsExist(err) {
				return "", nil, err
			}
		}
		name = fmt.Sprintf("%s.%d%s", stem, n, ext)
	}
}

func (d Dir) flatName(base string, now time.Time) string {
	dest := filepath.Join(d.Root, base)
	if !fs.Exists(dest) {
		return dest
	}
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	stamp := now.Format("2006-01-02-150405")
	dest = filepath.Join(d.Root, fmt.Sprintf("%s %s%s", stem, stamp, ext))
	for n := 1; fs.Exists(dest); n++ {
		dest = filepath.Join(d.Root, fmt.Sprintf("%s %s.%d%s", stem, stamp, n, ext))
	}
	return dest
}

// List returns the items in the trash, most recently deleted first.
func (d Dir) List() ([]Item, error) {
	entries, err := os.ReadDir(d.filesPath())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrap(err, errors.NotFound, "trash list", d.filesPath())
	}

	var items []Item
	for _, entry := range entries {
		if d.Flat && fs.IsHidden(entry.Name()) {
			continue // .DS_Store and friends
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		item := Item{
			Name:      entry.Name(),
			TrashPath: filepath.Join(d.filesPath(), entry.Name()),
			DeletedAt: info.ModTime(),
			Size:      info.Size(),
			IsDir:     entry.IsDir(),
		}
		if !d.Flat {
			infoFile := filepath.Join(d.infoPath(), entry.Name()+".trashinfo")
			if orig, deleted, err := parseTrashInfo(infoFile); err == nil {
				item.OriginalPath = orig
				if !deleted.IsZero() {
					item.DeletedAt = deleted
				}
			}
		}
		items = append(items, item)
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].DeletedAt.After(items[j].DeletedAt)
	})
	return items, nil
}

// Empty permanently deletes everything in the trash. It keeps going after
// a failure and returns all of them joined.
func (d Dir) Empty() error {
	var errs []error
	for _, dir := range d.emptyDirs() {
		entries, err := os.ReadDir(dir)
		if err != nil {
			if !os.IsNotExist(err) {
				errs = append(errs, err)
			}
			continue
		}
		for _, entry := range entries {
			if d.Flat && entry.Name() == ".DS_Store" {
				continue
			}
			if err := os.RemoveAll(filepath.Join(dir, entry.Name())); err != nil {
				errs = append(errs, err)
			}
		}
	}
	if len(errs) > 0 {
		return errors.Wrap(errors.Join(errs...), errors.OperationFailure, "empty trash", d.Root)
	}
	return nil
}

func (d Dir) emptyDirs() []string {
	if d.Flat {
		return []string{d.Root}
	}
	return []string{d.filesPath(), d.infoPath()}
}

// escapePath percent-encodes each path segment, keeping the separators.
func escapePath(p string) string {
	parts := strings.Split(filepath.ToSlash(p), "/")
	for i, part := range parts {
		parts[i] = url.PathEscape(part)
	}
	return strings.Join(parts, "/")
}

func parseTrashInfo(path string) (originalPath string, deletionDate time.Time, err error) {
	file, err := os.Open(path)
	if err != nil {
		return "", time.Time{}, err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case strings.HasPrefix(line, "Path="):
			encoded := strings.TrimPrefix(line, "Path=")
			if decoded, err := url.PathUnescape(encoded); err == nil {
				originalPath = filepath.FromSlash(decoded)
			} else {
				originalPath = encoded
			}
		case strings.HasPrefix(line, "DeletionDate="):
			if t, err := time.ParseInLocation(deletionDateLayout, strings.TrimPrefix(line, "DeletionDate="), time.Local); err == nil {
				deletionDate = t
			}
		}
	}
	return originalPath, deletionDate, scanner.Err()
}
