package fs

import (
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/charlievieth/fastwalk"
	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"

	"github.com/justyntemme/glance/internal/debug"
	"github.com/justyntemme/glance/internal/errors"
)

// Entry is a snapshot of one file or directory directly below a listed
// directory. A listing owns its entries; refreshing builds new ones.
type Entry struct {
	Name    string    `json:"name"`
	Path    string    `json:"path"`
	IsDir   bool      `json:"is_dir"`
	Size    uint64    `json:"size"` // zero for directories
	ModTime time.Time `json:"modified"`
}

// IsHidden reports whether a name carries the hidden-file marker.
func IsHidden(name string) bool {
	return len(name) > 0 && name[0] == '.'
}

// List reads one level of dir and returns its visible entries, folders
// first, each partition ordered by case-insensitive name. Either the whole
// listing succeeds or a single error is returned.
func List(dir string) ([]Entry, error) {
	dir = filepath.Clean(dir)
	debug.Log(debug.FS, "List: reading %q", dir)

	if err := checkReadable(dir); err != nil {
		debug.Log(debug.FS, "List: %q not readable: %v", dir, err)
		return nil, errors.Wrap(err, errors.NotFound, "list", dir)
	}

	var result []Entry
	var mu sync.Mutex

	conf := &fastwalk.Config{
		Follow: true, // classify symlinks by their target
	}

	dirLen := len(dir)

	err := fastwalk.Walk(conf, dir, func(fullPath string, d fs.DirEntry, err error) error {
		if fullPath == dir {
			return err
		}
		if err != nil && (d == nil || d.Type()&fs.ModeSymlink == 0) {
			return err
		}

		relStart := dirLen
		if relStart < len(fullPath) && (fullPath[relStart] == '/' || fullPath[relStart] == '\\') {
			relStart++
		}
		rel := fullPath[relStart:]
		if strings.ContainsAny(rel, "/\\") {
			if d.IsDir() {
				return fastwalk.SkipDir
			}
			return nil
		}

		if IsHidden(d.Name()) {
			if d.IsDir() {
				return fastwalk.SkipDir
			}
			return nil
		}

		info, err := fastwalk.StatDirEntry(fullPath, d)
		if err != nil {
			// Broken symlinks are listed as the link itself
			info, err = os.Lstat(fullPath)
			if err != nil {
				return err
			}
		}

		entry := Entry{
			Name:    norm.NFC.String(d.Name()),
			Path:    fullPath,
			IsDir:   info.IsDir(),
			ModTime: info.ModTime(),
		}
		if !entry.IsDir {
			entry.Size = uint64(info.Size())
		}

		debug.Log(debug.FS_ENTRY, "List: %q isDir=%v size=%d", entry.Name, entry.IsDir, entry.Size)

		mu.Lock()
		result = append(result, entry)
		mu.Unlock()

		if entry.IsDir {
			return fastwalk.SkipDir
		}
		return nil
	})
	if err != nil {
		debug.Log(debug.FS, "List: walk error: %v", err)
		return nil, errors.Wrap(err, errors.NotFound, "list", dir)
	}

	// fastwalk visits concurrently; restore directory-read order first so
	// ties below keep a deterministic enumeration order.
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	SortEntries(result)

	debug.Log(debug.FS, "List: returning %d entries", len(result))
	return result, nil
}

func checkReadable(dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return errors.New(errors.InvalidInput, "not a directory")
	}
	f, err := os.Open(dir)
	if err != nil {
		return err
	}
	defer f.Close()
	if _, err := f.Readdirnames(1); err != nil && err != io.EOF {
		return err
	}
	return nil
}

// SortEntries orders entries folders first, then by case-insensitive name.
// Entries that compare equal keep their relative order.
func SortEntries(entries []Entry) {
	fold := cases.Fold()
	keys := make(map[string]string, len(entries))
	key := func(name string) string {
		k, ok := keys[name]
		if !ok {
			k = fold.String(name)
			keys[name] = k
		}
		return k
	}
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].IsDir != entries[j].IsDir {
			return entries[i].IsDir
		}
		return key(entries[i].Name) < key(entries[j].Name)
	})
}

// Split separates entry names into folder and file names, preserving order.
func Split(entries []Entry) (dirs, files []string) {
	for _, e := range entries {
		if e.IsDir {
			dirs = append(dirs, e.Name)
		} else {
			files = append(files, e.Name)
		}
	}
	return dirs, files
}
