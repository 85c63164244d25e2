// Package preview resolves the preview panel for a selected entry: a folder
// summary for directories, file details (and an optional thumbnail) for
// files. Resolution never fails; problems become notes in the result.
package preview

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/justyntemme/glance/internal/debug"
	"github.com/justyntemme/glance/internal/fs"
)

const (
	// DefaultMaxListed is how many names per category a folder summary shows.
	DefaultMaxListed = 10

	// DefaultMaxImageBytes caps how much is read for a thumbnail.
	DefaultMaxImageBytes = 64 << 20

	genericType = "File"
)

var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".bmp":  true,
}

// IsImage reports whether name has a raster image extension.
func IsImage(name string) bool {
	return imageExtensions[strings.ToLower(filepath.Ext(name))]
}

// State is the active preview. It is either a *FolderSummary or a *FileInfo.
type State interface {
	Text() string
	isState()
}

// FolderSummary describes a directory. Folders and Files hold at most
// MaxListed names; the counts cover everything in the directory.
type FolderSummary struct {
	Name        string
	Path        string
	Folders     []string
	Files       []string
	FolderCount int
	FileCount   int
	Note        string // set when the directory could not be read
}

func (*FolderSummary) isState() {}

// Text renders the summary the way the info panel shows it.
func (s *FolderSummary) Text() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Folder: %s\n", s.Name)
	fmt.Fprintf(&b, "Path: %s\n", s.Path)
	if s.Note != "" {
		fmt.Fprintf(&b, "%s\n", s.Note)
		return b.String()
	}
	fmt.Fprintf(&b, "Folders: %s\n", humanize.Comma(int64(s.FolderCount)))
	fmt.Fprintf(&b, "Files: %s\n", humanize.Comma(int64(s.FileCount)))

	if len(s.Folders) > 0 {
		b.WriteString("\nRecent Folders:\n")
		for _, d := range s.Folders {
			fmt.Fprintf(&b, "  %s %s\n", fs.FolderGlyph, d)
		}
	}
	if len(s.Files) > 0 {
		b.WriteString("\nRecent Files:\n")
		for _, f := range s.Files {
			fmt.Fprintf(&b, "  %s %s\n", fs.FileGlyph, f)
		}
	}
	return b.String()
}

// Badge is the short caption drawn in place of an image.
func (s *FolderSummary) Badge() string {
	if s.Note != "" {
		return fs.FolderGlyph + "\nFolder"
	}
	return fmt.Sprintf("%s\n%d files\n%d folders", fs.FolderGlyph, s.FileCount, s.FolderCount)
}

// FileInfo describes a single file.
type FileInfo struct {
	Name      string
	Path      string
	SizeBytes uint64
	Size      string // FormatSize
	Modified  string // FormatDetailTime
	Age       string // "3 days ago"
	Extension string // ".PNG", or "File" without an extension
	Thumbnail *Thumbnail
	Note      string // decode or stat failure
}

func (*FileInfo) isState() {}

// Text renders the file details.
func (f *FileInfo) Text() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Name: %s\n", f.Name)
	if f.Size != "" {
		fmt.Fprintf(&b, "Size: %s\n", f.Size)
		fmt.Fprintf(&b, "Modified: %s\n", f.Modified)
		if f.Age != "" {
			fmt.Fprintf(&b, "Age: %s\n", f.Age)
		}
		fmt.Fprintf(&b, "Type: %s\n", f.Extension)
	}
	fmt.Fprintf(&b, "Path: %s", f.Path)
	if f.Note != "" {
		fmt.Fprintf(&b, "\n\n%s", f.Note)
	}
	return b.String()
}

// Badge is the caption drawn when there is no thumbnail.
func (f *FileInfo) Badge() string {
	if f.Note != "" {
		return f.Note
	}
	label := f.Extension
	if label == genericType || label == "" {
		label = "FILE"
	}
	return fs.FileGlyph + "\n" + label
}

// Resolver builds preview states.
type Resolver struct {
	// Decoder renders thumbnails; nil disables them.
	Decoder   ImageDecoder
	Frame     image.Point
	MaxListed int
	// MaxImageBytes skips decoding of larger files; <= 0 means no limit.
	MaxImageBytes int64
	Cache         *ThumbnailCache
}

// NewResolver returns a resolver with default frame and limits.
func NewResolver(decoder ImageDecoder) *Resolver {
	return &Resolver{
		Decoder:       decoder,
		Frame:         DefaultFrame,
		MaxListed:     DefaultMaxListed,
		MaxImageBytes: DefaultMaxImageBytes,
	}
}

// Resolve previews whatever is at path.
func (r *Resolver) Resolve(path string) State {
	info, err := os.Stat(path)
	if err != nil {
		debug.Log(debug.PREVIEW, "Resolve: stat %q: %v", path, err)
		return &FileInfo{
			Name: filepath.Base(path),
			Path: path,
			Note: "Error loading file info: " + err.Error(),
		}
	}
	if info.IsDir() {
		return r.ResolveDir(path)
	}
	return r.ResolveEntry(fs.Entry{
		Name:    info.Name(),
		Path:    path,
		Size:    uint64(info.Size()),
		ModTime: info.ModTime(),
	})
}

// ResolveEntry previews a listed entry using its snapshot metadata.
func (r *Resolver) ResolveEntry(e fs.Entry) State {
	if e.IsDir {
		return r.ResolveDir(e.Path)
	}
	return r.fileInfo(e)
}

// ResolveDir summarizes the immediate children of dir.
func (r *Resolver) ResolveDir(dir string) State {
	summary := &FolderSummary{
		Name: filepath.Base(dir),
		Path: dir,
	}

	entries, err := fs.List(dir)
	if err != nil {
		debug.Log(debug.PREVIEW, "ResolveDir: %q: %v", dir, err)
		summary.Note = "Error reading folder: " + err.Error()
		return summary
	}

	folders, files := fs.Split(entries)
	summary.FolderCount = len(folders)
	summary.FileCount = len(files)
	summary.Folders = truncate(folders, r.maxListed())
	summary.Files = truncate(files, r.maxListed())
	return summary
}

func (r *Resolver) fileInfo(e fs.Entry) *FileInfo {
	ext := strings.ToUpper(filepath.Ext(e.Name))
	if ext == "" {
		ext = genericType
	}
	info := &FileInfo{
		Name:      e.Name,
		Path:      e.Path,
		SizeBytes: e.Size,
		Size:      fs.FormatSize(e.Size),
		Modified:  fs.FormatDetailTime(e.ModTime),
		Extension: ext,
	}
	if !e.ModTime.IsZero() {
		info.Age = humanize.Time(e.ModTime)
	}

	if r.Decoder == nil || !IsImage(e.Name) {
		return info
	}

	if thumb, ok := r.Cache.Get(e.Path, e.Size, e.ModTime); ok {
		info.Thumbnail = thumb
		return info
	}

	thumb, err := r.thumbnail(e)
	if err != nil {
		debug.Log(debug.PREVIEW, "thumbnail %q: %v", e.Path, err)
		info.Note = "Cannot preview\n" + err.Error()
		return info
	}
	r.Cache.Put(e.Path, e.Size, e.ModTime, thumb)
	info.Thumbnail = thumb
	return info
}

func (r *Resolver) thumbnail(e fs.Entry) (*Thumbnail, error) {
	if r.MaxImageBytes > 0 && e.Size > uint64(r.MaxImageBytes) {
		return nil, fmt.Errorf("image larger than %s", humanize.IBytes(uint64(r.MaxImageBytes)))
	}
	data, err := os.ReadFile(e.Path)
	if err != nil {
		return nil, err
	}
	frame := r.Frame
	if frame.X <= 0 || frame.Y <= 0 {
		frame = DefaultFrame
	}
	thumb, err := r.Decoder.Decode(data, frame)
	if err != nil {
		return nil, err
	}
	debug.Log(debug.PREVIEW, "thumbnail %q: %v -> %v", e.Path, thumb.Original, thumb.Size())
	return thumb, nil
}

func (r *Resolver) maxListed() int {
	if r.MaxListed <= 0 {
		return DefaultMaxListed
	}
	return r.MaxListed
}

func truncate(names []string, n int) []string {
	if len(names) > n {
		return names[:n:n]
	}
	return names
}
