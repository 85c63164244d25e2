package preview

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/justyntemme/glance/internal/errors"
	"github.com/justyntemme/glance/internal/fs"
)

type fakeDecoder struct {
	calls int
	err   error
}

func (d *fakeDecoder) Decode(data []byte, frame image.Point) (*Thumbnail, error) {
	d.calls++
	if d.err != nil {
		return nil, d.err
	}
	return &Thumbnail{
		Image:    image.NewRGBA(image.Rect(0, 0, frame.X, frame.Y)),
		Original: image.Pt(frame.X*2, frame.Y*2),
	}, nil
}

func touch(t *testing.T, path string, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestResolveDir_TruncatesButCountsAll(t *testing.T) {
	dir := t.TempDir()
	for i := 0; i < 15; i++ {
		touch(t, filepath.Join(dir, fmt.Sprintf("file%02d.txt", i)), "x")
	}
	for i := 0; i < 3; i++ {
		require.NoError(t, os.Mkdir(filepath.Join(dir, fmt.Sprintf("sub%d", i)), 0o755))
	}

	r := NewResolver(nil)
	st := r.Resolve(dir)
	summary, ok := st.(*FolderSummary)
	require.True(t, ok, "expected folder summary, got %T", st)

	assert.Equal(t, 15, summary.FileCount)
	assert.Equal(t, 3, summary.FolderCount)
	assert.Len(t, summary.Files, 10)
	assert.Len(t, summary.Folders, 3)
	assert.Equal(t, "file00.txt", summary.Files[0])
	assert.Empty(t, summary.Note)

	text := summary.Text()
	assert.Contains(t, text, "Files: 15")
	assert.Contains(t, text, "Folders: 3")
	assert.NotContains(t, text, "file14.txt")
}

func TestResolveDir_Empty(t *testing.T) {
	summary := NewResolver(nil).ResolveDir(t.TempDir()).(*FolderSummary)
	assert.Zero(t, summary.FileCount)
	assert.Zero(t, summary.FolderCount)
	assert.Empty(t, summary.Files)
	assert.Empty(t, summary.Folders)
}

func TestResolveDir_UnreadableBecomesNote(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "gone")
	summary := NewResolver(nil).ResolveDir(missing).(*FolderSummary)
	assert.Zero(t, summary.FileCount)
	assert.Zero(t, summary.FolderCount)
	assert.Contains(t, summary.Note, "Error reading folder")
	assert.Contains(t, summary.Text(), "Error reading folder")
}

func TestResolve_FileInfo(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "Report.PDF")
	touch(t, path, "0123456789")

	info, ok := NewResolver(nil).Resolve(path).(*FileInfo)
	require.True(t, ok)
	assert.Equal(t, "Report.PDF", info.Name)
	assert.Equal(t, "10.0B", info.Size)
	assert.Equal(t, ".PDF", info.Extension)
	assert.Nil(t, info.Thumbnail)
	assert.Empty(t, info.Note)
	assert.Contains(t, info.Text(), "Type: .PDF")
	assert.Contains(t, info.Badge(), ".PDF")
}

func TestResolve_NoExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Makefile")
	touch(t, path, "all:")

	info := NewResolver(nil).Resolve(path).(*FileInfo)
	assert.Equal(t, "File", info.Extension)
	assert.Contains(t, info.Badge(), "FILE")
}

func TestResolve_MissingPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nope.png")
	info := NewResolver(&fakeDecoder{}).Resolve(path).(*FileInfo)
	assert.Contains(t, info.Note, "Error loading file info")
}

func TestResolveEntry_ImageUsesDecoderAndCache(t *testing.T) {
	path := filepath.Join(t.TempDir(), "photo.JPG")
	touch(t, path, "not really a jpeg")

	dec := &fakeDecoder{}
	r := NewResolver(dec)
	r.Cache = NewThumbnailCache(4)

	e := fs.Entry{Name: "photo.JPG", Path: path, Size: 17, ModTime: time.Unix(1700000000, 0)}
	info := r.ResolveEntry(e).(*FileInfo)
	require.NotNil(t, info.Thumbnail)
	assert.Equal(t, DefaultFrame, info.Thumbnail.Size())
	assert.Equal(t, 1, dec.calls)

	// Same version comes from the cache.
	info = r.ResolveEntry(e).(*FileInfo)
	require.NotNil(t, info.Thumbnail)
	assert.Equal(t, 1, dec.calls)

	// A changed file is decoded again.
	e.ModTime = e.ModTime.Add(time.Second)
	r.ResolveEntry(e)
	assert.Equal(t, 2, dec.calls)
}

func TestResolveEntry_DecodeFailureBecomesNote(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.png")
	touch(t, path, "garbage")

	dec := &fakeDecoder{err: errors.New(errors.DecodeFailure, "bad header")}
	info := NewResolver(dec).Resolve(path).(*FileInfo)
	assert.Nil(t, info.Thumbnail)
	assert.Equal(t, "Cannot preview\nbad header", info.Note)
	assert.Equal(t, info.Note, info.Badge())
}

func TestResolveEntry_NonImageSkipsDecoder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.txt")
	touch(t, path, "hello")

	dec := &fakeDecoder{}
	NewResolver(dec).Resolve(path)
	assert.Zero(t, dec.calls)
}

func TestResolveEntry_TooLargeForThumbnail(t *testing.T) {
	path := filepath.Join(t.TempDir(), "huge.png")
	touch(t, path, "0123456789")

	dec := &fakeDecoder{}
	r := NewResolver(dec)
	r.MaxImageBytes = 4
	info := r.Resolve(path).(*FileInfo)
	assert.Zero(t, dec.calls)
	assert.Contains(t, info.Note, "Cannot preview")
}

func TestResolveEntry_HugeDimensionsGetNote(t *testing.T) {
	path := filepath.Join(t.TempDir(), "huge.png")
	require.NoError(t, os.WriteFile(path, pngHeader(20000, 20000), 0o644))

	start := time.Now()
	info := NewResolver(NewDecoder("lanczos", 0)).Resolve(path).(*FileInfo)
	assert.Less(t, time.Since(start), 2*time.Second)
	assert.Nil(t, info.Thumbnail)
	assert.True(t, strings.HasPrefix(info.Note, "Cannot preview\nimage too large to preview"), info.Note)
}

func TestIsImage(t *testing.T) {
	for _, name := range []string{"a.jpg", "b.JPEG", "c.png", "d.Gif", "e.bmp"} {
		assert.True(t, IsImage(name), name)
	}
	for _, name := range []string{"a.heic", "b.txt", "png", ""} {
		assert.False(t, IsImage(name), name)
	}
}
