package trash

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/justyntemme/glance/internal/errors"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestDir_MoveToTrash(t *testing.T) {
	work := t.TempDir()
	bin := Dir{Root: filepath.Join(t.TempDir(), "Trash")}

	src := filepath.Join(work, "report 1.txt")
	writeFile(t, src, "data")
	require.NoError(t, bin.MoveToTrash(src))

	_, err := os.Stat(src)
	assert.True(t, os.IsNotExist(err))

	data, err := os.ReadFile(filepath.Join(bin.Root, "files", "report 1.txt"))
	require.NoError(t, err)
	assert.Equal(t, "data", string(data))

	info, err := os.ReadFile(filepath.Join(bin.Root, "info", "report 1.txt.trashinfo"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(info), "[Trash Info]\nPath="))
	assert.Contains(t, string(info), "report%201.txt")
	assert.Contains(t, string(info), "DeletionDate=")

	items, err := bin.List()
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "report 1.txt", items[0].Name)
	assert.Equal(t, src, items[0].OriginalPath)
	assert.Equal(t, int64(4), items[0].Size)
	assert.WithinDuration(t, time.Now(), items[0].DeletedAt, time.Minute)
}

func TestDir_UniqueNames(t *testing.T) {
	bin := Dir{Root: filepath.Join(t.TempDir(), "Trash")}
	for i := 0; i < 3; i++ {
		dir := t.TempDir()
		src := filepath.Join(dir, "a.txt")
		writeFile(t, src, "x")
		require.NoError(t, bin.MoveToTrash(src))
	}

	for _, name := range []string{"a.txt", "a.1.txt", "a.2.txt"} {
		assert.FileExists(t, filepath.Join(bin.Root, "files", name))
		assert.FileExists(t, filepath.Join(bin.Root, "info", name+".trashinfo"))
	}
}

func TestDir_MoveDirectory(t *testing.T) {
	bin := Dir{Root: filepath.Join(t.TempDir(), "Trash")}
	src := filepath.Join(t.TempDir(), "folder")
	require.NoError(t, os.MkdirAll(filepath.Join(src, "inner"), 0o755))

	require.NoError(t, bin.MoveToTrash(src))
	assert.DirExists(t, filepath.Join(bin.Root, "files", "folder", "inner"))

	items, err := bin.List()
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.True(t, items[0].IsDir)
}

func TestDir_MissingSource(t *testing.T) {
	bin := Dir{Root: filepath.Join(t.TempDir(), "Trash")}
	err := bin.MoveToTrash(filepath.Join(t.TempDir(), "gone"))
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))

	entries, _ := os.ReadDir(filepath.Join(bin.Root, "info"))
	assert.Empty(t, entries, "no stray trashinfo")
}

func TestDir_Flat(t *testing.T) {
	bin := Dir{Root: t.TempDir(), Flat: true}
	writeFile(t, filepath.Join(bin.Root, ".DS_Store"), "")

	for i := 0; i < 2; i++ {
		src := filepath.Join(t.TempDir(), "photo.png")
		writeFile(t, src, "x")
		require.NoError(t, bin.MoveToTrash(src))
	}

	items, err := bin.List()
	require.NoError(t, err)
	require.Len(t, items, 2)
	names := []string{items[0].Name, items[1].Name}
	assert.Contains(t, names, "photo.png")

	require.NoError(t, bin.Empty())
	items, err = bin.List()
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.FileExists(t, filepath.Join(bin.Root, ".DS_Store"))
}

func TestDir_Empty(t *testing.T) {
	bin := Dir{Root: filepath.Join(t.TempDir(), "Trash")}
	require.NoError(t, bin.Empty(), "emptying a missing trash is fine")

	src := filepath.Join(t.TempDir(), "a.txt")
	writeFile(t, src, "x")
	require.NoError(t, bin.MoveToTrash(src))
	require.NoError(t, bin.Empty())

	items, err := bin.List()
	require.NoError(t, err)
	assert.Empty(t, items)
	infos, _ := os.ReadDir(filepath.Join(bin.Root, "info"))
	assert.Empty(t, infos)
}

func TestParseTrashInfo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "x.trashinfo")
	writeFile(t, path, "[Trash Info]\nPath=/home/u/My%20File.txt\nDeletionDate=2024-01-15T10:30:45\n")

	orig, deleted, err := parseTrashInfo(path)
	require.NoError(t, err)
	assert.Equal(t, filepath.FromSlash("/home/u/My File.txt"), orig)
	assert.Equal(t, 2024, deleted.Year())
	assert.Equal(t, 45, deleted.Second())
}

func TestEscapePath(t *testing.T) {
	assert.Equal(t, "/tmp/a%20b/c%23d.txt", escapePath("/tmp/a b/c#d.txt"))
}
