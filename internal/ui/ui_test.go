package ui

import (
	"context"
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/justyntemme/glance/internal/browse"
	"github.com/justyntemme/glance/internal/preview"
	"github.com/justyntemme/glance/internal/search"
	"github.com/justyntemme/glance/internal/store"
	"github.com/justyntemme/glance/internal/trash"
	"github.com/justyntemme/glance/internal/watch"
)

type fakeClipboard struct{ text string }

func (c *fakeClipboard) WriteAll(text string) error {
	c.text = text
	return nil
}

type fakeOpener struct{ opened []string }

func (o *fakeOpener) Open(path string) error {
	o.opened = append(o.opened, path)
	return nil
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "backspace":
		return tea.KeyMsg{Type: tea.KeyBackspace}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func typeText(t *testing.T, m tea.Model, text string) {
	t.Helper()
	for _, r := range text {
		m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

// run executes cmd and feeds its message back into m.
func run(m tea.Model, cmd tea.Cmd) {
	if cmd == nil {
		return
	}
	if msg := cmd(); msg != nil {
		m.Update(msg)
	}
}

type fixture struct {
	dir       string
	model     *BrowserModel
	opener    *fakeOpener
	clipboard *fakeClipboard
	bin       trash.Dir
}

func newFixture(t *testing.T, confirm bool) *fixture {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "photos"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "photos", "inside.txt"), []byte("x"), 0o644))
	for _, name := range []string{"a.txt", "b.txt", "c.log"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(name), 0o644))
	}

	state, err := browse.Load(dir, 30)
	require.NoError(t, err)

	f := &fixture{
		dir:       state.Dir,
		opener:    &fakeOpener{},
		clipboard: &fakeClipboard{},
		bin:       trash.Dir{Root: filepath.Join(t.TempDir(), "Trash")},
	}
	f.model = NewBrowser(state, BrowserDeps{
		Resolver:      preview.NewResolver(nil),
		Trash:         f.bin,
		Opener:        f.opener,
		Clipboard:     f.clipboard,
		ConfirmDelete: confirm,
	})
	return f
}

func TestBrowser_InitialState(t *testing.T) {
	f := newFixture(t, true)
	m := f.model
	assert.Equal(t, 4, m.State().Len())
	assert.Equal(t, 0, m.Cursor())

	// cursor starts on the folder, so the preview is a folder summary
	summary, ok := m.Preview().(*preview.FolderSummary)
	require.True(t, ok)
	assert.Equal(t, 1, summary.FileCount)
	assert.Contains(t, m.View(), "Current Directory: ")
}

func TestBrowser_CursorUpdatesPreview(t *testing.T) {
	f := newFixture(t, true)
	m := f.model
	m.Update(key("j"))
	assert.Equal(t, 1, m.Cursor())
	info, ok := m.Preview().(*preview.FileInfo)
	require.True(t, ok)
	assert.Equal(t, "a.txt", info.Name)

	m.Update(key("G"))
	assert.Equal(t, 3, m.Cursor())
	m.Update(key("j"))
	assert.Equal(t, 3, m.Cursor(), "cursor stays on the last row")
}

func TestBrowser_EnterAndParent(t *testing.T) {
	f := newFixture(t, true)
	m := f.model

	m.Update(key("enter"))
	assert.Equal(t, filepath.Join(f.dir, "photos"), m.State().Dir)
	assert.Equal(t, 1, m.State().Len())

	m.Update(key("backspace"))
	assert.Equal(t, f.dir, m.State().Dir)
}

func TestBrowser_EnterOnFileOpensIt(t *testing.T) {
	f := newFixture(t, true)
	m := f.model
	m.Update(key("j"))
	_, cmd := m.Update(key("enter"))
	run(m, cmd)
	assert.Equal(t, []string{filepath.Join(f.dir, "a.txt")}, f.opener.opened)
	assert.Equal(t, f.dir, m.State().Dir)
}

func TestBrowser_TrashSelectionWithConfirm(t *testing.T) {
	f := newFixture(t, true)
	m := f.model

	m.Update(key("j"))
	m.Update(key(" ")) // select a.txt, cursor moves to b.txt
	m.Update(key(" ")) // select b.txt
	assert.True(t, m.IsSelected(filepath.Join(f.dir, "a.txt")))
	assert.True(t, m.IsSelected(filepath.Join(f.dir, "b.txt")))

	_, cmd := m.Update(key("d"))
	assert.Nil(t, cmd, "confirmation comes first")
	assert.Contains(t, m.View(), "Move 2 item(s) to trash?")

	_, cmd = m.Update(key("y"))
	run(m, cmd)

	assert.NoFileExists(t, filepath.Join(f.dir, "a.txt"))
	assert.NoFileExists(t, filepath.Join(f.dir, "b.txt"))
	assert.FileExists(t, filepath.Join(f.dir, "c.log"))
	assert.Equal(t, 2, m.State().Len())
	assert.Equal(t, "trash: 2 item(s)", m.Status())

	items, err := f.bin.List()
	require.NoError(t, err)
	assert.Len(t, items, 2)
}

func TestBrowser_TrashCancelled(t *testing.T) {
	f := newFixture(t, true)
	m := f.model
	m.Update(key("j"))
	m.Update(key("d"))
	_, cmd := m.Update(key("n"))
	assert.Nil(t, cmd)
	assert.FileExists(t, filepath.Join(f.dir, "a.txt"))
	assert.Equal(t, "Cancelled", m.Status())
}

func TestBrowser_TrashWithoutConfirm(t *testing.T) {
	f := newFixture(t, false)
	m := f.model
	m.Update(key("G")) // c.log
	_, cmd := m.Update(key("d"))
	run(m, cmd)
	assert.NoFileExists(t, filepath.Join(f.dir, "c.log"))
}

func TestBrowser_CopyPath(t *testing.T) {
	f := newFixture(t, true)
	m := f.model
	m.Update(key("j"))
	m.Update(key("y"))
	assert.Equal(t, filepath.Join(f.dir, "a.txt"), f.clipboard.text)
	assert.Equal(t, "Copied 1 path(s)", m.Status())
}

func TestBrowser_SelectMatching(t *testing.T) {
	f := newFixture(t, true)
	m := f.model
	m.Update(key("*"))
	typeText(t, m, "*.txt")
	m.Update(key("enter"))

	assert.True(t, m.IsSelected(filepath.Join(f.dir, "a.txt")))
	assert.True(t, m.IsSelected(filepath.Join(f.dir, "b.txt")))
	assert.False(t, m.IsSelected(filepath.Join(f.dir, "c.log")))
}

func TestBrowser_Rename(t *testing.T) {
	f := newFixture(t, true)
	m := f.model
	m.Update(key("j")) // a.txt

	m.Update(key("R"))
	typeText(t, m, "new_")
	m.Update(key("enter"))
	typeText(t, m, "_v2")
	_, cmd := m.Update(key("enter"))
	run(m, cmd)

	assert.FileExists(t, filepath.Join(f.dir, "new_a_v2.txt"))
	assert.NoFileExists(t, filepath.Join(f.dir, "a.txt"))
}

func TestBrowser_Move(t *testing.T) {
	f := newFixture(t, true)
	m := f.model
	m.Update(key("j")) // a.txt

	m.Update(key("m"))
	// the prompt starts at the current dir; replace it with a relative path
	m.input.SetValue("photos")
	_, cmd := m.Update(key("enter"))
	run(m, cmd)

	assert.FileExists(t, filepath.Join(f.dir, "photos", "a.txt"))
	assert.NoFileExists(t, filepath.Join(f.dir, "a.txt"))
}

func TestBrowser_DirChangedReloads(t *testing.T) {
	f := newFixture(t, true)
	m := f.model
	require.NoError(t, os.WriteFile(filepath.Join(f.dir, "d.txt"), nil, 0o644))

	m.Update(dirChangedMsg{dir: "/somewhere/else"})
	assert.Equal(t, 4, m.State().Len())

	m.Update(dirChangedMsg{dir: f.dir})
	assert.Equal(t, 5, m.State().Len())
}

func TestBrowser_Quit(t *testing.T) {
	f := newFixture(t, true)
	_, cmd := f.model.Update(key("q"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

type stubSearcher struct{}

func (stubSearcher) Search(ctx context.Context, query string, limit int) search.Outcome {
	if query == "fail" {
		return search.Outcome{Query: query, Err: errors.New(search.RateLimitedMessage)}
	}
	var results []search.Result
	for i := 0; i < limit && query != "nothing"; i++ {
		results = append(results, search.Result{
			Title:       fmt.Sprintf("%s %d", query, i),
			Description: search.NoDescription,
			URL:         fmt.Sprintf("https://example.org/%d", i),
		})
	}
	return search.Outcome{Query: query, Results: results}
}

func newSearch(t *testing.T) (*SearchModel, *fakeOpener, *fakeClipboard) {
	t.Helper()
	d := search.NewDispatcher(stubSearcher{}, 0)
	t.Cleanup(d.Close)
	o := &fakeOpener{}
	c := &fakeClipboard{}
	return NewSearch(SearchDeps{Dispatcher: d, Opener: o, Clipboard: c, Limit: 10}), o, c
}

func awaitOutcome(t *testing.T, m *SearchModel) {
	t.Helper()
	select {
	case out := <-m.deps.Dispatcher.Outcomes():
		m.Update(outcomeMsg{outcome: out})
	case <-time.After(2 * time.Second):
		t.Fatal("no outcome")
	}
}

func TestSearch_SubmitAndShowResults(t *testing.T) {
	m, opener, clip := newSearch(t)
	typeText(t, m, "golang")
	_, cmd := m.Update(key("enter"))
	assert.NotNil(t, cmd)
	assert.True(t, m.Searching())

	awaitOutcome(t, m)
	assert.False(t, m.Searching())
	assert.Len(t, m.Results(), 10)
	assert.Equal(t, "✅ Found 10 results for 'golang'", m.Status())

	// results have focus now
	m.Update(key("j"))
	m.Update(key("o"))
	assert.Equal(t, []string{"https://example.org/1"}, opener.opened)
	m.Update(key("y"))
	assert.Equal(t, "https://example.org/1", clip.text)
}

func TestSearch_EmptyQuery(t *testing.T) {
	m, _, _ := newSearch(t)
	_, cmd := m.Update(key("enter"))
	assert.Nil(t, cmd)
	assert.False(t, m.Searching())
	assert.Equal(t, "Please enter a search term", m.Status())
}

func TestSearch_NoResults(t *testing.T) {
	m, _, _ := newSearch(t)
	typeText(t, m, "nothing")
	m.Update(key("enter"))
	awaitOutcome(t, m)
	assert.Empty(t, m.Results())
	assert.Equal(t, "No results found", m.Status())
}

func TestSearch_Failure(t *testing.T) {
	m, _, _ := newSearch(t)
	typeText(t, m, "fail")
	m.Update(key("enter"))
	awaitOutcome(t, m)
	assert.Equal(t, search.RateLimitedMessage, m.Status())
	assert.Contains(t, m.View(), "❌")
}

func TestSearch_IgnoresStaleOutcome(t *testing.T) {
	m, _, _ := newSearch(t)
	typeText(t, m, "golang")
	m.Update(key("enter"))
	awaitOutcome(t, m)
	require.Len(t, m.Results(), 10)

	m.Update(outcomeMsg{outcome: search.Outcome{Seq: 0, Query: "old"}})
	assert.Len(t, m.Results(), 10)
}

func TestSearch_CycleLimit(t *testing.T) {
	m, _, _ := newSearch(t)
	assert.Equal(t, 10, m.Limit())
	m.Update(key("tab"))
	assert.Equal(t, 15, m.Limit())
	m.Update(key("tab"))
	assert.Equal(t, 20, m.Limit())
	m.Update(key("tab"))
	assert.Equal(t, 5, m.Limit())
}

func TestNearestLimit(t *testing.T) {
	assert.Equal(t, 10, nearestLimit(0))
	assert.Equal(t, 5, nearestLimit(3))
	assert.Equal(t, 15, nearestLimit(12))
	assert.Equal(t, 20, nearestLimit(50))
}

func closedHistory(t *testing.T) *store.History {
	t.Helper()
	h, err := store.Open(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	require.NoError(t, h.Close())
	return h
}

func TestBrowser_HistoryFailureShownInStatus(t *testing.T) {
	state, err := browse.Load(t.TempDir(), 30)
	require.NoError(t, err)

	m := NewBrowser(state, BrowserDeps{History: closedHistory(t)})
	assert.Contains(t, m.Status(), "History not saved")
}

func TestBrowser_WatchFailureShownInStatus(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "gone")
	require.NoError(t, os.Mkdir(dir, 0o755))
	state, err := browse.Load(dir, 30)
	require.NoError(t, err)
	require.NoError(t, os.Remove(dir))

	w, err := watch.New(20 * time.Millisecond)
	require.NoError(t, err)
	defer w.Close()

	m := NewBrowser(state, BrowserDeps{Watcher: w})
	assert.Contains(t, m.Status(), "Not watching for changes")
}

func TestBrowser_RefreshClearsThumbnails(t *testing.T) {
	f := newFixture(t, true)
	cache := preview.NewThumbnailCache(4)
	f.model.deps.Resolver.Cache = cache
	cache.Put("/x.png", 1, time.Now(), &preview.Thumbnail{Image: image.NewRGBA(image.Rect(0, 0, 1, 1))})
	require.Equal(t, 1, cache.Len())

	f.model.Update(key("r"))
	assert.Zero(t, cache.Len())
	assert.Equal(t, "Refreshed", f.model.Status())
}

func TestSearch_HistoryFailureShownInStatus(t *testing.T) {
	d := search.NewDispatcher(stubSearcher{}, 0)
	t.Cleanup(d.Close)
	m := NewSearch(SearchDeps{Dispatcher: d, History: closedHistory(t), Limit: 10})

	typeText(t, m, "golang")
	m.Update(key("enter"))
	awaitOutcome(t, m)
	assert.Len(t, m.Results(), 10)
	assert.Contains(t, m.Status(), "✅ Found 10 results for 'golang' (history not saved: ")
}

func TestBrowser_PreviewDrawsThumbnail(t *testing.T) {
	f := newFixture(t, true)
	f.model.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	f.model.preview = &preview.FileInfo{
		Name: "photo.png",
		Path: "/photo.png",
		Thumbnail: &preview.Thumbnail{
			Image:    image.NewRGBA(image.Rect(0, 0, 64, 32)),
			Original: image.Pt(640, 320),
		},
	}

	view := f.model.View()
	assert.Contains(t, view, "▀")
	assert.Contains(t, view, "640x320")
}
