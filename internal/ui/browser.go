package ui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/justyntemme/glance/internal/browse"
	"github.com/justyntemme/glance/internal/debug"
	"github.com/justyntemme/glance/internal/fileops"
	"github.com/justyntemme/glance/internal/fs"
	"github.com/justyntemme/glance/internal/preview"
	"github.com/justyntemme/glance/internal/store"
	"github.com/justyntemme/glance/internal/watch"
)

// BrowserDeps are the collaborators of the browser. Nil Watcher and History
// disable those features.
type BrowserDeps struct {
	Resolver      *preview.Resolver
	Trash         fileops.Trasher
	Opener        fileops.Opener
	Clipboard     Clipboard
	Watcher       *watch.Watcher
	History       *store.History
	ConfirmDelete bool
}

// thumbnailRows is the height of the preview image in cells.
const thumbnailRows = 10

type promptKind int

const (
	promptNone promptKind = iota
	promptConfirmTrash
	promptMove
	promptRenamePrefix
	promptRenameSuffix
	promptMatch
)

// BrowserModel is the file browser: listing on the left, preview on the
// right.
type BrowserModel struct {
	deps     BrowserDeps
	state    browse.State
	cursor   int
	offset   int
	selected map[string]bool
	preview  preview.State

	prompt       promptKind
	input        textinput.Model
	renamePrefix string
	pending      []string // paths awaiting a confirmed trash

	status status
	width  int
	height int
}

// NewBrowser creates a browser showing state.
func NewBrowser(state browse.State, deps BrowserDeps) *BrowserModel {
	if deps.Resolver == nil {
		deps.Resolver = preview.NewResolver(nil)
	}
	if deps.Opener == nil {
		deps.Opener = fileops.SystemOpener{}
	}
	if deps.Clipboard == nil {
		deps.Clipboard = SystemClipboard{}
	}
	ti := textinput.New()
	ti.CharLimit = 4096

	m := &BrowserModel{
		deps:     deps,
		selected: make(map[string]bool),
		input:    ti,
		width:    120,
		height:   30,
	}
	m.navigate(state)
	return m
}

// Init implements tea.Model
func (m *BrowserModel) Init() tea.Cmd {
	return waitForChange(m.deps.Watcher)
}

// State returns the current listing.
func (m *BrowserModel) State() browse.State { return m.state }

// Cursor returns the highlighted row.
func (m *BrowserModel) Cursor() int { return m.cursor }

// Preview returns the active preview.
func (m *BrowserModel) Preview() preview.State { return m.preview }

// IsSelected reports whether path is in the multi-selection.
func (m *BrowserModel) IsSelected(path string) bool { return m.selected[path] }

// Status returns the current status line text.
func (m *BrowserModel) Status() string { return m.status.text }

// navigate makes next the current state and resets cursor and selection.
func (m *BrowserModel) navigate(next browse.State) {
	m.state = next
	m.cursor = 0
	m.offset = 0
	m.selected = make(map[string]bool)
	m.updatePreview()

	if m.deps.Watcher != nil {
		if err := m.deps.Watcher.Follow(next.Dir); err != nil {
			debug.Log(debug.WATCH, "follow %s: %v", next.Dir, err)
			m.status = status{text: "Not watching for changes: " + err.Error(), err: true}
		}
	}
	if m.deps.History != nil {
		if err := m.deps.History.AddVisit(context.Background(), next.Dir); err != nil {
			m.status = status{text: "History not saved: " + err.Error(), err: true}
		}
	}
}

// reload re-reads the directory, keeping the cursor on the same name when
// it still exists.
func (m *BrowserModel) reload() {
	var current string
	if e, ok := m.state.EntryAt(m.cursor); ok {
		current = e.Name
	}
	next, err := m.state.Refresh()
	if err != nil {
		m.status = status{text: err.Error(), err: true}
		return
	}
	m.state = next
	for path := range m.selected {
		if _, err := os.Lstat(path); err != nil {
			delete(m.selected, path)
		}
	}
	m.cursor = 0
	for i, e := range next.Entries {
		if e.Name == current {
			m.cursor = i
			break
		}
	}
	m.clampCursor()
	m.updatePreview()
}

func (m *BrowserModel) updatePreview() {
	if e, ok := m.state.EntryAt(m.cursor); ok {
		m.preview = m.deps.Resolver.ResolveEntry(e)
		return
	}
	// nothing selected: summarize the current folder
	m.preview = m.deps.Resolver.ResolveDir(m.state.Dir)
}

func (m *BrowserModel) clampCursor() {
	if m.cursor >= m.state.Len() {
		m.cursor = m.state.Len() - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m *BrowserModel) moveCursor(delta int) {
	before := m.cursor
	m.cursor += delta
	m.clampCursor()
	if m.cursor != before {
		m.updatePreview()
	}
}

// targets returns the multi-selection, or the entry under the cursor when
// nothing is selected. Order follows the listing.
func (m *BrowserModel) targets() []string {
	var picked []fs.Entry
	for _, e := range m.state.Entries {
		if m.selected[e.Path] {
			picked = append(picked, e)
		}
	}
	if len(picked) == 0 {
		if e, ok := m.state.EntryAt(m.cursor); ok {
			picked = append(picked, e)
		}
	}
	return fileops.Paths(picked)
}

// Update implements tea.Model
func (m *BrowserModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil

	case dirChangedMsg:
		if msg.dir == m.state.Dir {
			debug.Log(debug.UI, "directory changed on disk: %s", msg.dir)
			m.reload()
		}
		return m, waitForChange(m.deps.Watcher)

	case opDoneMsg:
		m.finishOp(msg.result)
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.prompt != promptNone {
			return m.handlePromptKey(msg)
		}
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *BrowserModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "up", "k":
		m.moveCursor(-1)
	case "down", "j":
		m.moveCursor(1)
	case "pgup":
		m.moveCursor(-m.listHeight())
	case "pgdown":
		m.moveCursor(m.listHeight())
	case "home", "g":
		m.moveCursor(-m.state.Len())
	case "end", "G":
		m.moveCursor(m.state.Len())
	case "enter", "l", "right":
		return m, m.enter()
	case "backspace", "h", "left":
		next, err := m.state.Parent()
		if err != nil {
			m.status = status{text: err.Error(), err: true}
			break
		}
		if next.Dir != m.state.Dir {
			m.navigate(next)
		}
	case "~":
		home, err := os.UserHomeDir()
		if err != nil {
			m.status = status{text: err.Error(), err: true}
			break
		}
		m.goTo(home)
	case "r":
		// a forced refresh also re-decodes thumbnails
		m.deps.Resolver.Cache.Clear()
		m.reload()
		m.status = status{text: "Refreshed"}
	case " ":
		if e, ok := m.state.EntryAt(m.cursor); ok {
			if m.selected[e.Path] {
				delete(m.selected, e.Path)
			} else {
				m.selected[e.Path] = true
			}
			m.moveCursor(1)
		}
	case "esc":
		m.selected = make(map[string]bool)
		m.status = status{}
	case "*":
		m.startPrompt(promptMatch, "*.jpg")
	case "d", "delete":
		return m, m.trash()
	case "m":
		m.startPrompt(promptMove, m.state.Dir)
	case "R":
		m.startPrompt(promptRenamePrefix, "")
	case "o":
		targets := m.targets()
		if len(targets) == 0 {
			break
		}
		return m, m.runOp(func() fileops.Result { return fileops.Open(m.deps.Opener, targets) })
	case "y":
		targets := m.targets()
		if len(targets) == 0 {
			break
		}
		if err := m.deps.Clipboard.WriteAll(strings.Join(targets, "\n")); err != nil {
			m.status = status{text: "copy failed: " + err.Error(), err: true}
		} else {
			m.status = status{text: fmt.Sprintf("Copied %d path(s)", len(targets))}
		}
	}
	return m, nil
}

func (m *BrowserModel) goTo(dir string) {
	next, err := browse.Load(dir, m.state.NameWidth)
	if err != nil {
		m.status = status{text: err.Error(), err: true}
		return
	}
	m.navigate(next)
}

// enter opens a folder in place and launches a file.
func (m *BrowserModel) enter() tea.Cmd {
	e, ok := m.state.EntryAt(m.cursor)
	if !ok {
		return nil
	}
	if !e.IsDir {
		return m.runOp(func() fileops.Result { return fileops.Open(m.deps.Opener, []string{e.Path}) })
	}
	next, _, err := m.state.Enter(m.cursor)
	if err != nil {
		m.status = status{text: err.Error(), err: true}
		return nil
	}
	m.navigate(next)
	return nil
}

func (m *BrowserModel) trash() tea.Cmd {
	targets := m.targets()
	if len(targets) == 0 || m.deps.Trash == nil {
		return nil
	}
	if m.deps.ConfirmDelete {
		m.pending = targets
		m.prompt = promptConfirmTrash
		m.status = status{}
		return nil
	}
	return m.runOp(func() fileops.Result { return fileops.Trash(m.deps.Trash, targets) })
}

func (m *BrowserModel) runOp(fn func() fileops.Result) tea.Cmd {
	return func() tea.Msg {
		return opDoneMsg{result: fn()}
	}
}

func (m *BrowserModel) finishOp(r fileops.Result) {
	if err := r.Err(); err != nil {
		debug.Error(debug.OPS, err, "%s", r.Summary())
		m.status = status{text: r.Summary() + ": " + r.Failures[0].Err.Error(), err: true}
	} else {
		m.status = status{text: r.Summary()}
	}
	if r.Op != "open" {
		m.reload()
	}
}

func (m *BrowserModel) startPrompt(kind promptKind, placeholder string) {
	m.prompt = kind
	m.input.Reset()
	m.input.Placeholder = placeholder
	if kind == promptMove {
		m.input.SetValue(placeholder)
		m.input.CursorEnd()
	}
	m.input.Focus()
}

func (m *BrowserModel) endPrompt() {
	m.prompt = promptNone
	m.input.Blur()
	m.input.Reset()
	m.pending = nil
}

func (m *BrowserModel) handlePromptKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.prompt == promptConfirmTrash {
		switch msg.String() {
		case "y", "Y", "enter":
			targets := m.pending
			m.endPrompt()
			return m, m.runOp(func() fileops.Result { return fileops.Trash(m.deps.Trash, targets) })
		case "n", "N", "esc":
			m.endPrompt()
			m.status = status{text: "Cancelled"}
		}
		return m, nil
	}

	switch msg.String() {
	case "esc":
		m.endPrompt()
		return m, nil
	case "enter":
		return m, m.submitPrompt()
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *BrowserModel) submitPrompt() tea.Cmd {
	value := m.input.Value()
	kind := m.prompt
	m.endPrompt()

	switch kind {
	case promptMatch:
		idx, err := fileops.SelectMatching(m.state.Entries, value)
		if err != nil {
			m.status = status{text: err.Error(), err: true}
			return nil
		}
		for _, e := range m.state.Selected(idx) {
			m.selected[e.Path] = true
		}
		m.status = status{text: fmt.Sprintf("Selected %d matching %q", len(idx), value)}

	case promptMove:
		dest := value
		if dest == "" {
			return nil
		}
		if !filepath.IsAbs(dest) {
			dest = filepath.Join(m.state.Dir, dest)
		}
		targets := m.targets()
		return m.runOp(func() fileops.Result { return fileops.Move(targets, dest) })

	case promptRenamePrefix:
		m.renamePrefix = value
		m.startPrompt(promptRenameSuffix, "")

	case promptRenameSuffix:
		prefix := m.renamePrefix
		m.renamePrefix = ""
		targets := m.targets()
		return m.runOp(func() fileops.Result { return fileops.Rename(targets, prefix, value) })
	}
	return nil
}

func (m *BrowserModel) listHeight() int {
	// header, status line and help
	h := m.height - 4
	if h < 1 {
		h = 1
	}
	return h
}

// View implements tea.Model
func (m *BrowserModel) View() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render(m.state.Header()))
	b.WriteString("\n")

	list := m.renderList()
	side := m.renderPreview()
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, list, " ", side))
	b.WriteString("\n")

	switch m.prompt {
	case promptConfirmTrash:
		b.WriteString(promptStyle.Render(fmt.Sprintf("Move %d item(s) to trash? [y/n]", len(m.pending))))
	case promptMove:
		b.WriteString(promptStyle.Render("Move to: ") + m.input.View())
	case promptRenamePrefix:
		b.WriteString(promptStyle.Render("Prefix (empty for none): ") + m.input.View())
	case promptRenameSuffix:
		b.WriteString(promptStyle.Render("Suffix (empty for none): ") + m.input.View())
	case promptMatch:
		b.WriteString(promptStyle.Render("Select matching: ") + m.input.View())
	default:
		if s := m.status.render(); s != "" {
			b.WriteString(s)
		} else {
			b.WriteString(statusStyle.Render(fmt.Sprintf("%d selected", len(m.selected))))
		}
	}
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("enter open · h up · ~ home · space select · * match · d trash · m move · R rename · o open · y copy · q quit"))
	return b.String()
}

func (m *BrowserModel) renderList() string {
	height := m.listHeight()
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+height {
		m.offset = m.cursor - height + 1
	}

	if m.state.Len() == 0 {
		return statusStyle.Render("(empty)")
	}

	var lines []string
	end := m.offset + height
	if end > len(m.state.Rows) {
		end = len(m.state.Rows)
	}
	for i := m.offset; i < end; i++ {
		row := m.state.Rows[i]
		mark := "  "
		if m.selected[m.state.Entries[i].Path] {
			mark = markStyle.Render("● ")
		}
		style := rowStyle
		if m.state.Entries[i].IsDir {
			style = dirRowStyle
		}
		if i == m.cursor {
			style = cursorStyle
		}
		lines = append(lines, mark+style.Render(row.Text))
	}
	return strings.Join(lines, "\n")
}

func (m *BrowserModel) renderPreview() string {
	if m.preview == nil {
		return ""
	}
	width := m.width/3 - 4
	if width < 20 {
		width = 20
	}
	var badge string
	switch p := m.preview.(type) {
	case *preview.FileInfo:
		if p.Thumbnail != nil {
			o := p.Thumbnail.Original
			badge = halfBlock(p.Thumbnail.Image, width-2, thumbnailRows) +
				"\n" + fmt.Sprintf("%dx%d", o.X, o.Y)
		} else {
			badge = p.Badge()
		}
	case *preview.FolderSummary:
		badge = p.Badge()
	}
	body := badgeStyle.Width(width).Render(badge) + "\n" + m.preview.Text()
	return previewStyle.Width(width).Render(body)
}
