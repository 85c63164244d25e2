package gui

import (
	"context"
	"os"

	"github.com/justyntemme/glance/internal/browse"
	"github.com/justyntemme/glance/internal/debug"
	"github.com/justyntemme/glance/internal/fileops"
	"github.com/justyntemme/glance/internal/preview"
	"github.com/justyntemme/glance/internal/store"
	"github.com/justyntemme/glance/internal/watch"
)

// Deps are the collaborators of a session. Nil Watcher and History disable
// those features.
type Deps struct {
	Resolver *preview.Resolver
	Opener   fileops.Opener
	Watcher  *watch.Watcher
	History  *store.History
}

// Session is the window's state, kept apart from drawing so it can be
// driven without a display.
type Session struct {
	deps     Deps
	state    browse.State
	selected int // -1 when nothing is selected
	preview  preview.State
	status   string
	failed   bool
}

// NewSession starts a session showing state.
func NewSession(state browse.State, deps Deps) *Session {
	if deps.Resolver == nil {
		deps.Resolver = preview.NewResolver(nil)
	}
	if deps.Opener == nil {
		deps.Opener = fileops.SystemOpener{}
	}
	s := &Session{deps: deps}
	s.navigate(state)
	return s
}

// State is the current listing.
func (s *Session) State() browse.State { return s.state }

// Selected is the selected row, or -1.
func (s *Session) Selected() int { return s.selected }

// Preview is the preview of the selection, or of the folder when nothing is
// selected.
func (s *Session) Preview() preview.State { return s.preview }

// Status is the last message for the status line.
func (s *Session) Status() (text string, failed bool) { return s.status, s.failed }

func (s *Session) setStatus(text string, failed bool) {
	s.status, s.failed = text, failed
}

func (s *Session) navigate(next browse.State) {
	s.state = next
	s.selected = -1
	s.setStatus(next.Header(), false)
	s.updatePreview()

	if s.deps.Watcher != nil {
		if err := s.deps.Watcher.Follow(next.Dir); err != nil {
			debug.Log(debug.WATCH, "follow %s: %v", next.Dir, err)
			s.setStatus("Not watching for changes: "+err.Error(), true)
		}
	}
	if s.deps.History != nil {
		if err := s.deps.History.AddVisit(context.Background(), next.Dir); err != nil {
			s.setStatus("History not saved: "+err.Error(), true)
		}
	}
}

func (s *Session) updatePreview() {
	if e, ok := s.state.EntryAt(s.selected); ok {
		s.preview = s.deps.Resolver.ResolveEntry(e)
		return
	}
	s.preview = s.deps.Resolver.ResolveDir(s.state.Dir)
}

// Select moves the selection to row i. Out-of-range rows clear it.
func (s *Session) Select(i int) {
	if i < 0 || i >= s.state.Len() {
		i = -1
	}
	if i == s.selected {
		return
	}
	s.selected = i
	s.updatePreview()
}

// Move shifts the selection by delta, clamped to the listing.
func (s *Session) Move(delta int) {
	n := s.state.Len()
	if n == 0 {
		return
	}
	i := s.selected + delta
	if s.selected < 0 && delta < 0 {
		i = n - 1
	}
	if i < 0 {
		i = 0
	}
	if i >= n {
		i = n - 1
	}
	s.Select(i)
}

// Activate enters the selected folder or opens the selected file.
func (s *Session) Activate() {
	e, ok := s.state.EntryAt(s.selected)
	if !ok {
		return
	}
	if !e.IsDir {
		if err := s.deps.Opener.Open(e.Path); err != nil {
			s.setStatus(err.Error(), true)
			return
		}
		s.setStatus("Opened "+e.Name, false)
		return
	}
	next, _, err := s.state.Enter(s.selected)
	if err != nil {
		s.setStatus(err.Error(), true)
		return
	}
	s.navigate(next)
}

// Parent goes up one folder.
func (s *Session) Parent() {
	next, err := s.state.Parent()
	if err != nil {
		s.setStatus(err.Error(), true)
		return
	}
	if next.Dir != s.state.Dir {
		s.navigate(next)
	}
}

// Reload re-reads the folder and keeps the selection on the same name.
func (s *Session) Reload() {
	var current string
	if e, ok := s.state.EntryAt(s.selected); ok {
		current = e.Name
	}
	next, err := s.state.Refresh()
	if err != nil {
		if _, statErr := os.Stat(s.state.Dir); statErr != nil {
			s.Parent()
			return
		}
		s.setStatus(err.Error(), true)
		return
	}
	s.state = next
	s.selected = -1
	for i, e := range next.Entries {
		if e.Name == current {
			s.selected = i
			break
		}
	}
	s.updatePreview()
}

// Changed reloads when dir is the folder on screen.
func (s *Session) Changed(dir string) bool {
	if dir != s.state.Dir {
		return false
	}
	s.Reload()
	return true
}
