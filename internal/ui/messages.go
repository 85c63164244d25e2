package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/justyntemme/glance/internal/fileops"
	"github.com/justyntemme/glance/internal/search"
	"github.com/justyntemme/glance/internal/watch"
)

// outcomeMsg carries a search outcome from the dispatcher.
type outcomeMsg struct {
	outcome search.Outcome
}

// dirChangedMsg reports that the watched directory changed on disk.
type dirChangedMsg struct {
	dir string
}

// opDoneMsg reports a finished batch operation.
type opDoneMsg struct {
	result fileops.Result
}

// status is a one-line message; err marks it as a failure.
type status struct {
	text string
	err  bool
}

func (s status) render() string {
	switch {
	case s.text == "":
		return ""
	case s.err:
		return errorStyle.Render("❌ " + s.text)
	default:
		return successStyle.Render(s.text)
	}
}

// waitForOutcome blocks on the dispatcher channel. It returns nil once the
// channel is closed.
func waitForOutcome(ch <-chan search.Outcome) tea.Cmd {
	return func() tea.Msg {
		out, ok := <-ch
		if !ok {
			return nil
		}
		return outcomeMsg{outcome: out}
	}
}

func waitForChange(w *watch.Watcher) tea.Cmd {
	if w == nil {
		return nil
	}
	return func() tea.Msg {
		dir, ok := <-w.Changes()
		if !ok {
			return nil
		}
		return dirChangedMsg{dir: dir}
	}
}
