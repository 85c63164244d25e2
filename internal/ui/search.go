package ui

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-runewidth"

	"github.com/justyntemme/glance/internal/debug"
	"github.com/justyntemme/glance/internal/fileops"
	"github.com/justyntemme/glance/internal/search"
	"github.com/justyntemme/glance/internal/store"
)

// SearchDeps are the collaborators of the search screen.
type SearchDeps struct {
	Dispatcher *search.Dispatcher
	Opener     fileops.Opener // opens result URLs
	Clipboard  Clipboard
	History    *store.History
	Limit      int
}

// SearchModel is the wiki search screen: a query line, a result-count
// choice and a results table.
type SearchModel struct {
	deps    SearchDeps
	input   textinput.Model
	spinner spinner.Model
	table   table.Model

	limit     int
	searching bool
	results   []search.Result
	query     string
	status    status
	width     int
}

// NewSearch creates the search screen.
func NewSearch(deps SearchDeps) *SearchModel {
	if deps.Opener == nil {
		deps.Opener = fileops.SystemOpener{}
	}
	if deps.Clipboard == nil {
		deps.Clipboard = SystemClipboard{}
	}
	ti := textinput.New()
	ti.Placeholder = "Search Wikipedia"
	ti.CharLimit = 256
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	m := &SearchModel{
		deps:    deps,
		input:   ti,
		spinner: sp,
		limit:   nearestLimit(deps.Limit),
		width:   100,
	}
	m.table = table.New(
		table.WithColumns(m.columns()),
		table.WithHeight(12),
	)
	return m
}

func nearestLimit(n int) int {
	if n <= 0 {
		return search.DefaultLimit
	}
	for _, l := range search.Limits {
		if n <= l {
			return l
		}
	}
	return search.Limits[len(search.Limits)-1]
}

// Init implements tea.Model
func (m *SearchModel) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, waitForOutcome(m.deps.Dispatcher.Outcomes()))
}

// Limit returns the selected result count.
func (m *SearchModel) Limit() int { return m.limit }

// Results returns the results on screen.
func (m *SearchModel) Results() []search.Result { return m.results }

// Searching reports whether a request is outstanding.
func (m *SearchModel) Searching() bool { return m.searching }

// Status returns the current status line text.
func (m *SearchModel) Status() string { return m.status.text }

func (m *SearchModel) columns() []table.Column {
	titleW := 28
	urlW := 40
	descW := m.width - titleW - urlW - 8
	if descW < 20 {
		descW = 20
	}
	return []table.Column{
		{Title: "Title", Width: titleW},
		{Title: "Description", Width: descW},
		{Title: "URL", Width: urlW},
	}
}

// Update implements tea.Model
func (m *SearchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.table.SetColumns(m.columns())
		m.table.SetRows(m.rows())
		return m, nil

	case outcomeMsg:
		m.handleOutcome(msg.outcome)
		return m, waitForOutcome(m.deps.Dispatcher.Outcomes())

	case spinner.TickMsg:
		if !m.searching {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *SearchModel) handleOutcome(out search.Outcome) {
	if out.Seq != m.deps.Dispatcher.Latest() {
		debug.Log(debug.UI, "ignoring outcome #%d, latest is #%d", out.Seq, m.deps.Dispatcher.Latest())
		return
	}
	m.searching = false
	if !out.OK() {
		m.status = status{text: out.Err.Error(), err: true}
		return
	}

	m.results = out.Results
	m.table.SetRows(m.rows())
	m.table.GotoTop()
	if len(out.Results) == 0 {
		m.status = status{text: "No results found"}
	} else {
		m.status = status{text: fmt.Sprintf("✅ Found %d results for '%s'", len(out.Results), out.Query)}
		m.input.Blur()
		m.table.Focus()
	}
	if m.deps.History != nil {
		if err := m.deps.History.AddSearch(context.Background(), out.Query, len(out.Results)); err != nil {
			m.status = status{text: m.status.text + " (history not saved: " + err.Error() + ")", err: true}
		}
	}
}

func (m *SearchModel) rows() []table.Row {
	rows := make([]table.Row, len(m.results))
	for i, r := range m.results {
		rows[i] = table.Row{r.Title, oneLine(r.Description), r.URL}
	}
	return rows
}

func oneLine(s string) string {
	return runewidth.Truncate(strings.Join(strings.Fields(s), " "), 200, "…")
}

func (m *SearchModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "tab":
		m.cycleLimit()
		return m, nil
	}

	if m.table.Focused() {
		switch msg.String() {
		case "q":
			return m, tea.Quit
		case "esc", "/":
			m.table.Blur()
			m.input.Focus()
			return m, textinput.Blink
		case "o", "enter":
			m.withSelectedURL("open", m.deps.Opener.Open)
			return m, nil
		case "y":
			m.withSelectedURL("copy", m.deps.Clipboard.WriteAll)
			return m, nil
		}
		var cmd tea.Cmd
		m.table, cmd = m.table.Update(msg)
		return m, cmd
	}

	switch msg.String() {
	case "esc":
		if len(m.results) > 0 {
			m.input.Blur()
			m.table.Focus()
		}
		return m, nil
	case "enter":
		return m, m.submit()
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *SearchModel) cycleLimit() {
	for i, l := range search.Limits {
		if l == m.limit {
			m.limit = search.Limits[(i+1)%len(search.Limits)]
			m.status = status{text: "Results: " + strconv.Itoa(m.limit)}
			return
		}
	}
	m.limit = search.DefaultLimit
}

func (m *SearchModel) submit() tea.Cmd {
	query := strings.TrimSpace(m.input.Value())
	if query == "" {
		m.status = status{text: "Please enter a search term", err: true}
		return nil
	}
	m.query = query
	m.searching = true
	m.status = status{text: "Searching..."}
	m.deps.Dispatcher.Dispatch(query, m.limit)
	return m.spinner.Tick
}

func (m *SearchModel) withSelectedURL(verb string, fn func(string) error) {
	i := m.table.Cursor()
	if i < 0 || i >= len(m.results) {
		return
	}
	url := m.results[i].URL
	if url == "" {
		m.status = status{text: "No URL for " + m.results[i].Title, err: true}
		return
	}
	if err := fn(url); err != nil {
		m.status = status{text: fmt.Sprintf("Failed to %s URL: %v", verb, err), err: true}
		return
	}
	m.status = status{text: fmt.Sprintf("%s: %s", verb, url)}
}

// View implements tea.Model
func (m *SearchModel) View() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("Wikipedia Search"))
	b.WriteString("\n\n")
	b.WriteString(m.input.View())
	b.WriteString(statusStyle.Render(fmt.Sprintf("   Results: %d", m.limit)))
	b.WriteString("\n\n")
	if len(m.results) > 0 {
		b.WriteString(m.table.View())
		b.WriteString("\n")
	}
	if m.searching {
		b.WriteString(m.spinner.View() + " " + statusStyle.Render("Searching for '"+m.query+"'..."))
	} else {
		b.WriteString(m.status.render())
	}
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("enter search · tab result count · esc switch focus · o open · y copy URL · ctrl+c quit"))
	return b.String()
}
