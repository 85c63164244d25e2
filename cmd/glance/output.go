package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"

	"github.com/justyntemme/glance/internal/fileops"
)

var (
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#DC3545"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#28A745"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#D08770"))
	titleStyle   = lipgloss.NewStyle().Bold(true)
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#646464"))
)

func errorText(s string) string   { return errorStyle.Render("❌ " + s) }
func successText(s string) string { return successStyle.Render(s) }

func warn(format string, args ...interface{}) {
	fmt.Fprintln(os.Stderr, warnStyle.Render("⚠️ "+fmt.Sprintf(format, args...)))
}

// report prints a batch result, one line per failure, and returns an
// error when anything failed so the command exits non-zero.
func report(r fileops.Result) error {
	for _, f := range r.Failures {
		fmt.Fprintln(os.Stderr, errorText(fmt.Sprintf("%s: %v", f.Path, f.Err)))
	}
	if len(r.Failures) == 0 {
		fmt.Println(successText(r.Summary()))
		return nil
	}
	return fmt.Errorf("%s", r.Summary())
}
