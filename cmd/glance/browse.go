package main

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/justyntemme/glance/internal/browse"
	"github.com/justyntemme/glance/internal/config"
	"github.com/justyntemme/glance/internal/debug"
	"github.com/justyntemme/glance/internal/ui"
	"github.com/justyntemme/glance/internal/watch"
)

func newBrowseCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "browse [dir]",
		Short: "Open the interactive file browser",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBrowse(e, args)
		},
	}
}

func runBrowse(e *env, args []string) error {
	dir := browse.StartDir(e.cfg.Browser.StartDir)
	if len(args) == 1 {
		dir = config.ExpandHome(args[0])
	}
	state, err := browse.Load(dir, e.cfg.Browser.NameWidth)
	if err != nil {
		return err
	}

	bin, err := e.trashBin()
	if err != nil {
		warn("trash unavailable: %v", err)
	}

	deps := ui.BrowserDeps{
		Resolver:      e.resolver(),
		Trash:         bin,
		ConfirmDelete: e.cfg.Ops.ConfirmDelete,
	}
	if e.cfg.Browser.Watch {
		w, err := watch.New(e.watchDebounce())
		if err != nil {
			warn("directory watching disabled: %v", err)
		} else {
			defer w.Close()
			deps.Watcher = w
		}
	}
	if h := e.historyOrWarn(); h != nil {
		defer h.Close()
		deps.History = h
	}

	debug.Log(debug.APP, "browse: starting in %s", state.Dir)
	defer e.logToFile()()
	_, err = tea.NewProgram(ui.NewBrowser(state, deps), tea.WithAltScreen()).Run()
	return err
}
