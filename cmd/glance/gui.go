package main

import (
	"github.com/spf13/cobra"

	"github.com/justyntemme/glance/internal/browse"
	"github.com/justyntemme/glance/internal/config"
	"github.com/justyntemme/glance/internal/debug"
	"github.com/justyntemme/glance/internal/gui"
	"github.com/justyntemme/glance/internal/watch"
)

func newGUICmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "gui [dir]",
		Short: "Open the browser in a desktop window",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := browse.StartDir(e.cfg.Browser.StartDir)
			if len(args) == 1 {
				dir = config.ExpandHome(args[0])
			}
			state, err := browse.Load(dir, e.cfg.Browser.NameWidth)
			if err != nil {
				return err
			}
			// the window loop owns the process from here on
			gui.Main(func() error {
				return runGUI(e, state)
			})
			return nil
		},
	}
}

func runGUI(e *env, state browse.State) error {
	deps := gui.Deps{Resolver: e.resolver()}
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

	debug.Log(debug.APP, "gui: starting in %s", state.Dir)
	win := gui.NewWindow(gui.NewSession(state, deps), e.cfg.GUI.Width, e.cfg.GUI.Height)
	return win.Run()
}
