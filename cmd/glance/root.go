package main

import (
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/justyntemme/glance/internal/config"
	"github.com/justyntemme/glance/internal/debug"
	"github.com/justyntemme/glance/internal/preview"
	"github.com/justyntemme/glance/internal/search"
	"github.com/justyntemme/glance/internal/store"
	"github.com/justyntemme/glance/internal/trash"
)

// env is what every subcommand needs: the loaded settings plus
// constructors for the collaborators built from them.
type env struct {
	cfgFile  string
	debug    string
	logLevel string
	logFile  string
	cfg      config.Config
}

func newRootCmd() *cobra.Command {
	e := &env{}

	rootCmd := &cobra.Command{
		Use:     "glance",
		Short:   "Browse and preview files, and search Wikipedia, from the terminal",
		Version: version,
		Long: `glance is a small file browser with a preview pane and a Wikipedia
search client. Run it without arguments to browse your Downloads folder.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return e.load()
		},
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBrowse(e, args)
		},
	}

	rootCmd.PersistentFlags().StringVar(&e.cfgFile, "config", "", "config file (default is $HOME/.config/glance/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&e.debug, "debug", "", `debug log categories: "all" or a list such as "fs,search"`)
	rootCmd.PersistentFlags().Lookup("debug").NoOptDefVal = "all"
	rootCmd.PersistentFlags().StringVar(&e.logLevel, "log-level", "", `log level: "debug", "info", "warn" or "error"`)
	rootCmd.PersistentFlags().StringVar(&e.logFile, "log-file", "", "where interactive screens write logs (default is glance.log next to the config)")

	rootCmd.AddCommand(
		newBrowseCmd(e),
		newGUICmd(e),
		newLsCmd(e),
		newPreviewCmd(e),
		newWikiCmd(e),
		newSearchCmd(e),
		newTrashCmd(e),
		newMvCmd(e),
		newOpenCmd(e),
		newRenameCmd(e),
		newHistoryCmd(e),
		newConfigCmd(e),
	)
	return rootCmd
}

func (e *env) load() error {
	if e.debug != "" {
		debug.Configure(e.debug)
		debug.SetVerbose(true)
	}
	if e.logLevel != "" {
		if err := debug.SetLevel(e.logLevel); err != nil {
			return fmt.Errorf("--log-level: %w", err)
		}
	}
	debug.Log(debug.APP, "debug categories: %v", debug.ListEnabled())

	m := config.NewManager()
	if err := m.Load(e.cfgFile); err != nil {
		return err
	}
	if perr := m.ParseError(); perr != nil {
		warn("config %s could not be parsed, using defaults: %v", m.ConfigPath(), perr)
	}
	e.cfg = m.Get()
	debug.Log(debug.APP, "config: %+v", e.cfg)
	return nil
}

func (e *env) resolver() *preview.Resolver {
	p := e.cfg.Preview
	r := preview.NewResolver(preview.NewDecoder(p.Resampler, p.MaxImagePixels))
	r.Frame = image.Pt(p.FrameWidth, p.FrameHeight)
	r.MaxListed = p.MaxListed
	r.MaxImageBytes = p.MaxImageBytes
	r.Cache = preview.NewThumbnailCache(p.CacheEntries)
	return r
}

func (e *env) searchClient() *search.Client {
	s := e.cfg.Search
	return search.NewClient(s.Endpoint, s.UserAgent, s.Timeout)
}

func (e *env) dispatcher() *search.Dispatcher {
	return search.NewDispatcher(e.searchClient(), e.cfg.Search.Debounce)
}

// history opens the history database when it is enabled. It returns nil,
// nil when history is off.
func (e *env) history() (*store.History, error) {
	if !e.cfg.History.Enabled {
		return nil, nil
	}
	return store.Open(e.cfg.History.Path)
}

// historyOrWarn is history() for callers that keep working without it.
func (e *env) historyOrWarn() *store.History {
	h, err := e.history()
	if err != nil {
		warn("history disabled: %v", err)
		return nil
	}
	return h
}

func (e *env) trashBin() (trash.Bin, error) {
	return trash.Default()
}

// logToFile sends log output to the log file while a full-screen UI owns
// the terminal. The returned func restores stderr.
func (e *env) logToFile() func() {
	path := e.logFile
	if path == "" {
		path = filepath.Join(config.Dir(), "glance.log")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		warn("logging disabled: %v", err)
		debug.SetOutput(io.Discard)
		return func() { debug.SetOutput(os.Stderr) }
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		warn("logging disabled: %v", err)
		debug.SetOutput(io.Discard)
		return func() { debug.SetOutput(os.Stderr) }
	}
	debug.SetOutput(f)
	return func() {
		debug.SetOutput(os.Stderr)
		f.Close()
	}
}

func (e *env) watchDebounce() time.Duration {
	return time.Duration(e.cfg.Browser.WatchDebounceMs) * time.Millisecond
}
