package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/justyntemme/glance/internal/search"
	"github.com/justyntemme/glance/internal/ui"
)

func newWikiCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "wiki",
		Short: "Open the interactive Wikipedia search",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			d := e.dispatcher()
			defer d.Close()

			deps := ui.SearchDeps{Dispatcher: d, Limit: e.cfg.Search.Limit}
			if h := e.historyOrWarn(); h != nil {
				defer h.Close()
				deps.History = h
			}
			defer e.logToFile()()
			_, err := tea.NewProgram(ui.NewSearch(deps), tea.WithAltScreen()).Run()
			return err
		},
	}
}

func newSearchCmd(e *env) *cobra.Command {
	var (
		limit   int
		jsonOut bool
		copyURL bool
	)
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search Wikipedia once and print the results",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if limit <= 0 {
				limit = e.cfg.Search.Limit
			}
			out := e.searchClient().Search(cmd.Context(), strings.Join(args, " "), limit)
			if !out.OK() {
				return out.Err
			}
			if h := e.historyOrWarn(); h != nil {
				if err := h.AddSearch(context.Background(), out.Query, len(out.Results)); err != nil {
					warn("history not saved: %v", err)
				}
				h.Close()
			}

			if copyURL && len(out.Results) > 0 && out.Results[0].URL != "" {
				if err := (ui.SystemClipboard{}).WriteAll(out.Results[0].URL); err != nil {
					warn("copy failed: %v", err)
				}
			}

			if jsonOut {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(out.Results)
			}
			if len(out.Results) == 0 {
				fmt.Println("No results found")
				return nil
			}
			fmt.Println(successText(fmt.Sprintf("✅ Found %d results for '%s'", len(out.Results), out.Query)))
			for _, r := range out.Results {
				fmt.Println(titleStyle.Render(r.Title))
				fmt.Println("  " + r.Description)
				if r.URL != "" {
					fmt.Println("  " + dimStyle.Render(r.URL))
				}
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, fmt.Sprintf("number of results (default from config, usually %d)", search.DefaultLimit))
	cmd.Flags().BoolVar(&jsonOut, "json", false, "print results as JSON")
	cmd.Flags().BoolVar(&copyURL, "copy", false, "copy the first result's URL to the clipboard")
	return cmd
}
