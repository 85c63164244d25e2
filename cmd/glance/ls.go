package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/justyntemme/glance/internal/browse"
	"github.com/justyntemme/glance/internal/config"
	"github.com/justyntemme/glance/internal/fileops"
	"github.com/justyntemme/glance/internal/fs"
)

func newLsCmd(e *env) *cobra.Command {
	var (
		jsonOut bool
		match   string
	)
	cmd := &cobra.Command{
		Use:   "ls [dir]",
		Short: "List a directory: folders first, then files, by name",
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

			entries := state.Entries
			rows := state.Rows
			if match != "" {
				idx, err := fileops.SelectMatching(entries, match)
				if err != nil {
					return err
				}
				entries = state.Selected(idx)
				rows = fs.Rows(entries, state.NameWidth)
			}

			if jsonOut {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(entries)
			}

			fmt.Println(titleStyle.Render(fs.Header(state.Dir, len(entries))))
			for _, r := range rows {
				fmt.Println(r.Text)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "print entries as JSON")
	cmd.Flags().StringVar(&match, "match", "", `only entries whose name matches a glob, e.g. "*.{jpg,png}"`)
	return cmd
}
