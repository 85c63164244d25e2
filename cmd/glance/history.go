package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func newHistoryCmd(e *env) *cobra.Command {
	var (
		limit int
		dirs  bool
		wipe  bool
	)
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent searches or directories (when history is enabled)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := e.history()
			if err != nil {
				return err
			}
			if h == nil {
				fmt.Println("History is disabled. Set history.enabled: true in the config to record it.")
				return nil
			}
			defer h.Close()
			ctx := cmd.Context()

			if wipe {
				if err := h.Clear(ctx); err != nil {
					return err
				}
				fmt.Println(successText("History cleared"))
				return nil
			}

			if dirs {
				visits, err := h.RecentVisits(ctx, limit)
				if err != nil {
					return err
				}
				for _, v := range visits {
					fmt.Printf("%-14s %4dx  %s\n", humanize.Time(v.At), v.Count, v.Path)
				}
				return nil
			}

			recs, err := h.RecentSearches(ctx, limit)
			if err != nil {
				return err
			}
			for _, r := range recs {
				fmt.Printf("%-14s %3d results  %s\n", humanize.Time(r.At), r.Results, r.Query)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of entries")
	cmd.Flags().BoolVar(&dirs, "dirs", false, "show visited directories instead of searches")
	cmd.Flags().BoolVar(&wipe, "clear", false, "delete all history")
	return cmd
}
