package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/justyntemme/glance/internal/config"
	"github.com/justyntemme/glance/internal/fileops"
	"github.com/justyntemme/glance/internal/fs"
)

// expandPaths expands ~ in args, and adds the entries of dir matching
// pattern when pattern is set.
func expandPaths(args []string, dir, pattern string) ([]string, error) {
	var paths []string
	for _, a := range args {
		paths = append(paths, config.ExpandHome(a))
	}
	if pattern == "" {
		return paths, nil
	}
	entries, err := fs.List(config.ExpandHome(dir))
	if err != nil {
		return nil, err
	}
	idx, err := fileops.SelectMatching(entries, pattern)
	if err != nil {
		return nil, err
	}
	for _, i := range idx {
		paths = append(paths, entries[i].Path)
	}
	return paths, nil
}

func addMatchFlags(cmd *cobra.Command, dir, pattern *string) {
	cmd.Flags().StringVar(pattern, "match", "", `also act on entries of --dir whose name matches a glob`)
	cmd.Flags().StringVar(dir, "dir", ".", "directory searched by --match")
}

func newTrashCmd(e *env) *cobra.Command {
	var (
		list, empty, yes bool
		dir, pattern     string
	)
	cmd := &cobra.Command{
		Use:   "trash [paths...]",
		Short: "Move files to the trash, or list or empty it",
		RunE: func(cmd *cobra.Command, args []string) error {
			bin, err := e.trashBin()
			if err != nil {
				return err
			}

			switch {
			case list:
				items, err := bin.List()
				if err != nil {
					return err
				}
				if len(items) == 0 {
					fmt.Printf("%s is empty\n", bin.DisplayName())
					return nil
				}
				for _, it := range items {
					origin := it.OriginalPath
					if origin == "" {
						origin = it.Name
					}
					fmt.Printf("%-12s %8s  %s\n", humanize.Time(it.DeletedAt), fs.FormatSize(uint64(it.Size)), origin)
				}
				return nil

			case empty:
				if !yes && e.cfg.Ops.ConfirmDelete && !confirm(cmd, "Permanently delete everything in the "+bin.DisplayName()+"?") {
					return nil
				}
				if err := bin.Empty(); err != nil {
					return err
				}
				fmt.Println(successText(bin.DisplayName() + " emptied"))
				return nil
			}

			paths, err := expandPaths(args, dir, pattern)
			if err != nil {
				return err
			}
			if len(paths) == 0 {
				return fmt.Errorf("nothing to trash")
			}
			if !yes && e.cfg.Ops.ConfirmDelete &&
				!confirm(cmd, fmt.Sprintf("Move %d file(s) to %s?", len(paths), strings.ToLower(bin.DisplayName()))) {
				return nil
			}
			return report(fileops.Trash(bin, paths))
		},
	}
	cmd.Flags().BoolVar(&list, "list", false, "list the trash")
	cmd.Flags().BoolVar(&empty, "empty", false, "permanently delete the trash contents")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	addMatchFlags(cmd, &dir, &pattern)
	return cmd
}

func confirm(cmd *cobra.Command, question string) bool {
	fmt.Fprintf(cmd.OutOrStdout(), "%s [y/N] ", question)
	var answer string
	fmt.Fscanln(cmd.InOrStdin(), &answer)
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}

func newMvCmd(e *env) *cobra.Command {
	var dir, pattern string
	cmd := &cobra.Command{
		Use:   "mv <paths...> <dest-dir>",
		Short: "Move files into a folder without overwriting",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dest := config.ExpandHome(args[len(args)-1])
			paths, err := expandPaths(args[:len(args)-1], dir, pattern)
			if err != nil {
				return err
			}
			if len(paths) == 0 {
				return fmt.Errorf("nothing to move")
			}
			return report(fileops.Move(paths, dest))
		},
	}
	addMatchFlags(cmd, &dir, &pattern)
	return cmd
}

func newOpenCmd(e *env) *cobra.Command {
	var dir, pattern string
	cmd := &cobra.Command{
		Use:   "open [paths...]",
		Short: "Open files with their default application",
		RunE: func(cmd *cobra.Command, args []string) error {
			paths, err := expandPaths(args, dir, pattern)
			if err != nil {
				return err
			}
			if len(paths) == 0 {
				return fmt.Errorf("nothing to open")
			}
			return report(fileops.Open(fileops.SystemOpener{}, paths))
		},
	}
	addMatchFlags(cmd, &dir, &pattern)
	return cmd
}

func newRenameCmd(e *env) *cobra.Command {
	var (
		prefix, suffix string
		dryRun         bool
		dir, pattern   string
	)
	cmd := &cobra.Command{
		Use:   "rename [paths...]",
		Short: "Bulk rename: prefix + name + suffix + extension",
		RunE: func(cmd *cobra.Command, args []string) error {
			paths, err := expandPaths(args, dir, pattern)
			if err != nil {
				return err
			}
			if len(paths) == 0 {
				return fmt.Errorf("nothing to rename")
			}
			if dryRun {
				for _, p := range paths {
					fmt.Printf("%s -> %s\n", filepath.Base(p), fileops.RenamedName(filepath.Base(p), prefix, suffix))
				}
				return nil
			}
			return report(fileops.Rename(paths, prefix, suffix))
		},
	}
	cmd.Flags().StringVar(&prefix, "prefix", "", "text added before the name")
	cmd.Flags().StringVar(&suffix, "suffix", "", "text added after the name, before the extension")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "print the new names without renaming")
	addMatchFlags(cmd, &dir, &pattern)
	return cmd
}
