package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/justyntemme/glance/internal/config"
	"github.com/justyntemme/glance/internal/preview"
)

func newPreviewCmd(e *env) *cobra.Command {
	var thumbOut string
	cmd := &cobra.Command{
		Use:   "preview <path>",
		Short: "Show the folder summary or file details for a path",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st := e.resolver().Resolve(config.ExpandHome(args[0]))
			fmt.Println(st.Text())

			info, ok := st.(*preview.FileInfo)
			if !ok || info.Thumbnail == nil {
				if thumbOut != "" {
					warn("no thumbnail for %s", args[0])
				}
				return nil
			}
			size := info.Thumbnail.Size()
			fmt.Println(dimStyle.Render(fmt.Sprintf("thumbnail %dx%d (original %dx%d)",
				size.X, size.Y, info.Thumbnail.Original.X, info.Thumbnail.Original.Y)))
			if thumbOut == "" {
				return nil
			}

			f, err := os.Create(thumbOut)
			if err != nil {
				return err
			}
			if err := info.Thumbnail.WritePNG(f); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			fmt.Println(successText("wrote " + thumbOut))
			return nil
		},
	}
	cmd.Flags().StringVar(&thumbOut, "thumbnail", "", "write the image thumbnail to this PNG file")
	return cmd
}
