package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/justyntemme/glance/internal/config"
)

func newConfigCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or create the configuration file",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Write a default config, backing up any existing one",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := e.cfgFile
			if path == "" {
				path = config.Path()
			}
			backup, err := config.GenerateConfig(path)
			if err != nil {
				return err
			}
			if backup != "" {
				fmt.Println("Backed up existing config to " + backup)
			}
			fmt.Println(successText("Wrote " + path))
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := config.Marshal(&e.cfg)
			if err != nil {
				return err
			}
			fmt.Print(string(data))
			return nil
		},
	})
	return cmd
}
