package main

import (
	"fmt"

	"github.com/ramux/ra-multiplex/internal/config"
	"github.com/spf13/cobra"
)

func newConfigCmd(cfgFile *string) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect the ra-multiplex configuration",
	}

	configCmd.AddCommand(&cobra.Command{
		Use:   "defaults",
		Short: "Print a config.toml containing every default value",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return config.Default().Encode(cmd.OutOrStdout())
		},
	})

	configCmd.AddCommand(&cobra.Command{
		Use:   "check",
		Short: "Validate the config file and print the effective configuration",
		Long: `Validate the config file and print the effective configuration.

Keys missing from the file are shown with their default values.  Settings
that are accepted but replaced at runtime are reported as warnings.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := *cfgFile
			if path == "" {
				var err error
				if path, err = config.ConfigPath(); err != nil {
					return err
				}
			}

			cfg, err := config.LoadFile(path)
			if err != nil {
				return err
			}

			for _, warning := range cfg.Warnings() {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s\n", warning)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "# %s\n", path)
			return cfg.Encode(cmd.OutOrStdout())
		},
	})

	return configCmd
}
