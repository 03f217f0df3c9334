package main

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

// GetFullVersionInfo returns detailed version information
func GetFullVersionInfo() string {
	return fmt.Sprintf("Version: %s\nCommit: %s\nBuilt: %s\nGo: %s %s/%s",
		version, commit, date, runtime.Version(), runtime.GOOS, runtime.GOARCH)
}

// GetVersionWithPrefix returns version with "ra-multiplex version: " prefix
func GetVersionWithPrefix() string {
	return fmt.Sprintf("ra-multiplex version: %s", version)
}

func newVersionCmd() *cobra.Command {
	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print the version number of ra-multiplex",
		Long:  "Print the version number of ra-multiplex along with build information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			if detailed, _ := cmd.Flags().GetBool("detailed"); detailed {
				fmt.Fprintln(cmd.OutOrStdout(), GetFullVersionInfo())
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), GetVersionWithPrefix())
			}
		},
	}
	versionCmd.Flags().BoolP("detailed", "d", false, "Show detailed version information")
	return versionCmd
}
