package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Build information, set at build time via -ldflags.
var (
	Version = "dev"
	Commit  = "none"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the openstay-release binary version",
	Run: func(cmd *cobra.Command, _ []string) {
		if Commit == "none" {
			fmt.Fprintln(cmd.OutOrStdout(), Version)
			return
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s (%s)\n", Version, Commit)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
