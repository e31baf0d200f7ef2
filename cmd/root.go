package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/openstay/openstay-release/internal/build"
)

// Global flags shared across commands.
var (
	flagPath         string
	flagConfig       string
	flagOutput       string
	flagShowVariable string
	flagExplain      bool
	flagVerbosity    string
	flagNoHistory    bool
)

// rootCmd is the top-level command for openstay-release.
var rootCmd = &cobra.Command{
	Use:   "openstay-release",
	Short: "Version, build and deploy the Openstay web app",
	Long: `openstay-release owns the deployment versioning pipeline of the Openstay
web application: the semantic version in package.json, change detection
against git history, release tags, versioned builds with stamped build
metadata, and uploads to hosting targets.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagPath, "path", "p", ".", "path to the project directory")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "path to config file (default: auto-detect)")
	rootCmd.PersistentFlags().StringVarP(&flagOutput, "output", "o", "", "output format: json, table, or empty for KEY=value lines")
	rootCmd.PersistentFlags().StringVar(&flagShowVariable, "show-variable", "", "output a single variable (e.g. Version, TagName)")
	rootCmd.PersistentFlags().BoolVar(&flagExplain, "explain", false, "explain the change check and build states on stderr")
	rootCmd.PersistentFlags().StringVarP(&flagVerbosity, "verbosity", "v", "info", "log verbosity: quiet, info, debug")
	rootCmd.PersistentFlags().BoolVar(&flagNoHistory, "no-history", false, "do not record this run in the release history")
}

// Execute runs the root command. Build step failures exit with the
// failing tool's exit code, every other error with 1.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(exitCode(err))
	}
}

func exitCode(err error) int {
	var stepErr *build.StepError
	if errors.As(err, &stepErr) {
		return stepErr.Code()
	}
	return 1
}
