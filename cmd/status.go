package cmd

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/openstay/openstay-release/internal/output"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the current version and whether a bump is due",
	Args:  cobra.NoArgs,
	RunE:  statusRunE,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func statusRunE(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}

	current := a.manifest.ReadOrDefault()
	assessment := a.detector().Assess()
	a.explain(func(w io.Writer) error { return output.WriteExplanation(w, assessment) })

	vars := output.Merge(
		output.VersionVariables(current, a.cfg.Prefix()),
		output.AssessmentVariables(assessment),
	)
	vars["Manifest"] = a.manifest.Path()
	vars["BumpDisabled"] = "false"
	if a.bumpDisabled() {
		vars["BumpDisabled"] = "true"
	}
	return writeVariables(a.out, "Status", vars)
}
