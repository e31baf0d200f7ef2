package cmd

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/openstay/openstay-release/internal/changes"
	"github.com/openstay/openstay-release/internal/output"
)

var flagSmartForce bool

var smartVersionBumpCmd = &cobra.Command{
	Use:   "smart-version-bump [major|minor|patch]",
	Short: "Bump the version only when the project changed since the last release",
	Long: `Check git history since the latest release tag and bump only when
something other than the version itself changed. --force bumps regardless.

Skipping is a success. A missing manifest counts as version 0.0.0.`,
	Args: cobra.MaximumNArgs(1),
	RunE: smartVersionBumpRunE,
}

func init() {
	smartVersionBumpCmd.Flags().BoolVarP(&flagSmartForce, "force", "f", false, "bump even when no changes are detected")
	rootCmd.AddCommand(smartVersionBumpCmd)
}

func smartVersionBumpRunE(cmd *cobra.Command, args []string) error {
	// 1. Wire up.
	a, err := newApp(cmd)
	if err != nil {
		return err
	}

	// 2. Respect the global switch.
	current := a.manifest.ReadOrDefault()
	if a.bumpDisabled() {
		a.log.Info("version bumping disabled, nothing to do")
		return writeVariables(a.out, "Version", output.SkippedVariables(current, a.cfg.Prefix(), changes.Disabled()))
	}

	// 3. Resolve the bump kind before touching anything.
	kind, err := a.bumpKind(args)
	if err != nil {
		return err
	}

	// 4. Decide.
	assessment := changes.Forced()
	if !flagSmartForce {
		assessment = a.detector().Assess()
	}
	a.explain(func(w io.Writer) error { return output.WriteExplanation(w, assessment) })

	if !assessment.HasChanges {
		a.log.Info("no changes since the last release, keeping version",
			"version", current.String(), "reason", assessment.Reason.String())
		return writeVariables(a.out, "Version", output.SkippedVariables(current, a.cfg.Prefix(), assessment))
	}

	// 5. Write and tag.
	ctx := cmd.Context()
	res, err := a.bumper(ctx).Bump(ctx, current, kind)
	if err != nil {
		return err
	}

	// 6. Record and report.
	a.record(ctx, bumpRecord(res, assessment.Reason.String()))
	vars := output.Merge(output.AssessmentVariables(assessment), output.BumpVariables(res, a.cfg.Prefix()))
	return writeVariables(a.out, "Version bump", vars)
}
