package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/openstay/openstay-release/internal/changes"
	"github.com/openstay/openstay-release/internal/history"
	"github.com/openstay/openstay-release/internal/output"
	"github.com/openstay/openstay-release/internal/release"
)

var bumpVersionCmd = &cobra.Command{
	Use:   "bump-version [major|minor|patch]",
	Short: "Bump the manifest version and tag the release",
	Long: `Bump the version in the manifest unconditionally, then create the
annotated release tag on HEAD.

The bump kind comes from VERSION_BUMP_TYPE, then the argument, then the
configured default (patch). SKIP_VERSION_BUMP=true makes this a no-op.
A missing or malformed manifest is an error.`,
	Args: cobra.MaximumNArgs(1),
	RunE: bumpVersionRunE,
}

func init() {
	rootCmd.AddCommand(bumpVersionCmd)
}

func bumpVersionRunE(cmd *cobra.Command, args []string) error {
	// 1. Wire up.
	a, err := newApp(cmd)
	if err != nil {
		return err
	}

	// 2. Respect the global switch.
	if a.bumpDisabled() {
		a.log.Info("version bumping disabled, nothing to do")
		current := a.manifest.ReadOrDefault()
		return writeVariables(a.out, "Version", output.SkippedVariables(current, a.cfg.Prefix(), changes.Disabled()))
	}

	// 3. Resolve the bump kind.
	kind, err := a.bumpKind(args)
	if err != nil {
		return err
	}

	// 4. Read the current version strictly.
	current, err := a.manifest.Read()
	if err != nil {
		return fmt.Errorf("reading current version: %w", err)
	}

	// 5. Write and tag.
	ctx := cmd.Context()
	res, err := a.bumper(ctx).Bump(ctx, current, kind)
	if err != nil {
		return err
	}

	// 6. Record and report.
	a.record(ctx, bumpRecord(res, string(changes.ReasonForced)))
	return writeVariables(a.out, "Version bump", output.BumpVariables(res, a.cfg.Prefix()))
}

func bumpRecord(res release.BumpResult, reason string) history.ReleaseRecord {
	return history.ReleaseRecord{
		Kind:     history.KindBump,
		Version:  res.Version.String(),
		Previous: res.Previous.String(),
		Tag:      res.Tag,
		Commit:   res.CommitSha,
		Reason:   reason,
	}
}
