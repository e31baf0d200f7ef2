package cmd

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"github.com/openstay/openstay-release/internal/build"
	"github.com/openstay/openstay-release/internal/history"
	"github.com/openstay/openstay-release/internal/metadata"
	"github.com/openstay/openstay-release/internal/output"
)

var (
	flagBuildForce      bool
	flagBuildDeployment bool
)

var buildWithVersionCmd = &cobra.Command{
	Use:   "build-with-version",
	Short: "Bump when needed, then compile and bundle the app",
	Long: `Run the versioned build: check for changes, bump and tag when there
are any, run the compile step, then the bundle step with VITE_APP_VERSION,
VITE_BUILD_TIME, VITE_BUILD_TIMESTAMP and VITE_DEPLOYMENT set.

Deployment builds (--deployment or VITE_DEPLOYMENT=true) also stamp build
metadata into the bundled index.html. A failing step exits with that
tool's exit code.`,
	Args: cobra.NoArgs,
	RunE: buildWithVersionRunE,
}

func init() {
	buildWithVersionCmd.Flags().BoolVarP(&flagBuildForce, "force", "f", false, "bump even when no changes are detected")
	buildWithVersionCmd.Flags().BoolVar(&flagBuildDeployment, "deployment", false, "treat this as a deployment build")
	rootCmd.AddCommand(buildWithVersionCmd)
}

func buildWithVersionRunE(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	res, err := runBuild(ctx, a, flagBuildForce, flagBuildDeployment || a.env.Deployment())
	if err != nil {
		return err
	}
	return writeVariables(a.out, "Build", output.BuildVariables(res, a.cfg.Prefix()))
}

// runBuild runs the orchestrated build and records it.
func runBuild(ctx context.Context, a *app, force, deployment bool) (build.Result, error) {
	// 1. Resolve the bump kind from VERSION_BUMP_TYPE or config.
	kind, err := a.bumpKind(nil)
	if err != nil {
		return build.Result{}, err
	}

	// 2. Wire the pipeline.
	orch := build.NewOrchestrator(build.Deps{
		Store:    a.manifest,
		Detector: a.detector(),
		Bumper:   a.bumper(ctx),
		Stamper:  metadata.NewInjector(a.log),
		Runner:   newRunner(),
		Progress: build.NewProgress(a.progressFile()),
		Now:      now,
	}, build.Options{
		Dir:          a.dir,
		Compile:      a.cfg.CompileCommand(),
		Bundle:       a.cfg.BundleCommand(),
		OutputDir:    a.cfg.OutputDir(),
		Document:     a.cfg.DocumentName(),
		Kind:         kind,
		Force:        force,
		BumpDisabled: a.bumpDisabled(),
		Deployment:   deployment,
		Env:          a.env.Vars(),
		Detected:     a.detected(),
		CustomMeta:   a.cfg.Metadata.Custom,
		Output:       a.errOut,
	}, a.log)

	// 3. Run.
	res, err := orch.Run(ctx)
	a.explain(func(w io.Writer) error { return output.WriteBuildExplanation(w, res) })
	if err != nil {
		return res, err
	}

	// 4. Record the bump, if any, and the build.
	if res.Bumped {
		a.record(ctx, history.ReleaseRecord{
			Kind:     history.KindBump,
			Version:  res.Version.String(),
			Previous: res.Previous.String(),
			Tag:      res.Tag,
			Reason:   res.Assessment.Reason.String(),
		})
	}
	a.record(ctx, history.ReleaseRecord{
		Kind:     history.KindBuild,
		Version:  res.Version.String(),
		Previous: res.Previous.String(),
		Tag:      res.Tag,
		Commit:   res.Metadata.GitCommit,
		Branch:   res.Metadata.GitBranch,
		Reason:   res.Assessment.Reason.String(),
	})
	return res, nil
}
