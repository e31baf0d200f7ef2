package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/openstay/openstay-release/internal/config"
	"github.com/openstay/openstay-release/internal/history"
	"github.com/openstay/openstay-release/internal/hosting"
	"github.com/openstay/openstay-release/internal/output"
)

var (
	flagDeployForce       bool
	flagDeployConcurrency int
)

var deployCmd = &cobra.Command{
	Use:   "deploy dev|all|<target>",
	Short: "Run a deployment build and upload it to hosting targets",
	Long: `Run build-with-version as a deployment build, then upload the output
directory to the named hosting target. "all" deploys to every configured
target in name order.`,
	Args: cobra.ExactArgs(1),
	RunE: deployRunE,
}

func init() {
	deployCmd.Flags().BoolVarP(&flagDeployForce, "force", "f", false, "bump even when no changes are detected")
	deployCmd.Flags().IntVar(&flagDeployConcurrency, "concurrency", hosting.DefaultConcurrency, "parallel uploads per target")
	rootCmd.AddCommand(deployCmd)
}

func deployRunE(cmd *cobra.Command, args []string) error {
	// 1. Wire up.
	a, err := newApp(cmd)
	if err != nil {
		return err
	}

	// 2. Resolve targets before building anything.
	targets, err := hosting.Select(hostingTargets(a.cfg), args[0])
	if err != nil {
		return err
	}

	// 3. Deployment build.
	ctx := cmd.Context()
	res, err := runBuild(ctx, a, flagDeployForce, true)
	if err != nil {
		return err
	}

	// 4. Upload to each target in turn.
	deployer := hosting.NewDeployer(newObjectClient, flagDeployConcurrency, a.log)
	artifact := filepath.Join(a.dir, a.cfg.OutputDir())
	var results []hosting.Result
	for _, target := range targets {
		r, err := deployer.Deploy(ctx, artifact, target)
		if err != nil {
			return err
		}
		results = append(results, r)
		a.record(ctx, history.ReleaseRecord{
			Kind:    history.KindDeploy,
			Version: res.Version.String(),
			Tag:     res.Tag,
			Commit:  res.Metadata.GitCommit,
			Branch:  res.Metadata.GitBranch,
			Target:  target.Name,
		})
	}

	// 5. Report.
	if flagOutput == formatTable && flagShowVariable == "" {
		output.WriteDeployTable(a.out, results)
		return nil
	}
	vars := output.BuildVariables(res, a.cfg.Prefix())
	vars["Targets"] = fmt.Sprint(len(results))
	return writeVariables(a.out, "Deploy", vars)
}

// hostingTargets converts configured targets for the deployer.
func hostingTargets(cfg *config.Config) map[string]hosting.Target {
	out := make(map[string]hosting.Target, len(cfg.Hosting))
	for name, t := range cfg.Hosting {
		out[name] = hosting.Target{
			Name:    name,
			Bucket:  deref(t.Bucket),
			Prefix:  deref(t.Prefix),
			Region:  deref(t.Region),
			Profile: deref(t.Profile),
		}
	}
	return out
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
