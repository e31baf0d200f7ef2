package cmd

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/openstay/openstay-release/internal/metadata"
	"github.com/openstay/openstay-release/internal/output"
)

var flagInjectDeployment bool

var injectMetadataCmd = &cobra.Command{
	Use:   "inject-metadata [file]",
	Short: "Stamp build metadata into a built HTML document",
	Long: `Stamp build metadata into an HTML document without building. The
document defaults to the configured output directory's index.html.

Like a build, the document is only touched for deployment builds
(--deployment or VITE_DEPLOYMENT=true).`,
	Args: cobra.MaximumNArgs(1),
	RunE: injectMetadataRunE,
}

func init() {
	injectMetadataCmd.Flags().BoolVar(&flagInjectDeployment, "deployment", false, "treat this as a deployment build")
	rootCmd.AddCommand(injectMetadataCmd)
}

func injectMetadataRunE(cmd *cobra.Command, args []string) error {
	// 1. Wire up.
	a, err := newApp(cmd)
	if err != nil {
		return err
	}

	// 2. Locate the document.
	doc := filepath.Join(a.dir, a.cfg.OutputDir(), a.cfg.DocumentName())
	if len(args) > 0 {
		doc = args[0]
		if !filepath.IsAbs(doc) {
			doc = filepath.Join(a.dir, doc)
		}
	}

	// 3. Resolve the metadata for the current version.
	version := a.manifest.ReadOrDefault()
	md := metadata.Resolve(a.env.Vars(), metadata.Inputs{
		Version:  version.String(),
		Detected: a.detected(),
		Custom:   a.cfg.Metadata.Custom,
		Now:      now(),
	})

	// 4. Stamp.
	deployment := flagInjectDeployment || a.env.Deployment()
	if err := metadata.NewInjector(a.log).InjectFile(doc, md, deployment); err != nil {
		return err
	}

	vars := output.VersionVariables(version, a.cfg.Prefix())
	vars["Document"] = doc
	vars["Stamped"] = "false"
	if deployment {
		vars["Stamped"] = "true"
		vars["BuildTime"] = md.BuildTime
	}
	return writeVariables(a.out, "Metadata", vars)
}
