package config

import "github.com/openstay/openstay-release/internal/semver"

// Defaults for a Vite + TypeScript web application.
const (
	DefaultManifest    = "package.json"
	DefaultTagPrefix   = "v"
	DefaultOutputDir   = "dist"
	DefaultDocument    = "index.html"
	DefaultRemote      = "origin"
	DefaultHistoryPath = ".openstay/release-history.db"
)

// CreateDefaultConfiguration returns a Config with all default values
// populated. No hosting targets are defined by default.
func CreateDefaultConfiguration() *Config {
	return &Config{
		Manifest:        stringPtr(DefaultManifest),
		TagPrefix:       stringPtr(DefaultTagPrefix),
		BumpKind:        bumpKindPtr(semver.BumpPatch),
		UnknownBumpKind: policyPtr(semver.PolicyFallbackToPatch),
		SkipVersionBump: boolPtr(false),
		Build: BuildConfig{
			Compile:   strSlicePtr([]string{"npx", "tsc", "-b"}),
			Bundle:    strSlicePtr([]string{"npx", "vite", "build"}),
			OutputDir: stringPtr(DefaultOutputDir),
			Document:  stringPtr(DefaultDocument),
		},
		Release: ReleaseConfig{
			Push:    boolPtr(false),
			Remote:  stringPtr(DefaultRemote),
			Publish: boolPtr(false),
		},
		History: HistoryConfig{
			Enabled: boolPtr(true),
			Path:    stringPtr(DefaultHistoryPath),
		},
	}
}
