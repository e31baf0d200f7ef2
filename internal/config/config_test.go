package config

import (
	"testing"

	"github.com/openstay/openstay-release/internal/semver"

	"github.com/stretchr/testify/require"
)

func TestConfig_AccessorsOnEmptyConfig(t *testing.T) {
	cfg := &Config{}

	require.Equal(t, DefaultManifest, cfg.ManifestPath())
	require.Equal(t, DefaultTagPrefix, cfg.Prefix())
	require.Equal(t, DefaultOutputDir, cfg.OutputDir())
	require.Equal(t, DefaultDocument, cfg.DocumentName())
	require.Equal(t, DefaultRemote, cfg.Remote())
	require.Equal(t, DefaultHistoryPath, cfg.HistoryPath())
	require.Nil(t, cfg.CompileCommand())
	require.Nil(t, cfg.BundleCommand())
	require.False(t, cfg.PushTags())
	require.False(t, cfg.PublishReleases())
	require.False(t, cfg.BumpDisabled())
	require.True(t, cfg.HistoryEnabled())
	require.Equal(t, semver.BumpPatch, cfg.DefaultBumpKind())
	require.Equal(t, semver.PolicyFallbackToPatch, cfg.UnknownKindPolicy())
}

func TestConfig_AccessorsReadFields(t *testing.T) {
	cfg := &Config{
		Manifest:        stringPtr("web/package.json"),
		TagPrefix:       stringPtr("release-"),
		BumpKind:        bumpKindPtr(semver.BumpMinor),
		UnknownBumpKind: policyPtr(semver.PolicyReject),
		SkipVersionBump: boolPtr(true),
		Build: BuildConfig{
			Compile:   strSlicePtr([]string{"tsc"}),
			Bundle:    strSlicePtr([]string{"vite", "build"}),
			OutputDir: stringPtr("build"),
			Document:  stringPtr("app.html"),
		},
		Release: ReleaseConfig{
			Push:    boolPtr(true),
			Publish: boolPtr(true),
			Remote:  stringPtr("upstream"),
		},
		History: HistoryConfig{Enabled: boolPtr(false), Path: stringPtr("h.db")},
	}

	require.Equal(t, "web/package.json", cfg.ManifestPath())
	require.Equal(t, "release-", cfg.Prefix())
	require.Equal(t, semver.BumpMinor, cfg.DefaultBumpKind())
	require.Equal(t, semver.PolicyReject, cfg.UnknownKindPolicy())
	require.True(t, cfg.BumpDisabled())
	require.Equal(t, []string{"tsc"}, cfg.CompileCommand())
	require.Equal(t, []string{"vite", "build"}, cfg.BundleCommand())
	require.Equal(t, "build", cfg.OutputDir())
	require.Equal(t, "app.html", cfg.DocumentName())
	require.True(t, cfg.PushTags())
	require.True(t, cfg.PublishReleases())
	require.Equal(t, "upstream", cfg.Remote())
	require.False(t, cfg.HistoryEnabled())
	require.Equal(t, "h.db", cfg.HistoryPath())
}

func TestConfig_GitHubSettingsPreferFile(t *testing.T) {
	env := NewEnvironment(map[string]string{
		EnvGitHubRepo:   "env-owner/env-repo",
		EnvGitHubAPIURL: "https://ghe.example.com/api/v3/",
	})

	cfg := &Config{}
	require.Equal(t, "env-owner/env-repo", cfg.GitHubRepository(env))
	require.Equal(t, "https://ghe.example.com/api/v3/", cfg.GitHubAPIURL(env))

	cfg.Release.Repository = stringPtr("openstay/web")
	cfg.Release.GitHubAPIURL = stringPtr("https://api.github.com/")
	require.Equal(t, "openstay/web", cfg.GitHubRepository(env))
	require.Equal(t, "https://api.github.com/", cfg.GitHubAPIURL(env))
}

func TestHostingTarget_MergeTo(t *testing.T) {
	dst := &HostingTarget{Bucket: stringPtr("a"), Region: stringPtr("eu-west-1")}
	src := &HostingTarget{Bucket: stringPtr("b"), Prefix: stringPtr("app/")}

	src.MergeTo(dst)

	require.Equal(t, "b", *dst.Bucket)
	require.Equal(t, "app/", *dst.Prefix)
	require.Equal(t, "eu-west-1", *dst.Region)
	require.Nil(t, dst.Profile)
}
