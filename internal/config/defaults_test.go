package config

import (
	"testing"

	"github.com/openstay/openstay-release/internal/semver"

	"github.com/stretchr/testify/require"
)

func TestCreateDefaultConfiguration(t *testing.T) {
	cfg := CreateDefaultConfiguration()

	require.Equal(t, "package.json", *cfg.Manifest)
	require.Equal(t, "v", *cfg.TagPrefix)
	require.Equal(t, semver.BumpPatch, *cfg.BumpKind)
	require.Equal(t, semver.PolicyFallbackToPatch, *cfg.UnknownBumpKind)
	require.False(t, *cfg.SkipVersionBump)
	require.Equal(t, []string{"npx", "tsc", "-b"}, *cfg.Build.Compile)
	require.Equal(t, []string{"npx", "vite", "build"}, *cfg.Build.Bundle)
	require.Equal(t, "dist", *cfg.Build.OutputDir)
	require.Equal(t, "index.html", *cfg.Build.Document)
	require.False(t, *cfg.Release.Push)
	require.False(t, *cfg.Release.Publish)
	require.Equal(t, "origin", *cfg.Release.Remote)
	require.Nil(t, cfg.Release.Repository)
	require.True(t, *cfg.History.Enabled)
	require.Empty(t, cfg.Hosting)
}

func TestCreateDefaultConfiguration_Validates(t *testing.T) {
	require.NoError(t, validate(CreateDefaultConfiguration()))
}

func TestCreateDefaultConfiguration_Independent(t *testing.T) {
	a := CreateDefaultConfiguration()
	b := CreateDefaultConfiguration()
	*a.TagPrefix = "release-"
	(*a.Build.Compile)[0] = "pnpm"

	require.Equal(t, "v", *b.TagPrefix)
	require.Equal(t, "npx", (*b.Build.Compile)[0])
}
