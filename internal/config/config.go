// Package config provides YAML configuration loading, defaults, layered
// merging and the process environment snapshot for openstay-release.
package config

import "github.com/openstay/openstay-release/internal/semver"

// Config is the root configuration. All optional fields are pointers to
// support merge semantics during configuration building.
type Config struct {
	Manifest        *string                   `yaml:"manifest" json:"manifest"`
	TagPrefix       *string                   `yaml:"tag-prefix" json:"tagPrefix"`
	BumpKind        *semver.BumpKind          `yaml:"bump-kind" json:"bumpKind"`
	UnknownBumpKind *semver.UnknownKindPolicy `yaml:"unknown-bump-kind" json:"unknownBumpKind"`
	SkipVersionBump *bool                     `yaml:"skip-version-bump" json:"skipVersionBump"`
	Build           BuildConfig               `yaml:"build" json:"build"`
	Release         ReleaseConfig             `yaml:"release" json:"release"`
	Metadata        MetadataConfig            `yaml:"metadata" json:"metadata"`
	Hosting         map[string]*HostingTarget `yaml:"hosting" json:"hosting"`
	History         HistoryConfig             `yaml:"history" json:"history"`
}

// BuildConfig holds the compile and bundle steps of build-with-version.
type BuildConfig struct {
	// Compile is the type-check/compile command, as argv.
	Compile *[]string `yaml:"compile" json:"compile"`
	// Bundle is the asset bundler command, as argv.
	Bundle *[]string `yaml:"bundle" json:"bundle"`
	// OutputDir is the bundler's output directory, relative to the project.
	OutputDir *string `yaml:"output-dir" json:"outputDir"`
	// Document is the HTML entry point inside OutputDir.
	Document *string `yaml:"document" json:"document"`
}

// ReleaseConfig controls what happens after a release tag is created.
type ReleaseConfig struct {
	Push   *bool   `yaml:"push" json:"push"`
	Remote *string `yaml:"remote" json:"remote"`
	// Publish creates a GitHub release for the pushed tag.
	Publish *bool `yaml:"publish" json:"publish"`
	// Repository is owner/repo. Defaults to GITHUB_REPOSITORY.
	Repository *string `yaml:"repository" json:"repository"`
	// GitHubAPIURL targets GitHub Enterprise.
	GitHubAPIURL *string `yaml:"github-api-url" json:"githubApiUrl"`
}

// MetadataConfig feeds the injected build metadata.
type MetadataConfig struct {
	Custom map[string]string `yaml:"custom" json:"custom"`
}

// HostingTarget is one S3 bucket the artifact can be deployed to.
type HostingTarget struct {
	Bucket  *string `yaml:"bucket" json:"bucket"`
	Prefix  *string `yaml:"prefix" json:"prefix"`
	Region  *string `yaml:"region" json:"region"`
	Profile *string `yaml:"profile" json:"profile"`
}

// HistoryConfig controls the local release log.
type HistoryConfig struct {
	Enabled *bool   `yaml:"enabled" json:"enabled"`
	Path    *string `yaml:"path" json:"path"`
}

// MergeTo copies the non-nil fields of t onto dst.
func (t *HostingTarget) MergeTo(dst *HostingTarget) {
	if t.Bucket != nil {
		dst.Bucket = t.Bucket
	}
	if t.Prefix != nil {
		dst.Prefix = t.Prefix
	}
	if t.Region != nil {
		dst.Region = t.Region
	}
	if t.Profile != nil {
		dst.Profile = t.Profile
	}
}

// Accessors for a built Config. Build fills every field; the fallbacks
// only matter for hand-made configs in tests.

func (c *Config) ManifestPath() string { return deref(c.Manifest, DefaultManifest) }

func (c *Config) Prefix() string { return deref(c.TagPrefix, DefaultTagPrefix) }

func (c *Config) CompileCommand() []string { return derefSlice(c.Build.Compile) }

func (c *Config) BundleCommand() []string { return derefSlice(c.Build.Bundle) }

func (c *Config) OutputDir() string { return deref(c.Build.OutputDir, DefaultOutputDir) }

func (c *Config) DocumentName() string { return deref(c.Build.Document, DefaultDocument) }

func (c *Config) Remote() string { return deref(c.Release.Remote, DefaultRemote) }

func (c *Config) HistoryPath() string { return deref(c.History.Path, DefaultHistoryPath) }

func (c *Config) PushTags() bool { return c.Release.Push != nil && *c.Release.Push }

func (c *Config) PublishReleases() bool { return c.Release.Publish != nil && *c.Release.Publish }

func (c *Config) BumpDisabled() bool { return c.SkipVersionBump != nil && *c.SkipVersionBump }

// HistoryEnabled defaults to true.
func (c *Config) HistoryEnabled() bool { return c.History.Enabled == nil || *c.History.Enabled }

func (c *Config) DefaultBumpKind() semver.BumpKind {
	if c.BumpKind == nil {
		return semver.BumpPatch
	}
	return *c.BumpKind
}

func (c *Config) UnknownKindPolicy() semver.UnknownKindPolicy {
	if c.UnknownBumpKind == nil {
		return semver.PolicyFallbackToPatch
	}
	return *c.UnknownBumpKind
}

func deref(p *string, fallback string) string {
	if p == nil {
		return fallback
	}
	return *p
}

func derefSlice(p *[]string) []string {
	if p == nil {
		return nil
	}
	return *p
}

// GitHubRepository returns release.repository, falling back to
// GITHUB_REPOSITORY.
func (c *Config) GitHubRepository(env Environment) string {
	return deref(c.Release.Repository, env.Get(EnvGitHubRepo))
}

// GitHubAPIURL returns release.github-api-url, falling back to
// GITHUB_API_URL.
func (c *Config) GitHubAPIURL(env Environment) string {
	return deref(c.Release.GitHubAPIURL, env.Get(EnvGitHubAPIURL))
}
