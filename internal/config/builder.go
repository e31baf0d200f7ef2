package config

import (
	"fmt"
	"sort"
	"strings"
)

// Builder constructs a Config by layering overrides on top of defaults.
type Builder struct {
	overrides []*Config
}

// NewBuilder creates a new configuration builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// Add adds a configuration override. Overrides are applied in order:
// later overrides take precedence over earlier ones.
func (b *Builder) Add(override *Config) *Builder {
	if override != nil {
		b.overrides = append(b.overrides, override)
	}
	return b
}

// Build constructs the final configuration by starting with defaults,
// applying all overrides, and validating.
func (b *Builder) Build() (*Config, error) {
	cfg := CreateDefaultConfiguration()

	for _, override := range b.overrides {
		mergeConfig(cfg, override)
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// mergeConfig applies non-nil fields from src to dst.
func mergeConfig(dst, src *Config) {
	if src.Manifest != nil {
		dst.Manifest = src.Manifest
	}
	if src.TagPrefix != nil {
		dst.TagPrefix = src.TagPrefix
	}
	if src.BumpKind != nil {
		dst.BumpKind = src.BumpKind
	}
	if src.UnknownBumpKind != nil {
		dst.UnknownBumpKind = src.UnknownBumpKind
	}
	if src.SkipVersionBump != nil {
		dst.SkipVersionBump = src.SkipVersionBump
	}

	if src.Build.Compile != nil {
		dst.Build.Compile = src.Build.Compile
	}
	if src.Build.Bundle != nil {
		dst.Build.Bundle = src.Build.Bundle
	}
	if src.Build.OutputDir != nil {
		dst.Build.OutputDir = src.Build.OutputDir
	}
	if src.Build.Document != nil {
		dst.Build.Document = src.Build.Document
	}

	if src.Release.Push != nil {
		dst.Release.Push = src.Release.Push
	}
	if src.Release.Remote != nil {
		dst.Release.Remote = src.Release.Remote
	}
	if src.Release.Publish != nil {
		dst.Release.Publish = src.Release.Publish
	}
	if src.Release.Repository != nil {
		dst.Release.Repository = src.Release.Repository
	}
	if src.Release.GitHubAPIURL != nil {
		dst.Release.GitHubAPIURL = src.Release.GitHubAPIURL
	}

	// Custom metadata: merge maps
	if src.Metadata.Custom != nil {
		if dst.Metadata.Custom == nil {
			dst.Metadata.Custom = make(map[string]string)
		}
		for k, v := range src.Metadata.Custom {
			dst.Metadata.Custom[k] = v
		}
	}

	// Hosting targets: merge per-key
	if src.Hosting != nil {
		if dst.Hosting == nil {
			dst.Hosting = make(map[string]*HostingTarget)
		}
		for name, srcTarget := range src.Hosting {
			if srcTarget == nil {
				continue
			}
			if dstTarget, ok := dst.Hosting[name]; ok {
				srcTarget.MergeTo(dstTarget)
			} else {
				t := *srcTarget
				dst.Hosting[name] = &t
			}
		}
	}

	if src.History.Enabled != nil {
		dst.History.Enabled = src.History.Enabled
	}
	if src.History.Path != nil {
		dst.History.Path = src.History.Path
	}
}

// validate checks the configuration for errors.
func validate(cfg *Config) error {
	if strings.TrimSpace(cfg.ManifestPath()) == "" {
		return fmt.Errorf("manifest path is empty")
	}
	if strings.ContainsAny(cfg.Prefix(), " \t~^:?*[\\") {
		return fmt.Errorf("invalid tag-prefix %q: not allowed in a git ref", cfg.Prefix())
	}
	if len(cfg.CompileCommand()) == 0 {
		return fmt.Errorf("build.compile must name a command")
	}
	if len(cfg.BundleCommand()) == 0 {
		return fmt.Errorf("build.bundle must name a command")
	}

	for _, name := range cfg.TargetNames() {
		target := cfg.Hosting[name]
		if target.Bucket == nil || *target.Bucket == "" {
			return fmt.Errorf("hosting target %q missing bucket", name)
		}
	}

	return nil
}

// TargetNames returns the configured hosting target names in sorted order.
func (c *Config) TargetNames() []string {
	names := make([]string, 0, len(c.Hosting))
	for name := range c.Hosting {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
