// Package sdk provides a public Go API for the Openstay release pipeline:
// checking a project for unreleased changes and bumping the version in its
// manifest, with the same rules the openstay-release CLI applies.
//
// Basic usage:
//
//	status, err := sdk.Assess(sdk.Options{Path: "/path/to/project"})
//	fmt.Println(status.HasChanges, status.Reason) // true file-diff-nonempty
//
//	result, err := sdk.SmartBump(ctx, sdk.BumpOptions{
//	    Options: sdk.Options{Path: "/path/to/project"},
//	    Kind:    "minor",
//	})
//	fmt.Println(result.Variables["Version"]) // "1.4.0"
package sdk

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/openstay/openstay-release/internal/changes"
	"github.com/openstay/openstay-release/internal/config"
	"github.com/openstay/openstay-release/internal/git"
	"github.com/openstay/openstay-release/internal/logging"
	"github.com/openstay/openstay-release/internal/manifest"
	"github.com/openstay/openstay-release/internal/output"
	"github.com/openstay/openstay-release/internal/release"
	"github.com/openstay/openstay-release/internal/semver"
)

// Options locates the project and its configuration.
type Options struct {
	// Path to the project directory. Defaults to "." if empty.
	Path string

	// ConfigPath is an openstay-release YAML config file. If empty,
	// auto-detects .github/openstay-release.yml or openstay-release.yml.
	ConfigPath string

	// Env replaces the process environment, e.g. for SKIP_VERSION_BUMP and
	// VERSION_BUMP_TYPE. Nil means the process environment.
	Env map[string]string

	// Logger receives progress and warnings. Nil discards them.
	Logger *slog.Logger
}

// BumpOptions configures Bump and SmartBump.
type BumpOptions struct {
	Options

	// Kind is major, minor or patch. Empty uses the configured default.
	// VERSION_BUMP_TYPE in the environment takes precedence.
	Kind string

	// Force bumps even when no changes are detected. Only SmartBump
	// consults it.
	Force bool
}

// Status is the outcome of a change check.
type Status struct {
	// Version is the current manifest version, 0.0.0 when unreadable.
	Version string

	// HasChanges reports whether a bump is due.
	HasChanges bool

	// Reason names how the decision was reached, e.g. "version-only-diff".
	Reason string

	// LatestTag is the latest release tag, empty when there is none.
	LatestTag string

	// ChangedPaths lists the paths changed since LatestTag.
	ChangedPaths []string

	// Explanation is the human-readable decision (same as CLI --explain).
	Explanation string
}

// Result holds the outcome of a bump and its output variables.
type Result struct {
	// Variables contains the same variables the CLI prints, keyed by name.
	// Common keys: Version, PreviousVersion, Major, Minor, Patch, TagName,
	// Bumped, Tagged, Reason.
	Variables map[string]string

	// Bumped reports whether the manifest was rewritten.
	Bumped bool

	// Tag is the created release tag, empty when tagging was skipped or
	// failed. Tagging failures never fail the bump.
	Tag string

	// TagErr holds the tagging failure, if any.
	TagErr error
}

// project is the wiring shared by every entry point.
type project struct {
	dir      string
	env      config.Environment
	cfg      *config.Config
	log      *slog.Logger
	manifest *manifest.Store
	repo     *git.GoGitRepository
	store    *git.RepositoryStore
}

func open(opts Options) (*project, error) {
	path := opts.Path
	if path == "" {
		path = "."
	}
	dir, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving project path: %w", err)
	}

	env := config.Snapshot()
	if opts.Env != nil {
		env = config.NewEnvironment(opts.Env)
	}
	log := logging.OrDiscard(opts.Logger)

	// 1. Load configuration.
	cfg, err := config.Load(dir, opts.ConfigPath, env)
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}

	p := &project{dir: dir, env: env, cfg: cfg, log: log}

	// 2. Locate the manifest.
	manifestPath := cfg.ManifestPath()
	if !filepath.IsAbs(manifestPath) {
		manifestPath = filepath.Join(dir, manifestPath)
	}
	p.manifest = manifest.NewStore(manifestPath, log)

	// 3. Open the repository when there is one.
	repo, err := git.Open(dir)
	switch {
	case err == nil:
		p.repo = repo
		p.store = git.NewRepositoryStore(repo)
	case errors.Is(err, git.ErrNoRepository):
	default:
		log.Warn("git repository unavailable", "path", dir, "err", err.Error())
	}
	return p, nil
}

func (p *project) detector() *changes.Detector {
	var vcs changes.VcsQuery
	root := ""
	if p.store != nil {
		vcs = p.store
		root = p.repo.WorkingDirectory()
	}
	return changes.NewDetector(vcs, changes.Options{
		TagPrefix:    p.cfg.Prefix(),
		ManifestPath: changes.ManifestPathInRepo(root, p.manifest.Path()),
	}, p.log)
}

func (p *project) bumper() *release.Bumper {
	var repo release.Repo
	if p.store != nil {
		repo = p.store
	}
	tagger := release.NewTagger(repo, release.Options{
		Prefix: p.cfg.Prefix(),
		Push:   p.cfg.PushTags(),
		Remote: p.cfg.Remote(),
		Token:  p.env.Get(config.EnvGitHubToken),
	}, p.log)
	return release.NewBumper(p.manifest, tagger, p.log)
}

func (p *project) kind(requested string) (semver.BumpKind, error) {
	raw, fromEnv := p.env.BumpKindOverride()
	if !fromEnv {
		raw = requested
	}
	if raw == "" {
		return p.cfg.DefaultBumpKind(), nil
	}

	kind, fellBack, err := semver.ParseBumpKind(raw, p.cfg.UnknownKindPolicy())
	if err != nil {
		return kind, err
	}
	if fellBack {
		p.log.Warn("unrecognized bump kind, using patch", "kind", raw)
	}
	return kind, nil
}

func (p *project) bumpDisabled() bool {
	return p.env.SkipVersionBump() || p.cfg.BumpDisabled()
}

// Assess reports whether the project changed since its latest release tag.
// It never modifies the project.
func Assess(opts Options) (*Status, error) {
	p, err := open(opts)
	if err != nil {
		return nil, err
	}

	a := p.detector().Assess()
	return &Status{
		Version:      p.manifest.ReadOrDefault().String(),
		HasChanges:   a.HasChanges,
		Reason:       a.Reason.String(),
		LatestTag:    a.Tag,
		ChangedPaths: a.ChangedPaths,
		Explanation:  output.FormatExplanation(a),
	}, nil
}

// Bump bumps the manifest version unconditionally and tags the release.
// A missing or malformed manifest is an error.
func Bump(ctx context.Context, opts BumpOptions) (*Result, error) {
	p, err := open(opts.Options)
	if err != nil {
		return nil, err
	}
	if p.bumpDisabled() {
		return skipped(p, p.manifest.ReadOrDefault(), changes.Disabled()), nil
	}

	kind, err := p.kind(opts.Kind)
	if err != nil {
		return nil, err
	}
	current, err := p.manifest.Read()
	if err != nil {
		return nil, fmt.Errorf("reading current version: %w", err)
	}
	return bump(ctx, p, current, kind)
}

// SmartBump bumps and tags only when something other than the version
// itself changed since the latest release tag. Skipping is not an error.
func SmartBump(ctx context.Context, opts BumpOptions) (*Result, error) {
	p, err := open(opts.Options)
	if err != nil {
		return nil, err
	}

	current := p.manifest.ReadOrDefault()
	if p.bumpDisabled() {
		return skipped(p, current, changes.Disabled()), nil
	}

	kind, err := p.kind(opts.Kind)
	if err != nil {
		return nil, err
	}

	assessment := changes.Forced()
	if !opts.Force {
		assessment = p.detector().Assess()
	}
	if !assessment.HasChanges {
		return skipped(p, current, assessment), nil
	}

	res, err := bump(ctx, p, current, kind)
	if err != nil {
		return nil, err
	}
	res.Variables = output.Merge(output.AssessmentVariables(assessment), res.Variables)
	return res, nil
}

func bump(ctx context.Context, p *project, current semver.SemanticVersion, kind semver.BumpKind) (*Result, error) {
	res, err := p.bumper().Bump(ctx, current, kind)
	if err != nil {
		return nil, err
	}
	return &Result{
		Variables: output.BumpVariables(res, p.cfg.Prefix()),
		Bumped:    true,
		Tag:       res.Tag,
		TagErr:    res.TagErr,
	}, nil
}

func skipped(p *project, current semver.SemanticVersion, a changes.Assessment) *Result {
	return &Result{Variables: output.SkippedVariables(current, p.cfg.Prefix(), a)}
}
