// Package changes decides whether the repository changed since the last
// release tag, so that builds without new work do not bump the version.
package changes

import (
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/openstay/openstay-release/internal/git"
	"github.com/openstay/openstay-release/internal/logging"
)

// VcsQuery is the narrow view of version control the detector needs.
// *git.RepositoryStore implements it.
type VcsQuery interface {
	LatestReleaseTag(prefix string) (git.VersionTag, bool, error)
	ResolveTag(tag git.VersionTag) (string, error)
	CommitCount() (int, error)
	CommitCountSince(sha string) (int, error)
	ChangedPathsSince(sha string) ([]string, error)
	FileDiffSince(sha, path string) (git.FileDiff, error)
}

var _ VcsQuery = (*git.RepositoryStore)(nil)

// NoiseFilter reports whether a manifest diff only carries release noise,
// i.e. a version bump that must not trigger another bump.
type NoiseFilter func(diff git.FileDiff) bool

// Options configures a Detector.
type Options struct {
	// TagPrefix precedes the version in release tag names. Default "v".
	TagPrefix string
	// ManifestPath is the manifest path relative to the repository root,
	// with forward slashes. Default "package.json".
	ManifestPath string
	// Noise replaces IsReleaseNoiseOnly.
	Noise NoiseFilter
}

// Detector computes a fresh Assessment on every call.
type Detector struct {
	vcs      VcsQuery
	prefix   string
	manifest string
	noise    NoiseFilter
	log      *slog.Logger
}

// NewDetector creates a Detector. A nil vcs means there is no repository.
func NewDetector(vcs VcsQuery, opts Options, log *slog.Logger) *Detector {
	if opts.TagPrefix == "" {
		opts.TagPrefix = "v"
	}
	if opts.ManifestPath == "" {
		opts.ManifestPath = "package.json"
	}
	if opts.Noise == nil {
		opts.Noise = IsReleaseNoiseOnly
	}
	return &Detector{
		vcs:      vcs,
		prefix:   opts.TagPrefix,
		manifest: filepath.ToSlash(opts.ManifestPath),
		noise:    opts.Noise,
		log:      logging.OrDiscard(log),
	}
}

// Assess walks the checks in order and stops at the first one that decides.
// Version control problems never surface as errors: they resolve to the
// permissive answer and are logged.
func (d *Detector) Assess() Assessment {
	a := d.assess()
	d.log.Debug("change assessment",
		"has_changes", a.HasChanges,
		"reason", a.Reason.String(),
		"tag", a.Tag,
		"commits_since_tag", a.CommitsSinceTag)
	return a
}

func (d *Detector) assess() Assessment {
	// Step 1: without history nothing can prove the tree is unchanged.
	if d.vcs == nil {
		return Assessment{HasChanges: true, Reason: ReasonNoRepository}
	}

	// Step 2: find the latest release tag.
	tag, found, err := d.vcs.LatestReleaseTag(d.prefix)
	if err != nil {
		return d.failed("listing release tags", err)
	}
	if !found {
		total, err := d.vcs.CommitCount()
		if err != nil {
			return d.failed("counting commits", err)
		}
		if total == 0 {
			return Assessment{HasChanges: false, Reason: ReasonNoCommits}
		}
		return Assessment{HasChanges: true, Reason: ReasonNoPriorTag}
	}

	a := Assessment{Tag: tag.Tag.Name.Friendly, TagVersion: tag.Version}

	// Step 3: the tag must point at a reachable commit.
	sha, err := d.vcs.ResolveTag(tag)
	if err != nil {
		d.log.Warn("release tag does not resolve to a commit", "tag", a.Tag, "err", err.Error())
		a.HasChanges, a.Reason = true, ReasonTagUnresolvable
		return a
	}

	// Step 4: commits since the tag.
	count, err := d.vcs.CommitCountSince(sha)
	if err != nil {
		return d.failed("counting commits since "+a.Tag, err)
	}
	a.CommitsSinceTag = count
	if count == 0 {
		a.Reason = ReasonNoCommitsSinceTag
		return a
	}

	// Step 5: what actually changed.
	paths, err := d.vcs.ChangedPathsSince(sha)
	if err != nil {
		return d.failed("listing changed paths since "+a.Tag, err)
	}
	a.ChangedPaths = paths
	if len(paths) == 0 {
		a.Reason = ReasonEmptyDiff
		return a
	}

	if len(paths) == 1 && paths[0] == d.manifest {
		diff, err := d.vcs.FileDiffSince(sha, d.manifest)
		if err != nil {
			return d.failed("diffing "+d.manifest, err)
		}
		if d.noise(diff) {
			a.Reason = ReasonVersionOnlyDiff
			return a
		}
	}

	a.HasChanges, a.Reason = true, ReasonFileDiffNonEmpty
	return a
}

func (d *Detector) failed(action string, err error) Assessment {
	d.log.Warn("change detection failed, assuming changes", "action", action, "err", err.Error())
	return Assessment{HasChanges: true, Reason: ReasonQueryFailed}
}

// ManifestPathInRepo returns the manifest location relative to the
// repository root, as the detector compares it with changed paths.
// Paths outside the repository are returned unchanged.
func ManifestPathInRepo(repoRoot, manifestPath string) string {
	if repoRoot == "" {
		return filepath.ToSlash(manifestPath)
	}
	absRoot, err := filepath.Abs(repoRoot)
	if err != nil {
		return filepath.ToSlash(manifestPath)
	}
	absManifest, err := filepath.Abs(manifestPath)
	if err != nil {
		return filepath.ToSlash(manifestPath)
	}
	rel, err := filepath.Rel(absRoot, absManifest)
	if err != nil || strings.HasPrefix(rel, "..") {
		return filepath.ToSlash(manifestPath)
	}
	return filepath.ToSlash(rel)
}
