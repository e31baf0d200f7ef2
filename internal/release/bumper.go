package release

import (
	"context"
	"log/slog"

	"github.com/openstay/openstay-release/internal/logging"
	"github.com/openstay/openstay-release/internal/semver"
)

// VersionWriter persists a bumped version. *manifest.Store implements it.
type VersionWriter interface {
	Write(v semver.SemanticVersion) error
}

// Releaser tags a persisted version. *Tagger implements it.
type Releaser interface {
	Release(ctx context.Context, v semver.SemanticVersion) (Tag, string, error)
}

var _ Releaser = (*Tagger)(nil)

// BumpResult describes one completed bump.
type BumpResult struct {
	Previous semver.SemanticVersion
	Version  semver.SemanticVersion
	Kind     semver.BumpKind
	// Tag is the created tag name, empty when tagging failed.
	Tag        string
	CommitSha  string
	ReleaseURL string
	// TagErr is the tagging failure, already logged as a warning.
	TagErr error
}

// Bumper computes the next version, writes it and tags it.
type Bumper struct {
	store  VersionWriter
	tagger Releaser
	log    *slog.Logger
}

// NewBumper creates a Bumper.
func NewBumper(store VersionWriter, tagger Releaser, log *slog.Logger) *Bumper {
	return &Bumper{store: store, tagger: tagger, log: logging.OrDiscard(log)}
}

// Bump writes current bumped by kind. An overflowing bump or a write
// failure is returned and nothing is tagged. A tag failure is logged and reported on the result
// only, since the manifest already holds the new version.
func (b *Bumper) Bump(ctx context.Context, current semver.SemanticVersion, kind semver.BumpKind) (BumpResult, error) {
	next, err := current.Bump(kind)
	if err != nil {
		return BumpResult{Previous: current, Version: current, Kind: kind}, err
	}
	res := BumpResult{Previous: current, Version: next, Kind: kind}

	if err := b.store.Write(next); err != nil {
		return res, err
	}
	b.log.Info("version bumped", "from", current.String(), "to", next.String(), "kind", kind.String())

	tag, url, err := b.tagger.Release(ctx, next)
	if err != nil {
		b.log.Warn("release tag not created", "version", next.String(), "err", err.Error())
		res.TagErr = err
		return res, nil
	}
	res.Tag = tag.Name
	res.CommitSha = tag.CommitSha
	res.ReleaseURL = url
	return res, nil
}
