// Package release tags bumped versions and announces them to the remote.
package release

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/openstay/openstay-release/internal/git"
	"github.com/openstay/openstay-release/internal/logging"
	"github.com/openstay/openstay-release/internal/semver"
)

// DefaultRemote is the remote tags are pushed to.
const DefaultRemote = "origin"

// Repo is the part of the git store the tagger writes through.
// *git.RepositoryStore implements it.
type Repo interface {
	Head() (git.Branch, error)
	CreateReleaseTag(name, message string) (git.Tag, error)
	PushTag(ctx context.Context, remote, name, token string) error
}

var _ Repo = (*git.RepositoryStore)(nil)

// Publisher creates a hosted release for a pushed tag and returns its URL.
type Publisher interface {
	PublishRelease(ctx context.Context, tag, body string) (string, error)
}

// Tag is a created release tag. It is never mutated.
type Tag struct {
	Name      string
	Message   string
	Version   semver.SemanticVersion
	CommitSha string
}

// TagError reports a failed tag creation. Callers treat it as a warning.
type TagError struct {
	Tag string
	Err error
}

func (e *TagError) Error() string {
	return fmt.Sprintf("tagging %s: %v", e.Tag, e.Err)
}

func (e *TagError) Unwrap() error {
	return e.Err
}

// Options configures the remote steps that follow tag creation.
type Options struct {
	// Prefix precedes the version in the tag name. Default "v".
	Prefix string
	// Push sends the tag to Remote after it is created.
	Push   bool
	Remote string
	// Token authenticates the push over HTTPS.
	Token string
	// Publisher, when set, creates a hosted release for the pushed tag.
	Publisher Publisher
}

// Tagger creates annotated release tags on HEAD.
type Tagger struct {
	repo Repo
	opts Options
	log  *slog.Logger
}

// NewTagger creates a Tagger. A nil repo means there is no repository and
// every Tag call fails with a *TagError wrapping git.ErrNoRepository.
func NewTagger(repo Repo, opts Options, log *slog.Logger) *Tagger {
	if opts.Prefix == "" {
		opts.Prefix = "v"
	}
	if opts.Remote == "" {
		opts.Remote = DefaultRemote
	}
	return &Tagger{repo: repo, opts: opts, log: logging.OrDiscard(log)}
}

// Message returns the annotation used for a release tag.
func Message(v semver.SemanticVersion) string {
	return "Release version " + v.String()
}

// Tag creates the annotated tag <prefix>M.N.P on HEAD.
func (t *Tagger) Tag(v semver.SemanticVersion) (Tag, error) {
	name := v.TagName(t.opts.Prefix)
	if t.repo == nil {
		return Tag{}, &TagError{Tag: name, Err: git.ErrNoRepository}
	}

	head, err := t.repo.Head()
	if err != nil {
		return Tag{}, &TagError{Tag: name, Err: err}
	}
	if head.Tip == nil {
		return Tag{}, &TagError{Tag: name, Err: git.ErrNoCommits}
	}

	msg := Message(v)
	if _, err := t.repo.CreateReleaseTag(name, msg); err != nil {
		return Tag{}, &TagError{Tag: name, Err: err}
	}

	t.log.Info("created release tag", "tag", name, "commit", head.Tip.ShortSha())
	return Tag{Name: name, Message: msg, Version: v, CommitSha: head.Tip.Sha}, nil
}

// Announce pushes the tag and publishes a release when configured.
// Failures are logged as warnings and never stop the pipeline; the
// release URL is returned when one was created.
func (t *Tagger) Announce(ctx context.Context, tag Tag) string {
	if !t.opts.Push {
		return ""
	}

	if err := t.repo.PushTag(ctx, t.opts.Remote, tag.Name, t.opts.Token); err != nil {
		t.log.Warn("pushing release tag failed", "tag", tag.Name, "remote", t.opts.Remote, "err", err.Error())
		return ""
	}
	t.log.Info("pushed release tag", "tag", tag.Name, "remote", t.opts.Remote)

	if t.opts.Publisher == nil {
		return ""
	}
	url, err := t.opts.Publisher.PublishRelease(ctx, tag.Name, tag.Message)
	if err != nil {
		t.log.Warn("publishing release failed", "tag", tag.Name, "err", err.Error())
		return ""
	}
	t.log.Info("published release", "tag", tag.Name, "url", url)
	return url
}

// Release tags v and announces it. The returned error is always a
// *TagError; remote failures are only logged.
func (t *Tagger) Release(ctx context.Context, v semver.SemanticVersion) (Tag, string, error) {
	tag, err := t.Tag(v)
	if err != nil {
		return Tag{}, "", err
	}
	return tag, t.Announce(ctx, tag), nil
}
