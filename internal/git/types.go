// Package git provides the version-control layer for the release pipeline.
// It defines concrete entity types (Commit, Branch, Tag, FileDiff), a
// Repository interface with a go-git backend and a mock, and the
// release-oriented queries of RepositoryStore.
package git

import (
	"errors"
	"strings"
	"time"

	"github.com/openstay/openstay-release/internal/semver"
)

const (
	localBranchPrefix          = "refs/heads/"
	remoteTrackingBranchPrefix = "refs/remotes/"
	tagRefPrefix               = "refs/tags/"
)

var (
	// ErrNoRepository is returned when no git repository encloses the path.
	ErrNoRepository = errors.New("no git repository")

	// ErrNoCommits is returned when HEAD does not point to a commit yet.
	ErrNoCommits = errors.New("repository has no commits")

	// ErrTagExists is returned when creating a tag whose name is taken.
	ErrTagExists = errors.New("tag already exists")
)

// Commit represents a git commit.
type Commit struct {
	Sha     string
	Parents []string // parent SHAs; len > 1 means merge commit
	When    time.Time
	Message string
}

// IsMerge returns true if the commit has more than one parent.
func (c Commit) IsMerge() bool {
	return len(c.Parents) > 1
}

// ShortSha returns the first 7 characters of the SHA.
func (c Commit) ShortSha() string {
	if len(c.Sha) >= 7 {
		return c.Sha[:7]
	}
	return c.Sha
}

// IsEmpty returns true if the commit has no SHA (zero value).
func (c Commit) IsEmpty() bool {
	return c.Sha == ""
}

// ReferenceName represents a git reference with canonical and friendly forms.
type ReferenceName struct {
	Canonical string // e.g., "refs/heads/main"
	Friendly  string // e.g., "main"
}

// NewReferenceName creates a ReferenceName from a canonical ref path.
func NewReferenceName(canonical string) ReferenceName {
	friendly := canonical

	for _, prefix := range []string{localBranchPrefix, remoteTrackingBranchPrefix, tagRefPrefix} {
		if strings.HasPrefix(canonical, prefix) {
			friendly = canonical[len(prefix):]
			break
		}
	}

	return ReferenceName{
		Canonical: canonical,
		Friendly:  friendly,
	}
}

// NewTagReferenceName creates a ReferenceName for a tag.
func NewTagReferenceName(name string) ReferenceName {
	return NewReferenceName(tagRefPrefix + name)
}

// IsBranch returns true if this reference is a local branch.
func (r ReferenceName) IsBranch() bool {
	return strings.HasPrefix(r.Canonical, localBranchPrefix)
}

// IsTag returns true if this reference is a tag.
func (r ReferenceName) IsTag() bool {
	return strings.HasPrefix(r.Canonical, tagRefPrefix)
}

// Branch represents the branch HEAD is on.
type Branch struct {
	Name           ReferenceName
	Tip            *Commit
	IsDetachedHead bool
}

// FriendlyName returns the friendly name of the branch. Detached heads
// have no branch name.
func (b Branch) FriendlyName() string {
	if b.IsDetachedHead {
		return ""
	}
	return b.Name.Friendly
}

// Tag represents a git tag.
type Tag struct {
	Name      ReferenceName
	TargetSha string // SHA of the tag object (annotated) or commit (lightweight)
}

// VersionTag holds a tag whose name parses as a release version.
type VersionTag struct {
	Tag     Tag
	Version semver.SemanticVersion
}

// FileDiff holds the added and removed lines of one file between two commits.
type FileDiff struct {
	Path    string
	Added   []string
	Removed []string
}

// IsEmpty returns true when the file has no line changes.
func (d FileDiff) IsEmpty() bool {
	return len(d.Added) == 0 && len(d.Removed) == 0
}

// String renders the diff lines with "+" and "-" markers.
func (d FileDiff) String() string {
	var sb strings.Builder
	for _, l := range d.Removed {
		sb.WriteString("-" + l + "\n")
	}
	for _, l := range d.Added {
		sb.WriteString("+" + l + "\n")
	}
	return sb.String()
}
