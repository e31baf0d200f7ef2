package git

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/openstay/openstay-release/internal/semver"
)

// RepositoryStore provides release-oriented queries built on top of a
// Repository. Every "since" query compares against the current HEAD.
type RepositoryStore struct {
	repo Repository
}

// NewRepositoryStore creates a new RepositoryStore wrapping the given Repository.
func NewRepositoryStore(repo Repository) *RepositoryStore {
	return &RepositoryStore{repo: repo}
}

// --- Tag queries ---

// GetVersionTags returns all tag refs whose name is <prefix>major.minor.patch,
// sorted by version descending (highest first). Tags are not peeled, so
// tags pointing at missing objects are still listed.
func (s *RepositoryStore) GetVersionTags(prefix string) ([]VersionTag, error) {
	tags, err := s.repo.Tags()
	if err != nil {
		return nil, fmt.Errorf("listing tags: %w", err)
	}

	var result []VersionTag
	for _, tag := range tags {
		if !tag.Name.IsTag() {
			continue
		}
		ver, ok := semver.ParseTag(tag.Name.Friendly, prefix)
		if !ok {
			continue
		}
		result = append(result, VersionTag{Tag: tag, Version: ver})
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Version.CompareTo(result[j].Version) > 0
	})

	return result, nil
}

// LatestReleaseTag returns the highest-versioned release tag. Returns false
// when no tag matches the prefix pattern.
func (s *RepositoryStore) LatestReleaseTag(prefix string) (VersionTag, bool, error) {
	tags, err := s.GetVersionTags(prefix)
	if err != nil {
		return VersionTag{}, false, err
	}
	if len(tags) == 0 {
		return VersionTag{}, false, nil
	}
	return tags[0], true, nil
}

// ResolveTag peels a release tag to the SHA of the commit it marks.
func (s *RepositoryStore) ResolveTag(tag VersionTag) (string, error) {
	return s.repo.PeelTagToCommit(tag.Tag)
}

// --- Commit queries ---

// Head returns the current branch. Returns ErrNoCommits on an unborn HEAD.
func (s *RepositoryStore) Head() (Branch, error) {
	return s.repo.Head()
}

// CommitCount returns the number of commits reachable from HEAD.
// An unborn HEAD has zero commits.
func (s *RepositoryStore) CommitCount() (int, error) {
	head, err := s.headSha()
	if errors.Is(err, ErrNoCommits) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	commits, err := s.repo.CommitLog("", head)
	if err != nil {
		return 0, fmt.Errorf("counting commits: %w", err)
	}
	return len(commits), nil
}

// CommitCountSince returns the number of commits reachable from HEAD but
// not from sha.
func (s *RepositoryStore) CommitCountSince(sha string) (int, error) {
	head, err := s.headSha()
	if err != nil {
		return 0, err
	}

	commits, err := s.repo.CommitLog(sha, head)
	if err != nil {
		return 0, fmt.Errorf("counting commits since %s: %w", shortSha(sha), err)
	}
	return len(commits), nil
}

// ChangedPathsSince returns the paths that differ between sha and HEAD.
func (s *RepositoryStore) ChangedPathsSince(sha string) ([]string, error) {
	head, err := s.headSha()
	if err != nil {
		return nil, err
	}
	return s.repo.ChangedPaths(sha, head)
}

// FileDiffSince returns the line changes of path between sha and HEAD.
func (s *RepositoryStore) FileDiffSince(sha, path string) (FileDiff, error) {
	head, err := s.headSha()
	if err != nil {
		return FileDiff{}, err
	}
	return s.repo.FileDiff(sha, head, path)
}

// --- Tag writes ---

// CreateReleaseTag creates an annotated tag on HEAD.
func (s *RepositoryStore) CreateReleaseTag(name, message string) (Tag, error) {
	head, err := s.headSha()
	if err != nil {
		return Tag{}, err
	}
	return s.repo.CreateAnnotatedTag(name, head, message)
}

// PushTag pushes a tag to the named remote.
func (s *RepositoryStore) PushTag(ctx context.Context, remote, name, token string) error {
	return s.repo.PushTag(ctx, remote, name, token)
}

func (s *RepositoryStore) headSha() (string, error) {
	head, err := s.repo.Head()
	if err != nil {
		return "", err
	}
	if head.Tip == nil || head.Tip.IsEmpty() {
		return "", ErrNoCommits
	}
	return head.Tip.Sha, nil
}

func shortSha(sha string) string {
	return Commit{Sha: sha}.ShortSha()
}
