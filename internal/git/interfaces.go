package git

import "context"

// Repository provides low-level git operations.
// This is the key abstraction point for testing and backend swapping.
type Repository interface {
	// WorkingDirectory returns the path to the working directory.
	WorkingDirectory() string

	// Head returns the branch HEAD points at with its tip commit.
	// Returns ErrNoCommits when HEAD is unborn.
	Head() (Branch, error)

	// Tags returns all tags in the repository.
	Tags() ([]Tag, error)

	// PeelTagToCommit resolves a tag to its target commit SHA.
	// For lightweight tags, returns the target directly.
	// For annotated tags, peels through to the commit.
	PeelTagToCommit(tag Tag) (string, error)

	// CommitLog returns commits reachable from 'to' but not from 'from',
	// in reverse chronological order. If from is empty, all ancestors of
	// 'to' are returned.
	CommitLog(from, to string) ([]Commit, error)

	// ChangedPaths returns the sorted set of paths that differ between the
	// trees of two commits.
	ChangedPaths(from, to string) ([]string, error)

	// FileDiff returns the line changes of a single path between two commits.
	FileDiff(from, to, path string) (FileDiff, error)

	// CreateAnnotatedTag creates an annotated tag on the given commit.
	// Returns ErrTagExists when the name is already taken.
	CreateAnnotatedTag(name, sha, message string) (Tag, error)

	// PushTag pushes a tag ref to the named remote. An empty token pushes
	// without credentials.
	PushTag(ctx context.Context, remote, name, token string) error
}
