package git

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	gogit "github.com/go-git/go-git/v5"
	gogitconfig "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/format/diff"
	"github.com/go-git/go-git/v5/plumbing/object"
	githttp "github.com/go-git/go-git/v5/plumbing/transport/http"
)

// Compile-time check that GoGitRepository implements Repository.
var _ Repository = (*GoGitRepository)(nil)

const (
	defaultTaggerName  = "openstay-release"
	defaultTaggerEmail = "release@openstay.invalid"
)

// GoGitRepository implements Repository using go-git.
type GoGitRepository struct {
	repo    *gogit.Repository
	workDir string
	now     func() time.Time
}

// Open opens the git repository enclosing path. Returns an error wrapping
// ErrNoRepository when there is none.
func Open(path string) (*GoGitRepository, error) {
	r, err := gogit.PlainOpenWithOptions(path, &gogit.PlainOpenOptions{
		DetectDotGit: true,
	})
	if err != nil {
		if errors.Is(err, gogit.ErrRepositoryNotExists) {
			return nil, fmt.Errorf("opening git repository at %s: %w", path, ErrNoRepository)
		}
		return nil, fmt.Errorf("opening git repository at %s: %w", path, err)
	}

	wt, err := r.Worktree()
	if err != nil {
		return nil, fmt.Errorf("getting worktree: %w", err)
	}

	return &GoGitRepository{
		repo:    r,
		workDir: wt.Filesystem.Root(),
		now:     time.Now,
	}, nil
}

func (r *GoGitRepository) WorkingDirectory() string {
	return r.workDir
}

func (r *GoGitRepository) Head() (Branch, error) {
	ref, err := r.repo.Head()
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			return Branch{}, ErrNoCommits
		}
		return Branch{}, fmt.Errorf("getting HEAD: %w", err)
	}

	commit, err := r.commitFromHash(ref.Hash())
	if err != nil {
		return Branch{}, fmt.Errorf("getting HEAD commit: %w", err)
	}

	return Branch{
		Name:           NewReferenceName(string(ref.Name())),
		Tip:            &commit,
		IsDetachedHead: !ref.Name().IsBranch(),
	}, nil
}

func (r *GoGitRepository) Tags() ([]Tag, error) {
	var tags []Tag

	iter, err := r.repo.Tags()
	if err != nil {
		return nil, fmt.Errorf("listing tags: %w", err)
	}

	err = iter.ForEach(func(ref *plumbing.Reference) error {
		tags = append(tags, Tag{
			Name:      NewReferenceName(string(ref.Name())),
			TargetSha: ref.Hash().String(),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("iterating tags: %w", err)
	}

	return tags, nil
}

func (r *GoGitRepository) PeelTagToCommit(tag Tag) (string, error) {
	hash := plumbing.NewHash(tag.TargetSha)

	// Try as an annotated tag first.
	tagObj, err := r.repo.TagObject(hash)
	if err == nil {
		commit, err := tagObj.Commit()
		if err != nil {
			return "", fmt.Errorf("peeling annotated tag %s: %w", tag.Name.Friendly, err)
		}
		return commit.Hash.String(), nil
	}

	// If not an annotated tag, check if it points directly to a commit.
	_, err = r.repo.CommitObject(hash)
	if err != nil {
		return "", fmt.Errorf("tag %s does not point to a commit: %w", tag.Name.Friendly, err)
	}

	return tag.TargetSha, nil
}

func (r *GoGitRepository) CommitLog(from, to string) ([]Commit, error) {
	toCommit, err := r.repo.CommitObject(plumbing.NewHash(to))
	if err != nil {
		return nil, fmt.Errorf("loading commit %s: %w", to, err)
	}

	// Everything reachable from 'from' is marked seen up front, so the
	// walk from 'to' neither yields nor descends into it.
	seen := make(map[plumbing.Hash]bool)
	if from != "" {
		fromCommit, err := r.repo.CommitObject(plumbing.NewHash(from))
		if err != nil {
			return nil, fmt.Errorf("loading commit %s: %w", from, err)
		}
		err = object.NewCommitPreorderIter(fromCommit, nil, nil).ForEach(func(c *object.Commit) error {
			seen[c.Hash] = true
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walking ancestors of %s: %w", from, err)
		}
	}

	var commits []Commit
	err = object.NewCommitPreorderIter(toCommit, seen, nil).ForEach(func(c *object.Commit) error {
		commits = append(commits, convertCommit(c))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("iterating commits: %w", err)
	}

	sort.SliceStable(commits, func(i, j int) bool {
		return commits[i].When.After(commits[j].When)
	})

	return commits, nil
}

func (r *GoGitRepository) ChangedPaths(from, to string) ([]string, error) {
	fromTree, err := r.treeOf(from)
	if err != nil {
		return nil, err
	}
	toTree, err := r.treeOf(to)
	if err != nil {
		return nil, err
	}

	changes, err := object.DiffTree(fromTree, toTree)
	if err != nil {
		return nil, fmt.Errorf("diffing trees %s..%s: %w", from, to, err)
	}

	set := make(map[string]struct{}, len(changes))
	for _, c := range changes {
		if c.From.Name != "" {
			set[c.From.Name] = struct{}{}
		}
		if c.To.Name != "" {
			set[c.To.Name] = struct{}{}
		}
	}

	paths := make([]string, 0, len(set))
	for p := range set {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	return paths, nil
}

func (r *GoGitRepository) FileDiff(from, to, path string) (FileDiff, error) {
	fromCommit, err := r.repo.CommitObject(plumbing.NewHash(from))
	if err != nil {
		return FileDiff{}, fmt.Errorf("loading commit %s: %w", from, err)
	}
	toCommit, err := r.repo.CommitObject(plumbing.NewHash(to))
	if err != nil {
		return FileDiff{}, fmt.Errorf("loading commit %s: %w", to, err)
	}

	patch, err := fromCommit.Patch(toCommit)
	if err != nil {
		return FileDiff{}, fmt.Errorf("computing patch %s..%s: %w", from, to, err)
	}

	result := FileDiff{Path: path}
	for _, fp := range patch.FilePatches() {
		if fp.IsBinary() || !patchTouches(fp, path) {
			continue
		}
		for _, chunk := range fp.Chunks() {
			switch chunk.Type() {
			case diff.Add:
				result.Added = append(result.Added, splitLines(chunk.Content())...)
			case diff.Delete:
				result.Removed = append(result.Removed, splitLines(chunk.Content())...)
			}
		}
	}

	return result, nil
}

func (r *GoGitRepository) CreateAnnotatedTag(name, sha, message string) (Tag, error) {
	if _, err := r.repo.Tag(name); err == nil {
		return Tag{}, fmt.Errorf("creating tag %s: %w", name, ErrTagExists)
	}

	ref, err := r.repo.CreateTag(name, plumbing.NewHash(sha), &gogit.CreateTagOptions{
		Tagger:  r.tagger(),
		Message: message,
	})
	if err != nil {
		if errors.Is(err, gogit.ErrTagExists) {
			return Tag{}, fmt.Errorf("creating tag %s: %w", name, ErrTagExists)
		}
		return Tag{}, fmt.Errorf("creating tag %s: %w", name, err)
	}

	return Tag{
		Name:      NewReferenceName(string(ref.Name())),
		TargetSha: ref.Hash().String(),
	}, nil
}

func (r *GoGitRepository) PushTag(ctx context.Context, remote, name, token string) error {
	spec := gogitconfig.RefSpec(tagRefPrefix + name + ":" + tagRefPrefix + name)

	opts := &gogit.PushOptions{
		RemoteName: remote,
		RefSpecs:   []gogitconfig.RefSpec{spec},
	}
	if token != "" {
		opts.Auth = &githttp.BasicAuth{Username: "x-access-token", Password: token}
	}

	err := r.repo.PushContext(ctx, opts)
	if err != nil && !errors.Is(err, gogit.NoErrAlreadyUpToDate) {
		return fmt.Errorf("pushing tag %s to %s: %w", name, remote, err)
	}
	return nil
}

// tagger builds the tag signature from git config, falling back to a
// fixed identity so tagging works on bare CI runners.
func (r *GoGitRepository) tagger() *object.Signature {
	sig := &object.Signature{
		Name:  defaultTaggerName,
		Email: defaultTaggerEmail,
		When:  r.now(),
	}

	cfg, err := r.repo.ConfigScoped(gogitconfig.GlobalScope)
	if err != nil {
		return sig
	}
	if cfg.User.Name != "" {
		sig.Name = cfg.User.Name
	}
	if cfg.User.Email != "" {
		sig.Email = cfg.User.Email
	}
	return sig
}

func (r *GoGitRepository) treeOf(sha string) (*object.Tree, error) {
	c, err := r.repo.CommitObject(plumbing.NewHash(sha))
	if err != nil {
		return nil, fmt.Errorf("loading commit %s: %w", sha, err)
	}
	tree, err := c.Tree()
	if err != nil {
		return nil, fmt.Errorf("loading tree of %s: %w", sha, err)
	}
	return tree, nil
}

// commitFromHash loads a go-git commit and converts it to our Commit type.
func (r *GoGitRepository) commitFromHash(hash plumbing.Hash) (Commit, error) {
	c, err := r.repo.CommitObject(hash)
	if err != nil {
		return Commit{}, fmt.Errorf("loading commit %s: %w", hash.String(), err)
	}
	return convertCommit(c), nil
}

// convertCommit converts a go-git commit to our Commit type.
func convertCommit(c *object.Commit) Commit {
	parents := make([]string, 0, c.NumParents())
	for _, p := range c.ParentHashes {
		parents = append(parents, p.String())
	}

	return Commit{
		Sha:     c.Hash.String(),
		Parents: parents,
		When:    c.Committer.When,
		Message: c.Message,
	}
}

func patchTouches(fp diff.FilePatch, path string) bool {
	from, to := fp.Files()
	return (from != nil && from.Path() == path) || (to != nil && to.Path() == path)
}

func splitLines(content string) []string {
	if content == "" {
		return nil
	}
	return strings.Split(strings.TrimSuffix(content, "\n"), "\n")
}
