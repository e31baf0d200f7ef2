package github

import (
	"context"
	"fmt"

	gh "github.com/google/go-github/v68/github"
)

// ReleasePublisher creates GitHub releases for pushed tags.
type ReleasePublisher struct {
	client *gh.Client
	owner  string
	repo   string
}

// NewReleasePublisher creates a publisher for owner/repo.
func NewReleasePublisher(client *gh.Client, owner, repo string) *ReleasePublisher {
	return &ReleasePublisher{client: client, owner: owner, repo: repo}
}

// Path returns the repository slug.
func (p *ReleasePublisher) Path() string {
	return fmt.Sprintf("github.com/%s/%s", p.owner, p.repo)
}

// PublishRelease creates a release named after the tag and returns its
// HTML URL. A release that already exists for the tag is looked up and
// returned instead.
func (p *ReleasePublisher) PublishRelease(ctx context.Context, tag, body string) (string, error) {
	release, _, err := p.client.Repositories.CreateRelease(ctx, p.owner, p.repo, &gh.RepositoryRelease{
		TagName: gh.Ptr(tag),
		Name:    gh.Ptr(tag),
		Body:    gh.Ptr(body),
	})
	if err == nil {
		return release.GetHTMLURL(), nil
	}
	if !IsAlreadyExistsError(err) {
		return "", fmt.Errorf("creating release %s in %s/%s: %w", tag, p.owner, p.repo, err)
	}

	existing, _, getErr := p.client.Repositories.GetReleaseByTag(ctx, p.owner, p.repo, tag)
	if getErr != nil {
		return "", fmt.Errorf("creating release %s in %s/%s: %w", tag, p.owner, p.repo, err)
	}
	return existing.GetHTMLURL(), nil
}
