// Package github fetches pull-request metadata used as optional analysis
// context. It is a collaborator of the LLM core, not part of it: the core
// only ever consumes the resulting PRContext mapping.
package github

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/go-github/v68/github"

	"github.com/bkyoung/sectriage/internal/domain"
)

// ContextFetcher builds PRContext mappings from the GitHub API.
type ContextFetcher struct {
	client *github.Client
}

// NewContextFetcher creates a fetcher. An empty token yields unauthenticated
// access, which is enough for public repositories.
func NewContextFetcher(token string) *ContextFetcher {
	client := github.NewClient(nil)
	if token != "" {
		client = client.WithAuthToken(token)
	}
	return &ContextFetcher{client: client}
}

// PRContext fetches metadata for one pull request. repository is the
// "owner/name" form used everywhere in CI environments.
func (f *ContextFetcher) PRContext(ctx context.Context, repository string, number int) (domain.PRContext, error) {
	owner, name, ok := strings.Cut(repository, "/")
	if !ok || owner == "" || name == "" {
		return nil, fmt.Errorf("invalid repository %q: expected owner/name", repository)
	}

	pr, _, err := f.client.PullRequests.Get(ctx, owner, name, number)
	if err != nil {
		return nil, fmt.Errorf("fetch PR %s#%d: %w", repository, number, err)
	}

	return domain.PRContext{
		"repo_name":     repository,
		"pr_number":     pr.GetNumber(),
		"title":         pr.GetTitle(),
		"author":        pr.GetUser().GetLogin(),
		"base_branch":   pr.GetBase().GetRef(),
		"head_branch":   pr.GetHead().GetRef(),
		"changed_files": pr.GetChangedFiles(),
	}, nil
}
