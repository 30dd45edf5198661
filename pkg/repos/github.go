package repos

import (
	"context"
	"fmt"

	"github.com/google/go-github/v57/github"
	"golang.org/x/oauth2"
)

// GitHubConfig selects which repositories to list from the GitHub API.
type GitHubConfig struct {
	Token string // optional: unauthenticated access works for public repos
	Org   string // list an organization's repositories
	User  string // list a user's repositories
}

// GitHubLister lists repositories via the GitHub API.
type GitHubLister struct {
	client *github.Client
	config GitHubConfig
}

// NewGitHubLister creates a GitHub lister. Without a token the client is
// unauthenticated: public repositories only, 60 requests per hour.
func NewGitHubLister(cfg GitHubConfig) (*GitHubLister, error) {
	if cfg.Org == "" && cfg.User == "" {
		return nil, fmt.Errorf("must specify org or user")
	}
	if cfg.Org != "" && cfg.User != "" {
		return nil, fmt.Errorf("specify org or user, not both")
	}

	var client *github.Client
	if cfg.Token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Token})
		client = github.NewClient(oauth2.NewClient(context.Background(), ts))
	} else {
		client = github.NewClient(nil)
	}

	return &GitHubLister{client: client, config: cfg}, nil
}

// ListRepos pages through the configured org's or user's repositories.
func (l *GitHubLister) ListRepos(ctx context.Context) ([]Repo, error) {
	var ghRepos []*github.Repository
	var err error

	if l.config.Org != "" {
		ghRepos, err = l.listOrgRepos(ctx)
	} else {
		ghRepos, err = l.listUserRepos(ctx)
	}
	if err != nil {
		return nil, err
	}

	repos := make([]Repo, 0, len(ghRepos))
	for _, r := range ghRepos {
		repos = append(repos, Repo{
			Name:     r.GetFullName(),
			CloneURL: r.GetCloneURL(),
		})
	}
	return repos, nil
}

func (l *GitHubLister) listOrgRepos(ctx context.Context) ([]*github.Repository, error) {
	opts := &github.RepositoryListByOrgOptions{
		ListOptions: github.ListOptions{PerPage: 100},
	}

	var allRepos []*github.Repository
	for {
		repos, resp, err := l.client.Repositories.ListByOrg(ctx, l.config.Org, opts)
		if err != nil {
			return nil, fmt.Errorf("listing org repositories: %w", err)
		}

		allRepos = append(allRepos, repos...)

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return allRepos, nil
}

func (l *GitHubLister) listUserRepos(ctx context.Context) ([]*github.Repository, error) {
	opts := &github.RepositoryListOptions{
		ListOptions: github.ListOptions{PerPage: 100},
	}

	var allRepos []*github.Repository
	for {
		repos, resp, err := l.client.Repositories.List(ctx, l.config.User, opts)
		if err != nil {
			return nil, fmt.Errorf("listing user repositories: %w", err)
		}

		allRepos = append(allRepos, repos...)

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return allRepos, nil
}
