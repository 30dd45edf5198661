package repos

import (
	"context"
	"fmt"

	"gitlab.com/gitlab-org/api/client-go"
)

// GitLabConfig selects which projects to list from a GitLab instance.
type GitLabConfig struct {
	Token   string
	BaseURL string // optional, defaults to gitlab.com
	Group   string // list a group's projects
	User    string // list a user's projects
}

// GitLabLister lists projects via the GitLab API.
type GitLabLister struct {
	client *gitlab.Client
	config GitLabConfig
}

// NewGitLabLister creates a GitLab lister.
func NewGitLabLister(cfg GitLabConfig) (*GitLabLister, error) {
	if cfg.Group == "" && cfg.User == "" {
		return nil, fmt.Errorf("must specify group or user")
	}
	if cfg.Group != "" && cfg.User != "" {
		return nil, fmt.Errorf("specify group or user, not both")
	}

	var client *gitlab.Client
	var err error

	if cfg.BaseURL != "" {
		client, err = gitlab.NewClient(cfg.Token, gitlab.WithBaseURL(cfg.BaseURL))
	} else {
		client, err = gitlab.NewClient(cfg.Token)
	}
	if err != nil {
		return nil, fmt.Errorf("creating GitLab client: %w", err)
	}

	return &GitLabLister{client: client, config: cfg}, nil
}

// ListRepos pages through the configured group's or user's projects.
func (l *GitLabLister) ListRepos(ctx context.Context) ([]Repo, error) {
	var projects []*gitlab.Project
	var err error

	if l.config.Group != "" {
		projects, err = l.listGroupProjects(ctx)
	} else {
		projects, err = l.listUserProjects(ctx)
	}
	if err != nil {
		return nil, err
	}

	repos := make([]Repo, 0, len(projects))
	for _, p := range projects {
		repos = append(repos, Repo{
			Name:     p.PathWithNamespace,
			CloneURL: p.HTTPURLToRepo,
		})
	}
	return repos, nil
}

func (l *GitLabLister) listGroupProjects(ctx context.Context) ([]*gitlab.Project, error) {
	opts := &gitlab.ListGroupProjectsOptions{
		ListOptions: gitlab.ListOptions{PerPage: 100},
	}

	var allProjects []*gitlab.Project
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		projects, resp, err := l.client.Groups.ListGroupProjects(l.config.Group, opts)
		if err != nil {
			return nil, fmt.Errorf("listing group projects: %w", err)
		}
		allProjects = append(allProjects, projects...)

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return allProjects, nil
}

func (l *GitLabLister) listUserProjects(ctx context.Context) ([]*gitlab.Project, error) {
	opts := &gitlab.ListProjectsOptions{
		ListOptions: gitlab.ListOptions{PerPage: 100},
		Owned:       gitlab.Ptr(true),
	}

	var allProjects []*gitlab.Project
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		projects, resp, err := l.client.Projects.ListUserProjects(l.config.User, opts)
		if err != nil {
			return nil, fmt.Errorf("listing user projects: %w", err)
		}
		allProjects = append(allProjects, projects...)

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return allProjects, nil
}
