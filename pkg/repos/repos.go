// Package repos enumerates repositories to harvest, from a plain-text
// list file or a hosting service API, and clones them into scratch
// checkouts for scanning.
package repos

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"
)

// Repo identifies one repository to harvest.
type Repo struct {
	Name     string // canonical identifier, e.g. "lowRISC/ibex"
	CloneURL string // HTTPS clone URL
}

// Lister yields repositories from a hosting service.
type Lister interface {
	ListRepos(ctx context.Context) ([]Repo, error)
}

// FromIdentifier builds a Repo from one list entry: a full clone URL, or
// the GitHub-style "owner/name" shorthand.
func FromIdentifier(id string) Repo {
	if strings.Contains(id, "://") {
		name := strings.TrimSuffix(id, ".git")
		if u, err := url.Parse(id); err == nil && strings.Trim(u.Path, "/") != "" {
			name = strings.TrimSuffix(strings.Trim(u.Path, "/"), ".git")
		}
		return Repo{Name: name, CloneURL: id}
	}
	return Repo{
		Name:     id,
		CloneURL: "https://github.com/" + id + ".git",
	}
}

// ReadList reads a repository list file: one identifier per line, blank
// lines and # comments skipped.
func ReadList(path string) ([]Repo, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening repo list: %w", err)
	}
	defer f.Close()

	repos, err := ParseList(f)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return repos, nil
}

// ParseList parses a repository list.
func ParseList(r io.Reader) ([]Repo, error) {
	var repos []Repo

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		repos = append(repos, FromIdentifier(line))
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return repos, nil
}
