package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rtlharvest/rtlharvest/pkg/repos"
)

var (
	githubToken string
	githubOrg   string
	githubUser  string
)

var githubCmd = &cobra.Command{
	Use:   "github",
	Short: "Harvest all repositories of a GitHub organization or user",
	Long: `List repositories through the GitHub API, then clone and harvest each one.
No API token needed for public repositories.
Use --token or GITHUB_TOKEN for private repos and higher rate limits.`,
	RunE: runGitHub,
}

func init() {
	githubCmd.Flags().StringVar(&githubToken, "token", "", "GitHub API token (or GITHUB_TOKEN env; optional for public repos)")
	githubCmd.Flags().StringVar(&githubOrg, "org", "", "Harvest all repositories in organization")
	githubCmd.Flags().StringVar(&githubUser, "user", "", "Harvest all repositories for user")
	githubCmd.Flags().IntVar(&harvestDepth, "depth", 1, "Clone depth (0 for full history)")
	addPipelineFlags(githubCmd)
}

func runGitHub(cmd *cobra.Command, args []string) error {
	token := githubToken
	if token == "" {
		token = os.Getenv("GITHUB_TOKEN")
	}

	if token == "" {
		fmt.Fprintf(cmd.ErrOrStderr(), "Note: No GitHub token provided. Using unauthenticated access (60 requests/hour, public repos only).\n")
		fmt.Fprintf(cmd.ErrOrStderr(), "Set GITHUB_TOKEN or use --token for higher rate limits and private repo access.\n\n")
	}

	lister, err := repos.NewGitHubLister(repos.GitHubConfig{
		Token: token,
		Org:   githubOrg,
		User:  githubUser,
	})
	if err != nil {
		return err
	}

	log, closeLog, err := setupLogger()
	if err != nil {
		return err
	}
	defer closeLog()

	ctx := context.Background()

	fmt.Fprintf(cmd.ErrOrStderr(), "Enumerating repositories...\n")
	list, err := lister.ListRepos(ctx)
	if err != nil {
		return fmt.Errorf("listing repositories: %w", err)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Found %d repositories to harvest\n\n", len(list))

	h, err := newHarvester(log)
	if err != nil {
		return err
	}
	defer h.Close()

	tally, err := h.HarvestRepos(ctx, list)
	if err != nil {
		return fmt.Errorf("harvesting: %w", err)
	}

	printHarvestSummary(cmd, tally, h.CorpusDir())
	return nil
}
