package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rtlharvest/rtlharvest/pkg/repos"
)

var (
	gitlabToken   string
	gitlabGroup   string
	gitlabUser    string
	gitlabBaseURL string
)

var gitlabCmd = &cobra.Command{
	Use:   "gitlab",
	Short: "Harvest all projects of a GitLab group or user",
	Long: `List projects through the GitLab API, then clone and harvest each one.
No API token needed for public projects.
Use --token or GITLAB_TOKEN for private projects and higher rate limits.`,
	RunE: runGitLab,
}

func init() {
	gitlabCmd.Flags().StringVar(&gitlabToken, "token", "", "GitLab token (or GITLAB_TOKEN env; optional for public projects)")
	gitlabCmd.Flags().StringVar(&gitlabGroup, "group", "", "Harvest all projects in group")
	gitlabCmd.Flags().StringVar(&gitlabUser, "user", "", "Harvest all projects for user")
	gitlabCmd.Flags().StringVar(&gitlabBaseURL, "url", "", "GitLab base URL (default: gitlab.com)")
	gitlabCmd.Flags().IntVar(&harvestDepth, "depth", 1, "Clone depth (0 for full history)")
	addPipelineFlags(gitlabCmd)
}

func runGitLab(cmd *cobra.Command, args []string) error {
	token := gitlabToken
	if token == "" {
		token = os.Getenv("GITLAB_TOKEN")
	}

	lister, err := repos.NewGitLabLister(repos.GitLabConfig{
		Token:   token,
		BaseURL: gitlabBaseURL,
		Group:   gitlabGroup,
		User:    gitlabUser,
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

	fmt.Fprintf(cmd.ErrOrStderr(), "Enumerating projects...\n")
	list, err := lister.ListRepos(ctx)
	if err != nil {
		return fmt.Errorf("listing projects: %w", err)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Found %d projects to harvest\n\n", len(list))

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
