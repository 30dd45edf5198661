package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/rtlharvest/rtlharvest"
	"github.com/rtlharvest/rtlharvest/pkg/dialect"
	"github.com/rtlharvest/rtlharvest/pkg/oracle"
	"github.com/rtlharvest/rtlharvest/pkg/repos"
)

// Pipeline flags shared by every command that runs extractions
// (harvest, scan, github, gitlab).
var (
	harvestDatastore   string
	harvestReposFile   string
	harvestYosys       string
	harvestTimeout     time.Duration
	harvestKinds       string
	harvestDialectFile string
	harvestDB          string
	harvestDepth       int
	harvestGitignore   bool
	harvestSkipHidden  bool
)

var harvestCmd = &cobra.Command{
	Use:   "harvest [owner/repo...]",
	Short: "Clone repositories and extract synthesizable modules",
	Long: `Clone each repository into scratch space, extract its synthesizable
modules into the corpus, and remove the checkout.

Repositories are named as owner/repo shorthand (cloned from GitHub) or
full clone URLs, given as arguments or one per line in --repos-file.`,
	RunE: runHarvest,
}

func init() {
	harvestCmd.Flags().StringVarP(&harvestReposFile, "repos-file", "f", "", "File listing repositories, one per line (# comments allowed)")
	harvestCmd.Flags().IntVar(&harvestDepth, "depth", 1, "Clone depth (0 for full history)")
	addPipelineFlags(harvestCmd)
}

// addPipelineFlags registers the extraction pipeline flags on a command.
func addPipelineFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&harvestDatastore, "datastore", "harvest.ds", "Datastore directory (corpus, run database, scratch space)")
	cmd.Flags().StringVar(&harvestYosys, "yosys", "", "Path to yosys binary (or YOSYS_BINARY env; default: yosys on PATH)")
	cmd.Flags().DurationVar(&harvestTimeout, "oracle-timeout", oracle.DefaultTimeout, "Wall-clock bound per yosys invocation")
	cmd.Flags().StringVar(&harvestKinds, "kinds", "", "Comma-separated source kinds to scan, e.g. sv,v (default: all)")
	cmd.Flags().StringVar(&harvestDialectFile, "dialects", "", "Custom dialect definitions (YAML file)")
	cmd.Flags().StringVar(&harvestDB, "db", "", "Run database override: file path or postgres:// DSN (default: harvest.db in datastore)")
	cmd.Flags().BoolVar(&harvestGitignore, "gitignore", false, "Skip candidates matched by each repository's root .gitignore")
	cmd.Flags().BoolVar(&harvestSkipHidden, "skip-hidden", false, "Skip hidden files and directories")
}

// newHarvester builds a Harvester from the pipeline flags.
func newHarvester(log *slog.Logger) (*rtlharvest.Harvester, error) {
	opts := []rtlharvest.Option{
		rtlharvest.WithLogger(log),
		rtlharvest.WithOracleTimeout(harvestTimeout),
		rtlharvest.WithCloneDepth(harvestDepth),
	}
	if harvestYosys != "" {
		opts = append(opts, rtlharvest.WithYosys(harvestYosys))
	}
	if harvestKinds != "" {
		opts = append(opts, rtlharvest.WithKinds(dialect.ParseKinds(harvestKinds)...))
	}
	if harvestDialectFile != "" {
		dialects, err := dialect.NewLoader().LoadDialectFile(harvestDialectFile)
		if err != nil {
			return nil, fmt.Errorf("loading dialects: %w", err)
		}
		opts = append(opts, rtlharvest.WithDialects(dialects))
	}
	if harvestDB != "" {
		opts = append(opts, rtlharvest.WithStorePath(harvestDB))
	}
	if harvestGitignore {
		opts = append(opts, rtlharvest.WithGitignore())
	}
	if harvestSkipHidden {
		opts = append(opts, rtlharvest.WithSkipHidden())
	}

	return rtlharvest.New(harvestDatastore, opts...)
}

func printHarvestSummary(cmd *cobra.Command, tally rtlharvest.Tally, corpusDir string) {
	fmt.Fprintf(cmd.OutOrStdout(), "Harvest complete: %d modules extracted from %d candidates\n", tally.Extracted, tally.Total)
	fmt.Fprintf(cmd.OutOrStdout(), "Corpus stored in: %s\n", corpusDir)
}

func runHarvest(cmd *cobra.Command, args []string) error {
	var list []repos.Repo
	if harvestReposFile != "" {
		fromFile, err := repos.ReadList(harvestReposFile)
		if err != nil {
			return err
		}
		list = append(list, fromFile...)
	}
	for _, arg := range args {
		list = append(list, repos.FromIdentifier(arg))
	}
	if len(list) == 0 {
		return fmt.Errorf("must specify repositories: owner/repo arguments or --repos-file")
	}

	log, closeLog, err := setupLogger()
	if err != nil {
		return err
	}
	defer closeLog()

	h, err := newHarvester(log)
	if err != nil {
		return err
	}
	defer h.Close()

	fmt.Fprintf(cmd.ErrOrStderr(), "Harvesting %d repositories...\n", len(list))

	tally, err := h.HarvestRepos(context.Background(), list)
	if err != nil {
		return fmt.Errorf("harvesting: %w", err)
	}

	printHarvestSummary(cmd, tally, h.CorpusDir())
	return nil
}
