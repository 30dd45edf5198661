package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rtlharvest/rtlharvest/pkg/store"
)

var mergeOutput string

var mergeCmd = &cobra.Command{
	Use:   "merge <source1.db> <source2.db> [source3.db...]",
	Short: "Merge run databases",
	Long: `Merge several run databases into a single output database.

Useful when a harvest was split across machines or repo lists.
Extraction records are appended, tallies for a repository scanned in
several runs are summed, and accepted-module rows are deduplicated by
content hash.`,
	Args: cobra.MinimumNArgs(2),
	RunE: runMerge,
}

func init() {
	mergeCmd.Flags().StringVarP(&mergeOutput, "output", "o", "merged.db", "Output database path")
}

func runMerge(cmd *cobra.Command, args []string) error {
	stats, err := store.Merge(store.MergeConfig{
		SourcePaths: args,
		DestPath:    mergeOutput,
	})
	if err != nil {
		return fmt.Errorf("merge failed: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Merge complete:\n")
	fmt.Fprintf(cmd.OutOrStdout(), "  Sources processed: %d\n", stats.SourcesProcessed)
	fmt.Fprintf(cmd.OutOrStdout(), "  Repositories merged: %d\n", stats.ReposMerged)
	fmt.Fprintf(cmd.OutOrStdout(), "  Extractions merged: %d\n", stats.ExtractionsMerged)
	fmt.Fprintf(cmd.OutOrStdout(), "  Modules merged: %d\n", stats.ModulesMerged)
	fmt.Fprintf(cmd.OutOrStdout(), "Output: %s\n", mergeOutput)

	return nil
}
