package main

import (
	"bytes"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rtlharvest/rtlharvest/pkg/store"
	"github.com/rtlharvest/rtlharvest/pkg/types"
)

// newMergeCmd creates a fresh merge command for testing
func newMergeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:  "merge <source1.db> <source2.db> [source3.db...]",
		Args: cobra.MinimumNArgs(2),
		RunE: runMerge,
	}
	cmd.Flags().StringVarP(&mergeOutput, "output", "o", "merged.db", "Output database path")
	return cmd
}

// seedRunDB writes one repository's worth of records to a fresh database.
func seedRunDB(t *testing.T, path, repo string, content string) {
	t.Helper()

	s, err := store.NewSQLite(path)
	require.NoError(t, err)

	err = s.AddRepoTally(&types.RepoTally{
		Repo:      repo,
		Tally:     types.Tally{Extracted: 1, Total: 3},
		ScannedAt: time.Now().UTC(),
	})
	require.NoError(t, err)

	id := types.ComputeModuleID([]byte(content))
	err = s.AddExtraction(&types.ExtractionRecord{
		Repo:       repo,
		Path:       "rtl/counter.v",
		Kind:       types.KindVerilog,
		Outcome:    types.OutcomeAccepted,
		Module:     "counter",
		OutputFile: "counter.v",
		ModuleID:   id,
	})
	require.NoError(t, err)

	err = s.AddModule(&types.ModuleRecord{
		ID:   id,
		Name: "counter",
		File: "counter.v",
		Kind: types.KindVerilog,
		Repo: repo,
		Size: int64(len(content)),
	})
	require.NoError(t, err)
	require.NoError(t, s.Close())
}

func TestMergeCmd_RequiresMinimumArgs(t *testing.T) {
	cmd := newMergeCmd()
	cmd.SetArgs([]string{})
	err := cmd.Execute()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "requires at least 2 arg")

	cmd = newMergeCmd()
	cmd.SetArgs([]string{"source1.db"})
	err = cmd.Execute()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "requires at least 2 arg")
}

func TestMergeCmd_MergesTwoDatabases(t *testing.T) {
	tmpDir := t.TempDir()

	source1Path := filepath.Join(tmpDir, "source1.db")
	seedRunDB(t, source1Path, "acme/fpga-lib", "module counter; endmodule\n")

	source2Path := filepath.Join(tmpDir, "source2.db")
	seedRunDB(t, source2Path, "acme/cpu-core", "module counter #(parameter W=8); endmodule\n")

	destPath := filepath.Join(tmpDir, "merged.db")
	var buf bytes.Buffer
	cmd := newMergeCmd()
	cmd.SetOut(&buf)
	cmd.SetArgs([]string{source1Path, source2Path, "--output", destPath})

	err := cmd.Execute()
	require.NoError(t, err)

	output := buf.String()
	assert.Contains(t, output, "Merge complete")
	assert.Contains(t, output, "Sources processed: 2")
	assert.Contains(t, output, "Repositories merged: 2")
	assert.Contains(t, output, "Extractions merged: 2")
	assert.Contains(t, output, "Modules merged: 2")

	dest, err := store.NewSQLite(destPath)
	require.NoError(t, err)
	defer dest.Close()

	tally, err := dest.RunTally()
	require.NoError(t, err)
	assert.Equal(t, types.Tally{Extracted: 2, Total: 6}, tally)
}

func TestMergeCmd_ReportsDeduplication(t *testing.T) {
	tmpDir := t.TempDir()

	// Same module content in both sources: one module row survives.
	source1Path := filepath.Join(tmpDir, "source1.db")
	seedRunDB(t, source1Path, "acme/fpga-lib", "module counter; endmodule\n")

	source2Path := filepath.Join(tmpDir, "source2.db")
	seedRunDB(t, source2Path, "acme/cpu-core", "module counter; endmodule\n")

	destPath := filepath.Join(tmpDir, "merged.db")
	var buf bytes.Buffer
	cmd := newMergeCmd()
	cmd.SetOut(&buf)
	cmd.SetArgs([]string{source1Path, source2Path, "--output", destPath})

	err := cmd.Execute()
	require.NoError(t, err)

	output := buf.String()
	assert.Contains(t, output, "Extractions merged: 2")
	assert.Contains(t, output, "Modules merged: 1")
}

func TestMergeCmd_FailsWithInvalidSource(t *testing.T) {
	destPath := filepath.Join(t.TempDir(), "merged.db")
	cmd := newMergeCmd()
	cmd.SetArgs([]string{"/nonexistent/source1.db", "/nonexistent/source2.db", "--output", destPath})

	err := cmd.Execute()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "merge failed")
}
