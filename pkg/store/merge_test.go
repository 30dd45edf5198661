package store

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rtlharvest/rtlharvest/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMerge_EmptySources(t *testing.T) {
	_, err := Merge(MergeConfig{
		SourcePaths: []string{},
		DestPath:    "/tmp/dest.db",
	})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "no source databases")
}

func TestMerge_NoDestination(t *testing.T) {
	_, err := Merge(MergeConfig{
		SourcePaths: []string{"/tmp/source.db"},
		DestPath:    "",
	})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "destination path is required")
}

func TestMerge_SingleSource(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "rtlharvest-merge-test")
	require.NoError(t, err)
	defer os.RemoveAll(tmpDir)

	// Create source database with one complete run
	sourcePath := filepath.Join(tmpDir, "source.db")
	source, err := NewSQLite(sourcePath)
	require.NoError(t, err)

	err = source.AddRepoTally(&types.RepoTally{
		Repo:      "acme/fpga-lib",
		Tally:     types.Tally{Extracted: 1, Total: 3},
		ScannedAt: time.Date(2026, 8, 25, 10, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	content := []byte("module fifo; endmodule\n")
	moduleID := types.ComputeModuleID(content)

	err = source.AddExtraction(&types.ExtractionRecord{
		Repo:       "acme/fpga-lib",
		Path:       "rtl/fifo.sv",
		Kind:       types.KindSystemVerilog,
		Outcome:    types.OutcomeAccepted,
		Module:     "fifo",
		OutputFile: "fifo.sv",
		ModuleID:   moduleID,
		Duration:   250 * time.Millisecond,
	})
	require.NoError(t, err)

	err = source.AddModule(&types.ModuleRecord{
		ID:   moduleID,
		Name: "fifo",
		File: "fifo.sv",
		Kind: types.KindSystemVerilog,
		Repo: "acme/fpga-lib",
		Size: int64(len(content)),
	})
	require.NoError(t, err)

	source.Close()

	// Merge to destination
	destPath := filepath.Join(tmpDir, "dest.db")
	stats, err := Merge(MergeConfig{
		SourcePaths: []string{sourcePath},
		DestPath:    destPath,
	})
	require.NoError(t, err)

	assert.Equal(t, 1, stats.ReposMerged)
	assert.Equal(t, 1, stats.ExtractionsMerged)
	assert.Equal(t, 1, stats.ModulesMerged)
	assert.Equal(t, 1, stats.SourcesProcessed)

	// Verify data in destination
	dest, err := NewSQLite(destPath)
	require.NoError(t, err)
	defer dest.Close()

	exists, err := dest.ModuleExists(moduleID)
	require.NoError(t, err)
	assert.True(t, exists)

	tally, err := dest.RunTally()
	require.NoError(t, err)
	assert.Equal(t, types.Tally{Extracted: 1, Total: 3}, tally)
}

func TestMerge_MultipleSources(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "rtlharvest-merge-test")
	require.NoError(t, err)
	defer os.RemoveAll(tmpDir)

	// Create source1 covering one repository
	source1Path := filepath.Join(tmpDir, "source1.db")
	source1, err := NewSQLite(source1Path)
	require.NoError(t, err)

	err = source1.AddRepoTally(&types.RepoTally{
		Repo:      "acme/cpu-core",
		Tally:     types.Tally{Extracted: 4, Total: 9},
		ScannedAt: time.Date(2026, 8, 25, 10, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	err = source1.AddExtraction(&types.ExtractionRecord{
		Repo: "acme/cpu-core", Path: "alu.v", Kind: types.KindVerilog,
		Outcome: types.OutcomeAccepted, Module: "alu", OutputFile: "alu.v",
	})
	require.NoError(t, err)
	source1.Close()

	// Create source2 covering a different one
	source2Path := filepath.Join(tmpDir, "source2.db")
	source2, err := NewSQLite(source2Path)
	require.NoError(t, err)

	err = source2.AddRepoTally(&types.RepoTally{
		Repo:      "acme/fpga-lib",
		Tally:     types.Tally{Extracted: 2, Total: 7},
		ScannedAt: time.Date(2026, 8, 25, 11, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	err = source2.AddExtraction(&types.ExtractionRecord{
		Repo: "acme/fpga-lib", Path: "fifo.sv", Kind: types.KindSystemVerilog,
		Outcome: types.OutcomeRejected, Reason: types.ReasonNoTopModule,
	})
	require.NoError(t, err)
	source2.Close()

	// Merge both sources
	destPath := filepath.Join(tmpDir, "merged.db")
	stats, err := Merge(MergeConfig{
		SourcePaths: []string{source1Path, source2Path},
		DestPath:    destPath,
	})
	require.NoError(t, err)

	assert.Equal(t, 2, stats.ReposMerged)
	assert.Equal(t, 2, stats.ExtractionsMerged)
	assert.Equal(t, 2, stats.SourcesProcessed)

	// Both repositories appear in the merged database
	dest, err := NewSQLite(destPath)
	require.NoError(t, err)
	defer dest.Close()

	tallies, err := dest.GetRepoTallies()
	require.NoError(t, err)
	require.Len(t, tallies, 2)
	assert.Equal(t, "acme/cpu-core", tallies[0].Repo)
	assert.Equal(t, "acme/fpga-lib", tallies[1].Repo)

	tally, err := dest.RunTally()
	require.NoError(t, err)
	assert.Equal(t, types.Tally{Extracted: 6, Total: 16}, tally)
}

func TestMerge_TallySumming(t *testing.T) {
	// Two runs over the same repo list, split by kind, each carry a row
	// for the same repository. Merging sums the counts.
	tmpDir, err := os.MkdirTemp("", "rtlharvest-merge-test")
	require.NoError(t, err)
	defer os.RemoveAll(tmpDir)

	source1Path := filepath.Join(tmpDir, "sv-run.db")
	source1, err := NewSQLite(source1Path)
	require.NoError(t, err)
	err = source1.AddRepoTally(&types.RepoTally{
		Repo:      "acme/fpga-lib",
		Tally:     types.Tally{Extracted: 2, Total: 7},
		ScannedAt: time.Date(2026, 8, 25, 10, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	source1.Close()

	source2Path := filepath.Join(tmpDir, "v-run.db")
	source2, err := NewSQLite(source2Path)
	require.NoError(t, err)
	err = source2.AddRepoTally(&types.RepoTally{
		Repo:      "acme/fpga-lib",
		Tally:     types.Tally{Extracted: 1, Total: 4},
		ScannedAt: time.Date(2026, 8, 25, 11, 30, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	source2.Close()

	destPath := filepath.Join(tmpDir, "merged.db")
	stats, err := Merge(MergeConfig{
		SourcePaths: []string{source1Path, source2Path},
		DestPath:    destPath,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, stats.ReposMerged)

	dest, err := NewSQLite(destPath)
	require.NoError(t, err)
	defer dest.Close()

	tallies, err := dest.GetRepoTallies()
	require.NoError(t, err)
	require.Len(t, tallies, 1)
	assert.Equal(t, "acme/fpga-lib", tallies[0].Repo)
	assert.Equal(t, types.Tally{Extracted: 3, Total: 11}, tallies[0].Tally)

	// The later scan timestamp wins
	want := time.Date(2026, 8, 25, 11, 30, 0, 0, time.UTC)
	assert.True(t, tallies[0].ScannedAt.Equal(want), "scanned_at should be %v, got %v", want, tallies[0].ScannedAt)
}

func TestMerge_ModuleDeduplication(t *testing.T) {
	// Two runs that extracted byte-identical module content
	tmpDir, err := os.MkdirTemp("", "rtlharvest-merge-test")
	require.NoError(t, err)
	defer os.RemoveAll(tmpDir)

	content := []byte("module counter(input clk); endmodule\n")
	moduleID := types.ComputeModuleID(content)

	source1Path := filepath.Join(tmpDir, "source1.db")
	source1, err := NewSQLite(source1Path)
	require.NoError(t, err)
	err = source1.AddModule(&types.ModuleRecord{
		ID: moduleID, Name: "counter", File: "counter.v",
		Kind: types.KindVerilog, Repo: "acme/cpu-core", Size: int64(len(content)),
	})
	require.NoError(t, err)
	err = source1.AddExtraction(&types.ExtractionRecord{
		Repo: "acme/cpu-core", Path: "counter.v", Kind: types.KindVerilog,
		Outcome: types.OutcomeAccepted, Module: "counter", OutputFile: "counter.v", ModuleID: moduleID,
	})
	require.NoError(t, err)
	source1.Close()

	source2Path := filepath.Join(tmpDir, "source2.db")
	source2, err := NewSQLite(source2Path)
	require.NoError(t, err)
	// Same content hash found in a fork
	err = source2.AddModule(&types.ModuleRecord{
		ID: moduleID, Name: "counter", File: "AbCdE_counter.v",
		Kind: types.KindVerilog, Repo: "fork/cpu-core", Size: int64(len(content)),
	})
	require.NoError(t, err)
	err = source2.AddExtraction(&types.ExtractionRecord{
		Repo: "fork/cpu-core", Path: "counter.v", Kind: types.KindVerilog,
		Outcome: types.OutcomeAccepted, Module: "counter", OutputFile: "AbCdE_counter.v", ModuleID: moduleID,
	})
	require.NoError(t, err)
	source2.Close()

	destPath := filepath.Join(tmpDir, "merged.db")
	stats, err := Merge(MergeConfig{
		SourcePaths: []string{source1Path, source2Path},
		DestPath:    destPath,
	})
	require.NoError(t, err)

	// Extraction history is kept from both runs, the module row is not duplicated
	assert.Equal(t, 1, stats.ModulesMerged, "should only merge 1 unique module")
	assert.Equal(t, 2, stats.ExtractionsMerged)
	assert.Equal(t, 2, stats.SourcesProcessed)

	dest, err := NewSQLite(destPath)
	require.NoError(t, err)
	defer dest.Close()

	modules, err := dest.GetModules()
	require.NoError(t, err)
	require.Len(t, modules, 1)
	assert.Equal(t, "counter.v", modules[0].File)

	records, err := dest.GetExtractions()
	require.NoError(t, err)
	assert.Len(t, records, 2)
}
