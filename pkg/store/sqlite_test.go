package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/rtlharvest/rtlharvest/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLite_SchemaVersion(t *testing.T) {
	s, err := NewSQLite(filepath.Join(t.TempDir(), "harvest.db"))
	require.NoError(t, err)
	defer s.Close()

	var version int
	err = s.db.QueryRow("SELECT version FROM schema_version").Scan(&version)
	require.NoError(t, err)
	assert.Equal(t, SchemaVersion, version)
}

func TestSQLite_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "harvest.db")

	s, err := NewSQLite(path)
	require.NoError(t, err)

	require.NoError(t, s.AddRepoTally(&types.RepoTally{
		Repo:      "acme/fpga-lib",
		Tally:     types.Tally{Extracted: 2, Total: 7},
		ScannedAt: time.Date(2026, 8, 25, 9, 30, 0, 0, time.UTC),
	}))
	require.NoError(t, s.Close())

	reopened, err := NewSQLite(path)
	require.NoError(t, err)
	defer reopened.Close()

	tally, err := reopened.RunTally()
	require.NoError(t, err)
	assert.Equal(t, types.Tally{Extracted: 2, Total: 7}, tally)
}

func TestSQLite_EmptyDatabaseTally(t *testing.T) {
	s, err := NewSQLite(filepath.Join(t.TempDir(), "harvest.db"))
	require.NoError(t, err)
	defer s.Close()

	tally, err := s.RunTally()
	require.NoError(t, err)
	assert.Equal(t, types.Tally{}, tally)

	records, err := s.GetExtractions()
	require.NoError(t, err)
	assert.Empty(t, records)
}
