package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupLogger_Stderr(t *testing.T) {
	verbose = false
	quiet = false
	logFile = ""

	log, closer, err := setupLogger()
	require.NoError(t, err)
	defer closer()
	assert.NotNil(t, log)
}

func TestSetupLogger_FileTruncatedPerRun(t *testing.T) {
	verbose = false
	quiet = false
	logFile = filepath.Join(t.TempDir(), "harvest.log")

	log, closer, err := setupLogger()
	require.NoError(t, err)
	log.Info("first run line")
	closer()

	first, err := os.ReadFile(logFile)
	require.NoError(t, err)
	assert.Contains(t, string(first), "first run line")

	// A second run starts the file over.
	log, closer, err = setupLogger()
	require.NoError(t, err)
	log.Info("second run line")
	closer()

	second, err := os.ReadFile(logFile)
	require.NoError(t, err)
	assert.Contains(t, string(second), "second run line")
	assert.NotContains(t, string(second), "first run line")

	logFile = ""
}

func TestSetupLogger_BadPath(t *testing.T) {
	logFile = filepath.Join(t.TempDir(), "missing", "harvest.log")

	_, _, err := setupLogger()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "opening log file")

	logFile = ""
}

func TestRootCommand_Subcommands(t *testing.T) {
	for _, name := range []string{"harvest", "scan", "github", "gitlab", "report", "merge", "dialects", "version"} {
		cmd, _, err := rootCmd.Find([]string{name})
		require.NoError(t, err)
		assert.Equal(t, name, cmd.Name())
	}
}
