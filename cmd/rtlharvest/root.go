package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var (
	verbose bool
	quiet   bool
	logFile string
)

var rootCmd = &cobra.Command{
	Use:   "rtlharvest",
	Short: "rtlharvest - synthesizable RTL corpus harvester",
	Long: `rtlharvest extracts self-contained, synthesizable Verilog and SystemVerilog
modules from source repositories into a single-file-per-module corpus.

Each candidate file is classified with yosys, flattened by inlining its
include directives, re-validated, and written to the corpus under its
top-module name.`,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Quiet mode (errors only)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Write the run log to a file instead of stderr (truncated each run)")

	// Add subcommands
	rootCmd.AddCommand(harvestCmd)
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(githubCmd)
	rootCmd.AddCommand(gitlabCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(mergeCmd)
	rootCmd.AddCommand(dialectsCmd)
	rootCmd.AddCommand(versionCmd)
}

// setupLogger builds the run logger from the persistent flags. The returned
// closer flushes the log file when one is in use.
func setupLogger() (*slog.Logger, func(), error) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	if quiet {
		level = slog.LevelError
	}

	w := io.Writer(os.Stderr)
	closer := func() {}
	if logFile != "" {
		f, err := os.Create(logFile)
		if err != nil {
			return nil, nil, fmt.Errorf("opening log file: %w", err)
		}
		w = f
		closer = func() { f.Close() }
	}

	handler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	return slog.New(handler), closer, nil
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
