package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var scanCmd = &cobra.Command{
	Use:   "scan <tree>",
	Short: "Extract synthesizable modules from a local source tree",
	Long:  "Scan an already checked-out source tree and add its synthesizable modules to the corpus",
	Args:  cobra.ExactArgs(1),
	RunE:  runScan,
}

func init() {
	addPipelineFlags(scanCmd)
}

func runScan(cmd *cobra.Command, args []string) error {
	target := args[0]

	if _, err := os.Stat(target); err != nil {
		return fmt.Errorf("target does not exist: %s", target)
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

	tally, err := h.ScanTree(context.Background(), target)
	if err != nil {
		return fmt.Errorf("scanning: %w", err)
	}

	printHarvestSummary(cmd, tally, h.CorpusDir())
	return nil
}
