package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/rtlharvest/rtlharvest/pkg/store"
	"github.com/rtlharvest/rtlharvest/pkg/types"
)

var (
	reportDatastore string
	reportFormat    string
	reportColor     string
)

// styles holds the color formatters for human report output.
type styles struct {
	heading *color.Color
	repo    *color.Color
	number  *color.Color
	reason  *color.Color
}

// newStyles creates color formatters for report output.
func newStyles(enabled bool) *styles {
	s := &styles{
		heading: color.New(color.Bold),
		repo:    color.New(color.Bold, color.FgHiBlue),
		number:  color.New(color.FgHiGreen),
		reason:  color.New(color.FgYellow),
	}

	if !enabled {
		s.heading.DisableColor()
		s.repo.DisableColor()
		s.number.DisableColor()
		s.reason.DisableColor()
	}

	return s
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Summarize a harvest run",
	Long:  "Read run records from a datastore and output the run tally, per-repository tallies, rejection reasons, and duplicate-module statistics",
	RunE:  runReport,
}

func init() {
	reportCmd.Flags().StringVar(&reportDatastore, "datastore", "harvest.ds", "Path to datastore directory or run database")
	reportCmd.Flags().StringVar(&reportFormat, "format", "human", "Output format: human, json")
	reportCmd.Flags().StringVar(&reportColor, "color", "auto", "Color output: auto, always, never")
}

// reportData is everything a report renders, gathered in one pass.
type reportData struct {
	Tally      types.Tally          `json:"tally"`
	Repos      []*types.RepoTally   `json:"repos"`
	Reasons    map[types.Reason]int `json:"reasons"`
	Modules    int                  `json:"modules"`
	Duplicates int                  `json:"duplicates"`
}

func runReport(cmd *cobra.Command, args []string) error {
	storePath := reportDatastore
	if storePath == ":memory:" {
		return fmt.Errorf("cannot report from an in-memory store")
	}

	info, err := os.Stat(storePath)
	if err != nil {
		return fmt.Errorf("datastore not found: %s", storePath)
	}
	if info.IsDir() {
		storePath = filepath.Join(storePath, "harvest.db")
	}

	s, err := store.New(store.Config{Path: storePath})
	if err != nil {
		return fmt.Errorf("opening datastore: %w", err)
	}
	defer s.Close()

	data, err := gatherReport(s)
	if err != nil {
		return err
	}

	switch reportFormat {
	case "json":
		encoder := json.NewEncoder(cmd.OutOrStdout())
		encoder.SetIndent("", "  ")
		return encoder.Encode(data)
	case "human":
		return renderReport(cmd, data, storePath)
	default:
		return fmt.Errorf("unknown output format: %s", reportFormat)
	}
}

func gatherReport(s store.Store) (*reportData, error) {
	tally, err := s.RunTally()
	if err != nil {
		return nil, fmt.Errorf("reading run tally: %w", err)
	}
	repoTallies, err := s.GetRepoTallies()
	if err != nil {
		return nil, fmt.Errorf("reading repo tallies: %w", err)
	}
	reasons, err := s.ReasonCounts()
	if err != nil {
		return nil, fmt.Errorf("reading rejection reasons: %w", err)
	}
	modules, err := s.GetModules()
	if err != nil {
		return nil, fmt.Errorf("reading modules: %w", err)
	}

	return &reportData{
		Tally:      tally,
		Repos:      repoTallies,
		Reasons:    reasons,
		Modules:    len(modules),
		Duplicates: tally.Extracted - len(modules),
	}, nil
}

func renderReport(cmd *cobra.Command, data *reportData, storePath string) error {
	out := cmd.OutOrStdout()

	// Determine if colors should be enabled based on --color flag
	switch reportColor {
	case "always":
		color.NoColor = false
	case "never":
		color.NoColor = true
	default: // "auto"
		// Check if stdout is a TTY and NO_COLOR is not set
		if !term.IsTerminal(int(os.Stdout.Fd())) || os.Getenv("NO_COLOR") != "" {
			color.NoColor = true
		} else {
			color.NoColor = false
		}
	}
	s := newStyles(!color.NoColor)

	fmt.Fprintf(out, "%s\n", s.heading.Sprint("=== rtlharvest Report ==="))
	fmt.Fprintf(out, "Datastore: %s\n", storePath)
	fmt.Fprintf(out, "%s %s modules from %d candidates\n",
		s.heading.Sprint("Extracted:"),
		s.number.Sprintf("%d", data.Tally.Extracted),
		data.Tally.Total)

	if len(data.Repos) > 0 {
		fmt.Fprintf(out, "\n%s\n", s.heading.Sprint("Repositories:"))
		for _, r := range data.Repos {
			fmt.Fprintf(out, "  %s  %s\n", s.repo.Sprint(r.Repo), s.number.Sprint(r.Tally.String()))
		}
	}

	if len(data.Reasons) > 0 {
		fmt.Fprintf(out, "\n%s\n", s.heading.Sprint("Rejections:"))
		for _, rc := range sortReasons(data.Reasons) {
			fmt.Fprintf(out, "  %s %d\n", s.reason.Sprintf("%-18s", rc.reason), rc.count)
		}
	}

	fmt.Fprintf(out, "\n%s %d distinct", s.heading.Sprint("Modules:"), data.Modules)
	if data.Duplicates > 0 {
		fmt.Fprintf(out, " (%d duplicate extractions folded)", data.Duplicates)
	}
	fmt.Fprintf(out, "\n")

	return nil
}

type reasonCount struct {
	reason types.Reason
	count  int
}

// sortReasons orders the histogram by descending count, then name.
func sortReasons(reasons map[types.Reason]int) []reasonCount {
	out := make([]reasonCount, 0, len(reasons))
	for r, n := range reasons {
		out = append(out, reasonCount{reason: r, count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].count != out[j].count {
			return out[i].count > out[j].count
		}
		return out[i].reason < out[j].reason
	})
	return out
}
