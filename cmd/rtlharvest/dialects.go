package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/rtlharvest/rtlharvest/pkg/dialect"
	"github.com/rtlharvest/rtlharvest/pkg/types"
)

var (
	dialectsPath   string
	dialectsFormat string
)

var dialectsCmd = &cobra.Command{
	Use:   "dialects",
	Short: "Manage source dialects",
	Long:  "Commands for listing and inspecting recognized source dialects",
}

var dialectsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List available dialects",
	Long:  "Display the loaded dialects with their kinds, extensions, and include tokens",
	RunE:  runDialectsList,
}

func init() {
	dialectsCmd.AddCommand(dialectsListCmd)
	dialectsListCmd.Flags().StringVar(&dialectsPath, "dialects", "", "Path to custom dialect definitions (YAML file)")
	dialectsListCmd.Flags().StringVar(&dialectsFormat, "format", "table", "Output format: table, json")
}

func runDialectsList(cmd *cobra.Command, args []string) error {
	loader := dialect.NewLoader()

	var dialects []*types.Dialect
	var err error

	if dialectsPath != "" {
		dialects, err = loader.LoadDialectFile(dialectsPath)
		if err != nil {
			return fmt.Errorf("loading dialects from %s: %w", dialectsPath, err)
		}
	} else {
		dialects, err = loader.LoadBuiltin()
		if err != nil {
			return fmt.Errorf("loading builtin dialects: %w", err)
		}
	}

	switch dialectsFormat {
	case "json":
		encoder := json.NewEncoder(cmd.OutOrStdout())
		encoder.SetIndent("", "  ")
		return encoder.Encode(dialects)
	case "table":
		return outputDialectsTable(cmd, dialects)
	default:
		return fmt.Errorf("unknown output format: %s", dialectsFormat)
	}
}

func outputDialectsTable(cmd *cobra.Command, dialects []*types.Dialect) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	defer w.Flush()

	fmt.Fprintf(w, "Kind\tName\tExtension\tInclude\n")
	fmt.Fprintf(w, "----\t----\t---------\t-------\n")

	for _, d := range dialects {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", d.Kind, d.Name, d.Extension, d.IncludeToken)
	}

	return nil
}
