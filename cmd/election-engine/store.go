// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/election-engine/internal/store"
	"github.com/pdiddy/election-engine/pkg/types"
)

var storeCmd = &cobra.Command{
	Use:   "store",
	Short: "Manage the SQLite dataset store (ingest, retrieve, export)",
	Long: `Store maintains a local SQLite database of election results built from
the master dataset. Use subcommands to ingest the master CSV, query
results, or export them.`,
}

// --- ingest subcommand ---

var storeIngestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Load the master dataset CSV into the store",
	Long: `Ingest reads the master dataset and upserts every result row keyed by
(commune, year, scrutin, round). An unchanged file is skipped on
subsequent runs.`,
	RunE: runStoreIngest,
}

func runStoreIngest(cmd *cobra.Command, args []string) error {
	dataPath := stringSetting(cmd, "data", "etl.out_path")

	s, err := store.NewStore(storeConfig(cmd))
	if err != nil {
		return err
	}
	defer s.Close()

	summary, err := s.IngestFile(context.Background(), dataPath, os.Stdout)
	if err != nil {
		return err
	}
	if summary.Failed > 0 {
		return fmt.Errorf("%d row(s) failed ingestion", summary.Failed)
	}
	return nil
}

// --- retrieve subcommand ---

var storeRetrieveCmd = &cobra.Command{
	Use:   "retrieve",
	Short: "Query stored election results",
	Long: `Retrieve queries the store with structured filters: commune code, year,
scrutin type (substring match), round, and political family.`,
	RunE: runStoreRetrieve,
}

func runStoreRetrieve(cmd *cobra.Command, args []string) error {
	s, err := store.NewStore(storeConfig(cmd))
	if err != nil {
		return err
	}
	defer s.Close()

	opts := queryOptsFromFlags(cmd)
	if opts.IsEmpty() {
		return fmt.Errorf("filter required: provide --commune, --year, --scrutin, --tour, or --family")
	}

	results, err := s.Retrieve(context.Background(), opts)
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	return formatRetrieveOutput(results, jsonOutput)
}

func formatRetrieveOutput(results []store.Result, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	if len(results) == 0 {
		fmt.Println("No results found.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-7s  %-24s  %-5s  %-20s  %-4s  %-8s  %-8s  %s\n",
		"Code", "Commune", "Year", "Scrutin", "Tour", "Winner", "Family", "Turnout")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 96))

	for _, r := range results {
		name := r.CommuneName
		if len(name) > 24 {
			name = name[:21] + "..."
		}
		scrutin := r.Scrutin
		if len(scrutin) > 20 {
			scrutin = scrutin[:17] + "..."
		}
		turnout := ""
		if r.TurnoutPct != nil {
			turnout = fmt.Sprintf("%.3f", *r.TurnoutPct)
		}
		fmt.Fprintf(os.Stdout, "%-7s  %-24s  %-5d  %-20s  %-4d  %-8s  %-8s  %s\n",
			r.CommuneCode, name, r.Year, scrutin, r.Round, r.Winner, r.Family, turnout)
	}

	fmt.Fprintf(os.Stdout, "\n%d results\n", len(results))
	return nil
}

// --- export subcommand ---

var storeExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the store to YAML or JSON",
	Long: `Export writes stored results (or a filtered subset) to
<data-dir>/index/export.yaml or export.json. Supports the same filter
flags as retrieve for partial exports.`,
	RunE: runStoreExport,
}

func runStoreExport(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")

	s, err := store.NewStore(storeConfig(cmd))
	if err != nil {
		return err
	}
	defer s.Close()

	opts := queryOptsFromFlags(cmd)

	switch format {
	case "yaml", "":
		if err := s.ExportYAML(context.Background(), opts); err != nil {
			return err
		}
		fmt.Println("Exported to index/export.yaml")
	case "json":
		if err := s.ExportJSON(context.Background(), opts); err != nil {
			return err
		}
		fmt.Println("Exported to index/export.json")
	default:
		return fmt.Errorf("unsupported format %q: use yaml or json", format)
	}

	return nil
}

// --- shared helpers ---

func storeConfig(cmd *cobra.Command) types.StoreConfig {
	dataDir, _ := cmd.Flags().GetString("data-dir")
	if dataDir == "" {
		dataDir = "data"
	}
	maxResults, _ := cmd.Flags().GetInt("max-results")

	return types.StoreConfig{
		DataDir:    dataDir,
		MaxResults: maxResults,
	}
}

func queryOptsFromFlags(cmd *cobra.Command) store.QueryOptions {
	commune, _ := cmd.Flags().GetString("commune")
	year, _ := cmd.Flags().GetInt("year")
	scrutin, _ := cmd.Flags().GetString("scrutin")
	round, _ := cmd.Flags().GetInt("tour")
	family, _ := cmd.Flags().GetString("family")
	limit, _ := cmd.Flags().GetInt("limit")

	return store.QueryOptions{
		Commune:    commune,
		Year:       year,
		Scrutin:    scrutin,
		Round:      round,
		Family:     family,
		MaxResults: limit,
	}
}

func init() {
	// Shared flags on the parent command, inherited by subcommands.
	storeCmd.PersistentFlags().String("data-dir", "data", "base directory for the store (contains index/)")
	storeCmd.PersistentFlags().Int("max-results", 20, "maximum number of query results")

	// Ingest flags.
	storeIngestCmd.Flags().String("data", "data/processed_csv/master_ml.csv", "master dataset CSV to ingest")

	// Retrieve flags.
	storeRetrieveCmd.Flags().String("commune", "", "filter by INSEE commune code")
	storeRetrieveCmd.Flags().Int("year", 0, "filter by election year")
	storeRetrieveCmd.Flags().String("scrutin", "", "filter by scrutin type (substring)")
	storeRetrieveCmd.Flags().Int("tour", 0, "filter by voting round")
	storeRetrieveCmd.Flags().String("family", "", "filter by political family")
	storeRetrieveCmd.Flags().Int("limit", 0, "maximum results (0 = use default)")
	storeRetrieveCmd.Flags().Bool("json", false, "output results as JSON")

	// Export flags.
	storeExportCmd.Flags().String("format", "yaml", "export format: yaml or json")
	storeExportCmd.Flags().String("commune", "", "filter by INSEE commune code for partial export")
	storeExportCmd.Flags().Int("year", 0, "filter by election year for partial export")
	storeExportCmd.Flags().String("scrutin", "", "filter by scrutin type for partial export")
	storeExportCmd.Flags().Int("tour", 0, "filter by voting round for partial export")
	storeExportCmd.Flags().String("family", "", "filter by political family for partial export")
	storeExportCmd.Flags().Int("limit", 0, "maximum rows to export (0 = all)")

	// Wire subcommands.
	storeCmd.AddCommand(storeIngestCmd)
	storeCmd.AddCommand(storeRetrieveCmd)
	storeCmd.AddCommand(storeExportCmd)

	rootCmd.AddCommand(storeCmd)
}
