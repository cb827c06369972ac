// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/election-engine/internal/derive"
	"github.com/pdiddy/election-engine/internal/frame"
	"github.com/pdiddy/election-engine/internal/normalize"
	"github.com/pdiddy/election-engine/internal/rawload"
	"github.com/pdiddy/election-engine/pkg/types"
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build the master ML dataset from raw CSVs",
	Long: `Build scans the raw directory for election and indicator CSVs,
harmonizes their schemas onto the canonical key set, derives the feature
columns (turnout, vote shares, leading party, political family, indicator
deltas, previous winner), and writes the master dataset CSV.

Data-quality degradations are reported on stderr as warnings; missing
election data aborts the run.`,
	RunE: runBuild,
}

func runBuild(cmd *cobra.Command, args []string) error {
	cfg := types.ETLConfig{
		RawDir:       stringSetting(cmd, "raw-dir", "etl.raw_dir"),
		OutPath:      stringSetting(cmd, "out", "etl.out_path"),
		FamiliesPath: stringSetting(cmd, "families", "etl.families_path"),
	}

	set, err := rawload.Load(cfg.RawDir, os.Stdout)
	if err != nil {
		return err
	}

	elections, warnings := normalize.Keys(set.Elections)
	if elections == nil || elections.NumRows() == 0 {
		return fmt.Errorf("no election rows found in %s", cfg.RawDir)
	}

	fam, err := derive.LoadFamilies(cfg.FamiliesPath)
	if err != nil {
		return err
	}

	master, deriveWarnings := derive.Features(elections, set.Indicators, fam)
	warnings = append(warnings, deriveWarnings...)

	for _, w := range warnings {
		fmt.Fprintln(os.Stderr, "warning:", w)
	}

	if err := frame.WriteFile(master, cfg.OutPath, frame.WriteOptions{}); err != nil {
		return err
	}

	fmt.Printf("[OK] wrote %s with %d rows and %d columns\n",
		cfg.OutPath, master.NumRows(), master.NumCols())
	return nil
}

func init() {
	buildCmd.Flags().String("raw-dir", "data/raw_csv", "input raw CSV directory")
	buildCmd.Flags().String("out", "data/processed_csv/master_ml.csv", "output CSV path")
	buildCmd.Flags().String("families", "", "YAML file overriding the party-to-family table")

	rootCmd.AddCommand(buildCmd)
}
