// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/election-engine/internal/frame"
	"github.com/pdiddy/election-engine/internal/split"
	"github.com/pdiddy/election-engine/pkg/types"
)

var splitCmd = &cobra.Command{
	Use:   "split",
	Short: "Split the master dataset into train and test sets by year",
	Long: `Split writes train.csv and test.csv from the master dataset. The test
set holds every row of the test years (default: the most recent year
present); training holds everything older. Splitting by year rather than
at random keeps later elections out of the training data.`,
	RunE: runSplit,
}

func runSplit(cmd *cobra.Command, args []string) error {
	cfg := types.SplitConfig{
		MasterPath:  stringSetting(cmd, "data", "split.master_path"),
		OutDir:      stringSetting(cmd, "out-dir", "split.out_dir"),
		LabelColumn: stringSetting(cmd, "label", "split.label_column"),
	}
	cfg.TestYears, _ = cmd.Flags().GetIntSlice("test-years")
	if len(cfg.TestYears) == 0 && viper.IsSet("split.test_years") {
		cfg.TestYears = viper.GetIntSlice("split.test_years")
	}
	cfg.DropEstimated, _ = cmd.Flags().GetBool("drop-estimated")

	f, err := frame.ReadFile(cfg.MasterPath)
	if err != nil {
		return err
	}

	res, err := split.ByYear(f, cfg)
	if err != nil {
		return err
	}

	trainPath := filepath.Join(cfg.OutDir, "train.csv")
	testPath := filepath.Join(cfg.OutDir, "test.csv")
	if err := frame.WriteFile(res.Train, trainPath, frame.WriteOptions{}); err != nil {
		return err
	}
	if err := frame.WriteFile(res.Test, testPath, frame.WriteOptions{}); err != nil {
		return err
	}

	fmt.Printf("test years %v: %d train rows, %d test rows", res.TestYears,
		res.Train.NumRows(), res.Test.NumRows())
	if res.DroppedEstimated > 0 || res.DroppedInvalid > 0 {
		fmt.Printf(" (dropped %d estimated, %d invalid)", res.DroppedEstimated, res.DroppedInvalid)
	}
	fmt.Println()
	fmt.Printf("wrote %s and %s\n", trainPath, testPath)
	return nil
}

func init() {
	splitCmd.Flags().String("data", "data/processed_csv/master_ml.csv", "master dataset CSV to split")
	splitCmd.Flags().String("out-dir", "data/processed_csv", "directory for train.csv and test.csv")
	splitCmd.Flags().IntSlice("test-years", nil, "years reserved for the test set (default: most recent)")
	splitCmd.Flags().Bool("drop-estimated", true, "exclude rows flagged as estimated")
	splitCmd.Flags().String("label", "parti_en_tete", "prediction target column")

	rootCmd.AddCommand(splitCmd)
}
