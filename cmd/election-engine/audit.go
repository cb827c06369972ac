// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/election-engine/internal/audit"
	"github.com/pdiddy/election-engine/internal/frame"
	"github.com/pdiddy/election-engine/pkg/types"
)

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Audit the master dataset for key and winner-diversity problems",
	Long: `Audit checks the master dataset for duplicate result keys and for
monochrome elections (a single winner across every commune), the usual
symptom of a winner computed once and propagated by a bad join. The
variation table is written to the report directory as
winner_variation.csv.`,
	RunE: runAudit,
}

func runAudit(cmd *cobra.Command, args []string) error {
	cfg := types.AuditConfig{
		MasterPath: stringSetting(cmd, "data", "audit.master_path"),
		ReportDir:  stringSetting(cmd, "report-dir", "audit.report_dir"),
	}
	cfg.Strict, _ = cmd.Flags().GetBool("strict")

	f, err := frame.ReadFile(cfg.MasterPath)
	if err != nil {
		return err
	}

	rep, err := audit.Run(f, os.Stdout)
	if err != nil {
		return err
	}

	path, err := audit.WriteVariationReport(rep, cfg.ReportDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: could not write report: %v\n", err)
	} else {
		fmt.Printf("report written to %s\n", path)
	}

	if cfg.Strict && !rep.OK() {
		return fmt.Errorf("audit failed: %d duplicate keys, %d monochrome elections",
			rep.Duplicates, len(rep.Monochrome))
	}
	return nil
}

func init() {
	auditCmd.Flags().String("data", "data/processed_csv/master_ml.csv", "master dataset CSV to audit")
	auditCmd.Flags().String("report-dir", "reports/checks", "directory for audit report CSVs")
	auditCmd.Flags().Bool("strict", false, "exit non-zero on duplicate keys or monochrome elections")

	rootCmd.AddCommand(auditCmd)
}
