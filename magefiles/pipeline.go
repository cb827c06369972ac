//go:build mage

package main

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/magefile/mage/mg"
)

// run executes the built CLI with args, building it first.
func run(args ...string) error {
	mg.Deps(Build)
	cmd := exec.Command(filepath.Join(binDir, binName), args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

// Etl builds the master dataset from data/raw_csv.
func Etl() error {
	fmt.Println("[etl] Building master dataset from raw CSVs.")
	return run("build")
}

// Audit runs the data-quality audit on the master dataset.
func Audit() error {
	fmt.Println("[audit] Checking key uniqueness and winner variation.")
	return run("audit")
}

// Split writes the year-based train/test split.
func Split() error {
	fmt.Println("[split] Splitting master dataset by year.")
	return run("split")
}

// Pipeline runs ETL, audit, and split in order.
func Pipeline() error {
	if err := Etl(); err != nil {
		return err
	}
	if err := Audit(); err != nil {
		return err
	}
	return Split()
}
