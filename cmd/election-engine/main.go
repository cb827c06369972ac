// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the election-engine CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd is the base command for the election-engine CLI.
var rootCmd = &cobra.Command{
	Use:   "election-engine",
	Short: "ETL and audit pipeline for metropolitan election results",
	Long: `election-engine builds the master machine-learning dataset for a French
metropolitan area from raw election and socio-economic CSVs, audits its
quality, splits it by year for leakage-safe model evaluation, and serves
it from a local SQLite store.

Each pipeline stage is a subcommand: build, audit, split, store, and
fetch-geo. Stages exchange data through the master CSV, so they can be
run independently or chained.`,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./election-engine.yaml or ~/.config/election-engine/config.yaml)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("election-engine")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "election-engine"))
		}
	}

	viper.SetEnvPrefix("ELECTION_ENGINE")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// stringSetting resolves a setting: an explicitly set flag wins, then the
// config file / environment, then the flag default.
func stringSetting(cmd *cobra.Command, flag, viperKey string) string {
	v, _ := cmd.Flags().GetString(flag)
	if !cmd.Flags().Changed(flag) && viper.IsSet(viperKey) {
		return viper.GetString(viperKey)
	}
	return v
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
