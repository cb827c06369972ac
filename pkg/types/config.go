// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "election-engine/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// ETLConfig holds settings for the build stage.
type ETLConfig struct {
	// RawDir is the directory scanned for raw election and indicator CSVs.
	RawDir string `json:"raw_dir" yaml:"raw_dir"`

	// OutPath is the destination of the master dataset CSV.
	OutPath string `json:"out_path" yaml:"out_path"`

	// FamiliesPath optionally points to a YAML file overriding the
	// built-in party-to-family table.
	FamiliesPath string `json:"families_path,omitempty" yaml:"families_path,omitempty"`
}

// AuditConfig holds settings for the audit stage.
type AuditConfig struct {
	// MasterPath is the master dataset CSV to audit.
	MasterPath string `json:"master_path" yaml:"master_path"`

	// ReportDir is the directory receiving audit report CSVs.
	ReportDir string `json:"report_dir" yaml:"report_dir"`

	// Strict makes monochrome elections and duplicate keys fatal.
	Strict bool `json:"strict" yaml:"strict"`
}

// SplitConfig holds settings for the train/test split stage.
type SplitConfig struct {
	// MasterPath is the master dataset CSV to split.
	MasterPath string `json:"master_path" yaml:"master_path"`

	// OutDir is the directory receiving train.csv and test.csv.
	OutDir string `json:"out_dir" yaml:"out_dir"`

	// TestYears lists the years reserved for the test set. Empty means
	// the maximum year present in the dataset.
	TestYears []int `json:"test_years,omitempty" yaml:"test_years,omitempty"`

	// DropEstimated excludes rows flagged as estimated values.
	DropEstimated bool `json:"drop_estimated" yaml:"drop_estimated"`

	// LabelColumn is the prediction target (default "parti_en_tete").
	LabelColumn string `json:"label_column,omitempty" yaml:"label_column,omitempty"`
}

// StoreConfig holds settings for the dataset store stage.
type StoreConfig struct {
	// DataDir is the base directory for the store (contains index/).
	DataDir string `json:"data_dir" yaml:"data_dir"`

	// MaxResults is the default maximum number of query results (default 20).
	MaxResults int `json:"max_results" yaml:"max_results"`
}

// GeoConfig holds settings for the boundary acquisition stage.
type GeoConfig struct {
	HTTPConfig `yaml:",inline"`

	// EPCI is the intercommunal authority code whose commune contours are
	// fetched (default "244400404", Nantes Métropole).
	EPCI string `json:"epci" yaml:"epci"`

	// OutPath is the destination GeoJSON file.
	OutPath string `json:"out_path" yaml:"out_path"`
}

// PipelineConfig groups all stage configurations for the pipeline.
type PipelineConfig struct {
	ETL   ETLConfig   `json:"etl" yaml:"etl"`
	Audit AuditConfig `json:"audit" yaml:"audit"`
	Split SplitConfig `json:"split" yaml:"split"`
	Store StoreConfig `json:"store" yaml:"store"`
	Geo   GeoConfig   `json:"geo" yaml:"geo"`
}
