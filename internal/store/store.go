// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store persists the master election dataset in SQLite so
// downstream consumers can query winners without re-reading the wide CSV.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/election-engine/internal/frame"
	"github.com/pdiddy/election-engine/pkg/types"
)

const (
	indexDir = "index"
	dbFile   = "elections.db"
)

// fixedColumns are stored in dedicated SQL columns; everything else in
// the master frame (per-party shares, indicators, deltas) goes into the
// extras JSON blob.
var fixedColumns = []string{
	types.ColCommuneCode, types.ColCommuneName, types.ColYear,
	types.ColScrutin, types.ColRound, types.ColScrutinDate,
	types.ColWinner, types.ColFamily, "winner_prev",
	"inscrits", "votants", "blancs", "nuls", "exprimes",
	"turnout_pct", "blancs_pct", "nuls_pct",
	types.ColEstimated,
}

// Store manages the election results SQLite database.
type Store struct {
	db         *sql.DB
	dataDir    string
	maxResults int
}

// NewStore opens or creates the results database at
// dataDir/index/elections.db, creating the schema if needed.
func NewStore(cfg types.StoreConfig) (*Store, error) {
	dbDir := filepath.Join(cfg.DataDir, indexDir)
	if err := os.MkdirAll(dbDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating index directory: %w", err)
	}

	dbPath := filepath.Join(dbDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 20
	}

	s := &Store{db: db, dataDir: cfg.DataDir, maxResults: maxResults}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS results (
			code_commune_insee TEXT NOT NULL,
			nom_commune TEXT,
			annee INTEGER NOT NULL,
			type_scrutin TEXT NOT NULL,
			tour INTEGER NOT NULL,
			date_scrutin TEXT,
			parti_en_tete TEXT,
			famille_politique TEXT,
			winner_prev TEXT,
			inscrits REAL,
			votants REAL,
			blancs REAL,
			nuls REAL,
			exprimes REAL,
			turnout_pct REAL,
			blancs_pct REAL,
			nuls_pct REAL,
			estime INTEGER NOT NULL DEFAULT 0,
			extras TEXT,
			PRIMARY KEY (code_commune_insee, annee, type_scrutin, tour)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_results_annee ON results(annee)`,
		`CREATE INDEX IF NOT EXISTS idx_results_scrutin ON results(type_scrutin)`,
		`CREATE INDEX IF NOT EXISTS idx_results_famille ON results(famille_politique)`,
		`CREATE TABLE IF NOT EXISTS ingest_status (
			source_path TEXT PRIMARY KEY,
			file_mod_time TEXT
		)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// IngestSummary holds counts from one ingest run.
type IngestSummary struct {
	Inserted int
	Skipped  int
	Failed   int
}

// Total returns the number of rows processed.
func (s IngestSummary) Total() int {
	return s.Inserted + s.Skipped + s.Failed
}

// IngestFile loads the master CSV at path into the database. An unchanged
// file (by modification time) is skipped on subsequent runs. Rows missing
// any key cell are counted as failed and reported on w, not fatal.
func (s *Store) IngestFile(ctx context.Context, path string, w io.Writer) (IngestSummary, error) {
	info, err := os.Stat(path)
	if err != nil {
		return IngestSummary{}, fmt.Errorf("stat %s: %w", path, err)
	}
	modTime := info.ModTime().UTC().Format(time.RFC3339Nano)

	var storedModTime string
	err = s.db.QueryRowContext(ctx,
		`SELECT file_mod_time FROM ingest_status WHERE source_path = ?`, path,
	).Scan(&storedModTime)
	if err == nil && storedModTime == modTime {
		fmt.Fprintf(w, "skipped %s (unchanged)\n", path)
		return IngestSummary{}, nil
	}

	f, err := frame.ReadFile(path)
	if err != nil {
		return IngestSummary{}, err
	}

	summary, err := s.ingestFrame(ctx, f, w)
	if err != nil {
		return summary, err
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO ingest_status (source_path, file_mod_time) VALUES (?, ?)
		 ON CONFLICT(source_path) DO UPDATE SET file_mod_time=excluded.file_mod_time`,
		path, modTime,
	)
	if err != nil {
		return summary, fmt.Errorf("updating ingest status: %w", err)
	}

	fmt.Fprintf(w, "\ningested: %d, skipped: %d, failed: %d\n",
		summary.Inserted, summary.Skipped, summary.Failed)
	return summary, nil
}

func (s *Store) ingestFrame(ctx context.Context, f *frame.Frame, w io.Writer) (IngestSummary, error) {
	var summary IngestSummary

	extraCols := extraColumns(f)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return summary, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO results (
			code_commune_insee, nom_commune, annee, type_scrutin, tour,
			date_scrutin, parti_en_tete, famille_politique, winner_prev,
			inscrits, votants, blancs, nuls, exprimes,
			turnout_pct, blancs_pct, nuls_pct, estime, extras
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(code_commune_insee, annee, type_scrutin, tour) DO UPDATE SET
			nom_commune=excluded.nom_commune, date_scrutin=excluded.date_scrutin,
			parti_en_tete=excluded.parti_en_tete, famille_politique=excluded.famille_politique,
			winner_prev=excluded.winner_prev, inscrits=excluded.inscrits,
			votants=excluded.votants, blancs=excluded.blancs, nuls=excluded.nuls,
			exprimes=excluded.exprimes, turnout_pct=excluded.turnout_pct,
			blancs_pct=excluded.blancs_pct, nuls_pct=excluded.nuls_pct,
			estime=excluded.estime, extras=excluded.extras`)
	if err != nil {
		return summary, fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for r := 0; r < f.NumRows(); r++ {
		code := f.Value(r, types.ColCommuneCode)
		annee, okYear := f.Int(r, types.ColYear)
		scrutin := f.Value(r, types.ColScrutin)
		tour, okTour := f.Int(r, types.ColRound)
		if code == "" || scrutin == "" || !okYear || !okTour {
			fmt.Fprintf(w, "failed  row %d: incomplete key\n", r)
			summary.Failed++
			continue
		}

		extras, err := extrasJSON(f, r, extraCols)
		if err != nil {
			fmt.Fprintf(w, "failed  row %d: %v\n", r, err)
			summary.Failed++
			continue
		}

		_, err = stmt.ExecContext(ctx,
			code, f.Value(r, types.ColCommuneName), annee, scrutin, tour,
			f.Value(r, types.ColScrutinDate), f.Value(r, types.ColWinner),
			f.Value(r, types.ColFamily), f.Value(r, "winner_prev"),
			nullFloat(f, r, "inscrits"), nullFloat(f, r, "votants"),
			nullFloat(f, r, "blancs"), nullFloat(f, r, "nuls"),
			nullFloat(f, r, "exprimes"), nullFloat(f, r, "turnout_pct"),
			nullFloat(f, r, "blancs_pct"), nullFloat(f, r, "nuls_pct"),
			boolInt(f.Value(r, types.ColEstimated)), extras,
		)
		if err != nil {
			return summary, fmt.Errorf("inserting row %d: %w", r, err)
		}
		summary.Inserted++
	}

	return summary, tx.Commit()
}

// extraColumns lists the frame columns not covered by dedicated SQL
// columns.
func extraColumns(f *frame.Frame) []string {
	fixed := make(map[string]bool, len(fixedColumns))
	for _, c := range fixedColumns {
		fixed[c] = true
	}
	var extras []string
	for _, c := range f.Columns() {
		if !fixed[c] {
			extras = append(extras, c)
		}
	}
	return extras
}

func extrasJSON(f *frame.Frame, row int, cols []string) (string, error) {
	if len(cols) == 0 {
		return "{}", nil
	}
	m := make(map[string]string, len(cols))
	for _, c := range cols {
		if v := f.Value(row, c); v != "" {
			m[c] = v
		}
	}
	data, err := json.Marshal(m)
	if err != nil {
		return "", fmt.Errorf("marshaling extras: %w", err)
	}
	return string(data), nil
}

func nullFloat(f *frame.Frame, row int, col string) any {
	if v, ok := f.Float(row, col); ok {
		return v
	}
	return nil
}

func boolInt(s string) int {
	switch s {
	case "true", "True", "TRUE", "1", "vrai", "oui":
		return 1
	default:
		return 0
	}
}
