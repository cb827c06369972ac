// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
)

// QueryOptions holds the structured filters for result queries.
type QueryOptions struct {
	// Commune filters by the five-digit INSEE code.
	Commune string

	// Year filters by election year. Zero means any.
	Year int

	// Scrutin filters by election type with substring match, the way the
	// source files abbreviate ("presidentielle" vs "présidentielle").
	Scrutin string

	// Round filters by voting round. Zero means any.
	Round int

	// Family filters by political family.
	Family string

	// MaxResults limits result count. Zero uses the store default.
	MaxResults int
}

// IsEmpty reports whether the query has no filters.
func (q QueryOptions) IsEmpty() bool {
	return q.Commune == "" && q.Year == 0 && q.Scrutin == "" && q.Round == 0 && q.Family == ""
}

// Result is one stored election row with its extra features decoded.
type Result struct {
	CommuneCode string            `json:"code_commune_insee" yaml:"code_commune_insee"`
	CommuneName string            `json:"nom_commune" yaml:"nom_commune"`
	Year        int               `json:"annee" yaml:"annee"`
	Scrutin     string            `json:"type_scrutin" yaml:"type_scrutin"`
	Round       int               `json:"tour" yaml:"tour"`
	Winner      string            `json:"parti_en_tete" yaml:"parti_en_tete"`
	Family      string            `json:"famille_politique" yaml:"famille_politique"`
	WinnerPrev  string            `json:"winner_prev,omitempty" yaml:"winner_prev,omitempty"`
	TurnoutPct  *float64          `json:"turnout_pct,omitempty" yaml:"turnout_pct,omitempty"`
	Estimated   bool              `json:"estime" yaml:"estime"`
	Extras      map[string]string `json:"extras,omitempty" yaml:"extras,omitempty"`
}

// Retrieve queries stored results with the given filters, ordered by
// year, scrutin type, round, and commune.
func (s *Store) Retrieve(ctx context.Context, opts QueryOptions) ([]Result, error) {
	maxResults := opts.MaxResults
	if maxResults <= 0 {
		maxResults = s.maxResults
	}

	var (
		qb   strings.Builder
		args []any
	)
	qb.WriteString(
		`SELECT code_commune_insee, nom_commune, annee, type_scrutin, tour,
			parti_en_tete, famille_politique, winner_prev, turnout_pct, estime, extras
		FROM results
		WHERE 1=1`)

	if opts.Commune != "" {
		qb.WriteString(` AND code_commune_insee = ?`)
		args = append(args, opts.Commune)
	}
	if opts.Year != 0 {
		qb.WriteString(` AND annee = ?`)
		args = append(args, opts.Year)
	}
	if opts.Scrutin != "" {
		qb.WriteString(` AND type_scrutin LIKE ?`)
		args = append(args, "%"+opts.Scrutin+"%")
	}
	if opts.Round != 0 {
		qb.WriteString(` AND tour = ?`)
		args = append(args, opts.Round)
	}
	if opts.Family != "" {
		qb.WriteString(` AND famille_politique = ?`)
		args = append(args, opts.Family)
	}

	qb.WriteString(` ORDER BY annee, type_scrutin, tour, code_commune_insee LIMIT ?`)
	args = append(args, maxResults)

	rows, err := s.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("querying results: %w", err)
	}
	defer rows.Close()

	var results []Result
	for rows.Next() {
		var (
			res        Result
			name       sql.NullString
			winner     sql.NullString
			family     sql.NullString
			winnerPrev sql.NullString
			turnout    sql.NullFloat64
			estime     int
			extrasJSON sql.NullString
		)
		if err := rows.Scan(
			&res.CommuneCode, &name, &res.Year, &res.Scrutin, &res.Round,
			&winner, &family, &winnerPrev, &turnout, &estime, &extrasJSON,
		); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}

		res.CommuneName = name.String
		res.Winner = winner.String
		res.Family = family.String
		res.WinnerPrev = winnerPrev.String
		res.Estimated = estime != 0
		if turnout.Valid {
			v := turnout.Float64
			res.TurnoutPct = &v
		}
		if extrasJSON.Valid && extrasJSON.String != "" && extrasJSON.String != "{}" {
			json.Unmarshal([]byte(extrasJSON.String), &res.Extras)
		}

		results = append(results, res)
	}

	return results, rows.Err()
}
