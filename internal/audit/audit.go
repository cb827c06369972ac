// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package audit checks the master dataset for the failure modes that
// poison everything downstream: duplicate result keys and "monochrome"
// elections where one winner covers every commune, the signature of a
// winner computed once and propagated through a bad join.
package audit

import (
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/pdiddy/election-engine/internal/frame"
	"github.com/pdiddy/election-engine/pkg/types"
)

// RequiredColumns must be present for the audit to run at all.
var RequiredColumns = []string{
	types.ColCommuneCode,
	types.ColYear,
	types.ColScrutin,
	types.ColRound,
	types.ColWinner,
}

// VariationRow summarizes winner diversity for one (year, scrutin, round).
type VariationRow struct {
	Year       string
	Scrutin    string
	Round      string
	Communes   int
	Winners    int
	Monochrome bool
}

// Report is the outcome of one audit run.
type Report struct {
	Rows       int
	UniqueKeys int
	Duplicates int

	// DuplicateSamples holds up to five duplicated keys for diagnosis.
	DuplicateSamples []string

	Variation  []VariationRow
	Monochrome []VariationRow
}

// OK reports whether the dataset passed both checks.
func (r *Report) OK() bool {
	return r.Duplicates == 0 && len(r.Monochrome) == 0
}

// Run audits f, printing a human-readable report to w. Missing required
// columns abort with an error; quality findings go into the Report for
// the caller to judge.
func Run(f *frame.Frame, w io.Writer) (*Report, error) {
	var missing []string
	for _, col := range RequiredColumns {
		if !f.Has(col) {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required columns: %s", strings.Join(missing, ", "))
	}

	rep := &Report{Rows: f.NumRows()}

	fmt.Fprintln(w, "=== Audit: election data quality ===")
	fmt.Fprintf(w, "dataset: %d rows, %d columns\n\n", f.NumRows(), f.NumCols())

	checkKeys(f, rep, w)
	checkVariation(f, rep, w)

	if rep.OK() {
		fmt.Fprintln(w, "verdict: OK — winner variation observed on all combinations")
	} else {
		fmt.Fprintln(w, "verdict: PROBLEM — recompute the winner per (commune, year, scrutin, round)")
		fmt.Fprintln(w, "and redo the join on the full key before exporting maps.")
	}

	return rep, nil
}

func checkKeys(f *frame.Frame, rep *Report, w io.Writer) {
	seen := make(map[string]bool, f.NumRows())
	for r := 0; r < f.NumRows(); r++ {
		key := rowKey(f, r)
		if seen[key] {
			rep.Duplicates++
			if len(rep.DuplicateSamples) < 5 {
				rep.DuplicateSamples = append(rep.DuplicateSamples, strings.ReplaceAll(key, "\x1f", "/"))
			}
			continue
		}
		seen[key] = true
	}
	rep.UniqueKeys = len(seen)

	fmt.Fprintln(w, "key uniqueness (commune, year, scrutin, round):")
	fmt.Fprintf(w, "  unique keys: %d, duplicates: %d\n", rep.UniqueKeys, rep.Duplicates)
	for _, s := range rep.DuplicateSamples {
		fmt.Fprintf(w, "  duplicate: %s\n", s)
	}
	fmt.Fprintln(w)
}

func rowKey(f *frame.Frame, row int) string {
	parts := make([]string, len(types.KeyColumns))
	for i, c := range types.KeyColumns {
		parts[i] = f.Value(row, c)
	}
	return strings.Join(parts, "\x1f")
}

func checkVariation(f *frame.Frame, rep *Report, w io.Writer) {
	type agg struct {
		communes map[string]bool
		winners  map[string]bool
	}
	groups := make(map[string]*agg)

	for r := 0; r < f.NumRows(); r++ {
		winner := strings.TrimSpace(f.Value(r, types.ColWinner))
		if winner == "" {
			continue
		}
		key := f.Value(r, types.ColYear) + "\x1f" + f.Value(r, types.ColScrutin) + "\x1f" + f.Value(r, types.ColRound)
		a, ok := groups[key]
		if !ok {
			a = &agg{communes: make(map[string]bool), winners: make(map[string]bool)}
			groups[key] = a
		}
		a.communes[f.Value(r, types.ColCommuneCode)] = true
		a.winners[winner] = true
	}

	for key, a := range groups {
		parts := strings.SplitN(key, "\x1f", 3)
		row := VariationRow{
			Year:       parts[0],
			Scrutin:    parts[1],
			Round:      parts[2],
			Communes:   len(a.communes),
			Winners:    len(a.winners),
			Monochrome: len(a.winners) == 1 && len(a.communes) > 1,
		}
		rep.Variation = append(rep.Variation, row)
		if row.Monochrome {
			rep.Monochrome = append(rep.Monochrome, row)
		}
	}

	byElection := func(rows []VariationRow) {
		sort.Slice(rows, func(i, j int) bool {
			if c := frameCompare(rows[i].Year, rows[j].Year); c != 0 {
				return c < 0
			}
			if rows[i].Scrutin != rows[j].Scrutin {
				return rows[i].Scrutin < rows[j].Scrutin
			}
			return frameCompare(rows[i].Round, rows[j].Round) < 0
		})
	}
	byElection(rep.Variation)
	byElection(rep.Monochrome)

	fmt.Fprintln(w, "winner variation per (year, scrutin, round):")
	fmt.Fprintf(w, "  %-6s  %-24s  %-4s  %-8s  %-8s  %s\n",
		"year", "scrutin", "tour", "communes", "winners", "monochrome")
	for _, v := range rep.Variation {
		fmt.Fprintf(w, "  %-6s  %-24s  %-4s  %-8d  %-8d  %v\n",
			v.Year, v.Scrutin, v.Round, v.Communes, v.Winners, v.Monochrome)
	}
	fmt.Fprintln(w)

	if len(rep.Monochrome) > 0 {
		fmt.Fprintf(w, "monochrome elections: %d (winner probably propagated by a join)\n\n", len(rep.Monochrome))
	}
}

// frameCompare orders year/round strings numerically when possible.
func frameCompare(a, b string) int {
	va, errA := strconv.Atoi(strings.TrimSpace(a))
	vb, errB := strconv.Atoi(strings.TrimSpace(b))
	if errA == nil && errB == nil {
		switch {
		case va < vb:
			return -1
		case va > vb:
			return 1
		default:
			return 0
		}
	}
	return strings.Compare(a, b)
}

// WriteVariationReport writes the variation table to
// reportDir/winner_variation.csv.
func WriteVariationReport(rep *Report, reportDir string) (string, error) {
	out := frame.New("annee", "type_scrutin", "tour", "nb_communes", "nb_vainqueurs", "monochrome")
	for _, v := range rep.Variation {
		out.AppendRow([]string{
			v.Year, v.Scrutin, v.Round,
			fmt.Sprintf("%d", v.Communes),
			fmt.Sprintf("%d", v.Winners),
			fmt.Sprintf("%v", v.Monochrome),
		})
	}
	path := filepath.Join(reportDir, "winner_variation.csv")
	if err := frame.WriteFile(out, path, frame.WriteOptions{}); err != nil {
		return "", err
	}
	return path, nil
}
