// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package normalize harmonizes heterogeneous raw schemas onto the
// canonical column set. Sources spell the commune key, name, and year a
// dozen ways; everything downstream assumes the canonical spelling.
package normalize

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/pdiddy/election-engine/internal/frame"
	"github.com/pdiddy/election-engine/pkg/types"
)

// columnAliases maps lowercased source column names onto canonical names.
// Identity entries keep already-canonical columns from being reported as
// unknown.
var columnAliases = map[string]string{
	"code_commune_insee": types.ColCommuneCode,
	"commune_insee":      types.ColCommuneCode,
	"insee_code":         types.ColCommuneCode,
	"code":               types.ColCommuneCode,
	"nom_commune":        types.ColCommuneName,
	"commune":            types.ColCommuneName,
	"nom":                types.ColCommuneName,
	"annee":              types.ColYear,
	"year":               types.ColYear,
	"type_scrutin":       types.ColScrutin,
	"tour":               types.ColRound,
	"date_scrutin":       types.ColScrutinDate,
	"parti_en_tete":      types.ColWinner,
	"estime":             types.ColEstimated,
}

// dateLayouts are the scrutiny date formats seen across sources.
var dateLayouts = []string{
	"2006-01-02",
	"02/01/2006",
	"2006-01-02 15:04:05",
	time.RFC3339,
}

const communeCodeWidth = 5

// Keys renames alias columns to their canonical names, coerces annee and
// tour to integers, parses date_scrutin, left-pads INSEE codes to five
// digits, and defaults a missing estime column to false. Cells that
// resist coercion are blanked and counted in the returned warnings
// instead of silently passing through.
func Keys(f *frame.Frame) (*frame.Frame, []types.Warning) {
	if f == nil || f.NumCols() == 0 {
		return f, nil
	}

	var warnings []types.Warning

	for _, col := range f.Columns() {
		canonical, ok := columnAliases[strings.ToLower(col)]
		if !ok || canonical == col {
			continue
		}
		if err := f.RenameColumn(col, canonical); err != nil {
			// Two aliases of the same key in one source; keep the first.
			warnings = append(warnings, types.Warning{
				Stage:   "normalize",
				Column:  col,
				Message: fmt.Sprintf("alias of %s ignored, column already present", canonical),
			})
		}
	}

	warnings = append(warnings, coerceInt(f, types.ColYear)...)
	warnings = append(warnings, coerceInt(f, types.ColRound)...)
	warnings = append(warnings, coerceDate(f, types.ColScrutinDate)...)

	if f.Has(types.ColCommuneCode) {
		for r := 0; r < f.NumRows(); r++ {
			f.SetValue(r, types.ColCommuneCode, padCommuneCode(f.Value(r, types.ColCommuneCode)))
		}
	}

	if f.AddColumn(types.ColEstimated, "false") {
		warnings = append(warnings, types.Warning{
			Stage:   "normalize",
			Column:  types.ColEstimated,
			Message: "column missing, defaulted to false",
		})
	}

	return f, warnings
}

// coerceInt rewrites the column to canonical integer strings, blanking
// unparseable cells.
func coerceInt(f *frame.Frame, col string) []types.Warning {
	if !f.Has(col) {
		return nil
	}
	bad := 0
	for r := 0; r < f.NumRows(); r++ {
		raw := strings.TrimSpace(f.Value(r, col))
		if raw == "" {
			continue
		}
		if v, ok := f.Int(r, col); ok {
			f.SetValue(r, col, strconv.Itoa(v))
			continue
		}
		f.SetValue(r, col, "")
		bad++
	}
	if bad == 0 {
		return nil
	}
	return []types.Warning{{
		Stage:   "normalize",
		Column:  col,
		Rows:    bad,
		Message: "non-numeric values blanked",
	}}
}

// coerceDate rewrites the column to ISO dates, blanking unparseable cells.
func coerceDate(f *frame.Frame, col string) []types.Warning {
	if !f.Has(col) {
		return nil
	}
	bad := 0
	for r := 0; r < f.NumRows(); r++ {
		raw := strings.TrimSpace(f.Value(r, col))
		if raw == "" {
			continue
		}
		if t, ok := parseDate(raw); ok {
			f.SetValue(r, col, t.Format("2006-01-02"))
			continue
		}
		f.SetValue(r, col, "")
		bad++
	}
	if bad == 0 {
		return nil
	}
	return []types.Warning{{
		Stage:   "normalize",
		Column:  col,
		Rows:    bad,
		Message: "unparseable dates blanked",
	}}
}

func parseDate(s string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// padCommuneCode left-pads an INSEE code to five characters. Codes read
// as numbers lose their leading zero (Loire-Atlantique is fine, the Ain
// is not), so "1234" becomes "01234". Float forms from spreadsheet
// round-trips are truncated first.
func padCommuneCode(code string) string {
	code = strings.TrimSpace(code)
	if code == "" {
		return code
	}
	if v, err := strconv.ParseFloat(code, 64); err == nil && v == float64(int(v)) {
		code = strconv.Itoa(int(v))
	}
	for len(code) < communeCodeWidth {
		code = "0" + code
	}
	return code
}
