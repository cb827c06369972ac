// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package derive computes the model-ready feature set from normalized
// election tallies: turnout and vote-share ratios, the leading party per
// commune, political families, joined socio-economic indicators with
// year-over-year deltas, and the previous election's winner.
package derive

import (
	"sort"
	"strings"

	"github.com/pdiddy/election-engine/internal/frame"
	"github.com/pdiddy/election-engine/internal/normalize"
	"github.com/pdiddy/election-engine/pkg/types"
)

const (
	votesPrefix    = "voix_"
	votesPctPrefix = "voix_pct_"
)

// joinExclude lists indicator columns never carried into the master
// frame: the name duplicates the election side, the EPCI code is constant
// within a metropolitan area.
var joinExclude = []string{types.ColCommuneName, "code_epci"}

// Features derives the master feature set in place on master and returns
// the joined, sorted result. Indicators may be nil. Degradations (missing
// columns, skipped joins) are reported as warnings, never silently.
func Features(master, indicators *frame.Frame, fam Families) (*frame.Frame, []types.Warning) {
	if master == nil || master.NumCols() == 0 {
		return master, nil
	}

	var warnings []types.Warning
	warn := func(col, msg string, rows int) {
		warnings = append(warnings, types.Warning{Stage: "derive", Column: col, Message: msg, Rows: rows})
	}

	keyCols := []string{types.ColCommuneCode, types.ColCommuneName, types.ColYear, types.ColScrutin, types.ColRound}
	for _, col := range keyCols {
		if master.AddColumn(col, "") {
			warn(col, "key column missing, filled empty", 0)
		}
	}
	for _, col := range types.TallyColumns {
		if master.AddColumn(col, "") {
			warn(col, "tally column missing, filled empty", 0)
		}
	}

	addRatio(master, "turnout_pct", "votants", "inscrits")
	addRatio(master, "blancs_pct", "blancs", "votants")
	addRatio(master, "nuls_pct", "nuls", "votants")

	voteCols := voteColumns(master)
	for _, col := range voteCols {
		party := strings.TrimPrefix(col, votesPrefix)
		addRatio(master, party+"_pct", col, "exprimes")
	}

	if !master.Has(types.ColWinner) && len(voteCols) > 0 {
		computeLeadingParty(master, voteCols)
	}

	if master.Has(types.ColWinner) {
		master.AddColumn(types.ColFamily, "")
		for r := 0; r < master.NumRows(); r++ {
			master.SetValue(r, types.ColFamily, fam.Map(master.Value(r, types.ColWinner)))
		}
	}

	master, joinWarnings := joinIndicators(master, indicators)
	warnings = append(warnings, joinWarnings...)

	// Stable sort so per-group diff and shift see elections in temporal order.
	master.SortBy(types.ColCommuneCode, types.ColScrutin, types.ColYear, types.ColRound)

	for _, feat := range types.IndicatorColumns {
		if master.Has(feat) {
			addGroupDelta(master, feat)
		}
	}

	if master.Has(types.ColWinner) {
		addPreviousWinner(master)
	}

	return master, warnings
}

// addRatio adds name = num/den with zero or missing denominators yielding
// an empty cell rather than a division error.
func addRatio(f *frame.Frame, name, num, den string) {
	if !f.AddColumn(name, "") {
		return
	}
	for r := 0; r < f.NumRows(); r++ {
		n, okN := f.Float(r, num)
		d, okD := f.Float(r, den)
		if !okN || !okD || d == 0 {
			continue
		}
		f.SetValue(r, name, frame.FormatFloat(n/d))
	}
}

// voteColumns returns the raw per-party tally columns, sorted so the
// leading-party tie-break is deterministic.
func voteColumns(f *frame.Frame) []string {
	var cols []string
	for _, col := range f.Columns() {
		if strings.HasPrefix(col, votesPrefix) && !strings.HasPrefix(col, votesPctPrefix) {
			cols = append(cols, col)
		}
	}
	sort.Strings(cols)
	return cols
}

// computeLeadingParty sets parti_en_tete to the argmax across the vote
// columns. Ties go to the lexicographically smallest party code; rows
// with no parseable tally stay empty.
func computeLeadingParty(f *frame.Frame, voteCols []string) {
	f.AddColumn(types.ColWinner, "")
	for r := 0; r < f.NumRows(); r++ {
		best, bestVal, found := "", 0.0, false
		for _, col := range voteCols {
			v, ok := f.Float(r, col)
			if !ok {
				continue
			}
			if !found || v > bestVal {
				best, bestVal, found = col, v, true
			}
		}
		if found {
			f.SetValue(r, types.ColWinner, strings.ToUpper(strings.TrimPrefix(best, votesPrefix)))
		}
	}
}

// joinIndicators left-joins the indicator frame on (commune, year). The
// join is skipped with a warning when either key column is missing on the
// indicator side; unmatched keys leave indicator cells empty.
func joinIndicators(master, indicators *frame.Frame) (*frame.Frame, []types.Warning) {
	if indicators == nil || indicators.NumCols() == 0 {
		return master, []types.Warning{{
			Stage:   "derive",
			Message: "no indicator data, socio-economic features skipped",
		}}
	}

	ind, warnings := normalize.Keys(indicators)
	if !ind.Has(types.ColCommuneCode) || !ind.Has(types.ColYear) {
		warnings = append(warnings, types.Warning{
			Stage:   "derive",
			Message: "indicator join skipped, key columns absent after normalization",
		})
		return master, warnings
	}

	joined := master.LeftJoin(ind, []string{types.ColCommuneCode, types.ColYear}, joinExclude)
	return joined, warnings
}

// addGroupDelta adds feat_delta, the difference from the previous row
// within the (commune, type_scrutin) group in sorted order. The first row
// of each group, and rows around missing values, stay empty.
func addGroupDelta(f *frame.Frame, feat string) {
	name := feat + "_delta"
	if !f.AddColumn(name, "") {
		return
	}
	prevGroup := ""
	prevVal, prevOK := 0.0, false
	for r := 0; r < f.NumRows(); r++ {
		group := groupKey(f, r)
		cur, curOK := f.Float(r, feat)
		if group == prevGroup && curOK && prevOK {
			f.SetValue(r, name, frame.FormatFloat(cur-prevVal))
		}
		prevGroup, prevVal, prevOK = group, cur, curOK
	}
}

// addPreviousWinner adds winner_prev, parti_en_tete shifted by one within
// the (commune, type_scrutin) group in sorted order.
func addPreviousWinner(f *frame.Frame) {
	if !f.AddColumn("winner_prev", "") {
		return
	}
	prevGroup, prevWinner := "", ""
	for r := 0; r < f.NumRows(); r++ {
		group := groupKey(f, r)
		if group == prevGroup {
			f.SetValue(r, "winner_prev", prevWinner)
		}
		prevGroup, prevWinner = group, f.Value(r, types.ColWinner)
	}
}

func groupKey(f *frame.Frame, row int) string {
	return f.Value(row, types.ColCommuneCode) + "\x1f" + f.Value(row, types.ColScrutin)
}
