// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package derive

import (
	"testing"

	"github.com/pdiddy/election-engine/internal/frame"
	"github.com/pdiddy/election-engine/pkg/types"
)

func masterColumns(extra ...string) []string {
	cols := []string{
		types.ColCommuneCode, types.ColCommuneName, types.ColYear,
		types.ColScrutin, types.ColRound,
		"inscrits", "votants", "blancs", "nuls", "exprimes",
	}
	return append(cols, extra...)
}

func buildFrame(t *testing.T, columns []string, rows ...[]string) *frame.Frame {
	t.Helper()
	f := frame.New(columns...)
	for _, r := range rows {
		if err := f.AppendRow(r); err != nil {
			t.Fatalf("AppendRow(%v): %v", r, err)
		}
	}
	return f
}

func TestFeaturesRatios(t *testing.T) {
	f := buildFrame(t, masterColumns(),
		[]string{"44109", "Nantes", "2022", "presidentielle", "1", "1000", "800", "40", "10", "750"},
		[]string{"44020", "Bouaye", "2022", "presidentielle", "1", "0", "0", "", "", ""},
	)

	out, _ := Features(f, nil, DefaultFamilies())

	if got := out.Value(0, "turnout_pct"); got != "0.8" {
		t.Errorf("turnout_pct = %q, want %q", got, "0.8")
	}
	if got := out.Value(0, "blancs_pct"); got != "0.05" {
		t.Errorf("blancs_pct = %q, want %q", got, "0.05")
	}
	// Zero inscrits must yield a missing cell, never a division result.
	if got := out.Value(1, "turnout_pct"); got != "" {
		t.Errorf("zero-denominator turnout_pct = %q, want empty", got)
	}
}

func TestFeaturesPerPartyShares(t *testing.T) {
	f := buildFrame(t, masterColumns("voix_rn", "voix_ps"),
		[]string{"44109", "Nantes", "2022", "presidentielle", "1", "1000", "800", "0", "0", "800", "300", "500"},
	)

	out, _ := Features(f, nil, DefaultFamilies())

	if got := out.Value(0, "rn_pct"); got != "0.375" {
		t.Errorf("rn_pct = %q, want %q", got, "0.375")
	}
	if got := out.Value(0, "ps_pct"); got != "0.625" {
		t.Errorf("ps_pct = %q, want %q", got, "0.625")
	}
}

func TestFeaturesLeadingParty(t *testing.T) {
	f := buildFrame(t, masterColumns("voix_rn", "voix_ps", "voix_lr"),
		[]string{"44109", "Nantes", "2022", "presidentielle", "1", "1000", "800", "0", "0", "800", "300", "500", "0"},
		[]string{"44020", "Bouaye", "2022", "presidentielle", "1", "100", "80", "0", "0", "80", "40", "40", "0"},
		[]string{"44026", "Carquefou", "2022", "presidentielle", "1", "100", "80", "0", "0", "80", "", "", ""},
	)

	out, _ := Features(f, nil, DefaultFamilies())

	rows := make(map[string]int)
	for r := 0; r < out.NumRows(); r++ {
		rows[out.Value(r, types.ColCommuneCode)] = r
	}

	if got := out.Value(rows["44109"], types.ColWinner); got != "PS" {
		t.Errorf("winner = %q, want %q", got, "PS")
	}
	// Tie between PS and RN resolves to the smaller party code.
	if got := out.Value(rows["44020"], types.ColWinner); got != "PS" {
		t.Errorf("tied winner = %q, want %q", got, "PS")
	}
	if got := out.Value(rows["44026"], types.ColWinner); got != "" {
		t.Errorf("winner with no tallies = %q, want empty", got)
	}
}

func TestFeaturesKeepsProvidedWinner(t *testing.T) {
	f := buildFrame(t, masterColumns(types.ColWinner, "voix_rn", "voix_ps"),
		[]string{"44109", "Nantes", "2022", "presidentielle", "1", "1000", "800", "0", "0", "800", "OFFICIAL", "300", "500"},
	)

	out, _ := Features(f, nil, DefaultFamilies())

	if got := out.Value(0, types.ColWinner); got != "OFFICIAL" {
		t.Errorf("winner = %q, want source value kept", got)
	}
}

func TestFeaturesFamilyColumn(t *testing.T) {
	f := buildFrame(t, masterColumns(types.ColWinner),
		[]string{"44109", "Nantes", "2017", "presidentielle", "1", "1000", "800", "0", "0", "800", "FN"},
		[]string{"44020", "Bouaye", "2017", "presidentielle", "1", "100", "80", "0", "0", "80", "UNKNOWN"},
	)

	out, _ := Features(f, nil, DefaultFamilies())

	rows := make(map[string]int)
	for r := 0; r < out.NumRows(); r++ {
		rows[out.Value(r, types.ColCommuneCode)] = r
	}
	if got := out.Value(rows["44109"], types.ColFamily); got != "RN" {
		t.Errorf("family = %q, want %q", got, "RN")
	}
	if got := out.Value(rows["44020"], types.ColFamily); got != "UNKNOWN" {
		t.Errorf("unmapped family = %q, want passthrough", got)
	}
}

func TestFeaturesIndicatorJoin(t *testing.T) {
	f := buildFrame(t, masterColumns(),
		[]string{"44109", "Nantes", "2022", "presidentielle", "1", "1000", "800", "0", "0", "800"},
		[]string{"44020", "Bouaye", "2022", "presidentielle", "1", "100", "80", "0", "0", "80"},
	)
	ind := buildFrame(t, []string{"insee_code", "annee", "population", "nom_commune"},
		[]string{"44109", "2022", "320000", "NANTES-DUP"},
	)

	out, _ := Features(f, ind, DefaultFamilies())

	rows := make(map[string]int)
	for r := 0; r < out.NumRows(); r++ {
		rows[out.Value(r, types.ColCommuneCode)] = r
	}
	if got := out.Value(rows["44109"], "population"); got != "320000" {
		t.Errorf("population = %q, want %q", got, "320000")
	}
	if got := out.Value(rows["44020"], "population"); got != "" {
		t.Errorf("unmatched population = %q, want empty", got)
	}
	// The indicator side's commune name must not clobber the election side's.
	if got := out.Value(rows["44109"], types.ColCommuneName); got != "Nantes" {
		t.Errorf("nom_commune = %q, want %q", got, "Nantes")
	}
}

func TestFeaturesIndicatorJoinSkippedWithoutKeys(t *testing.T) {
	f := buildFrame(t, masterColumns(),
		[]string{"44109", "Nantes", "2022", "presidentielle", "1", "1000", "800", "0", "0", "800"},
	)
	ind := buildFrame(t, []string{"population"}, []string{"320000"})

	out, warnings := Features(f, ind, DefaultFamilies())

	if out.Has("population") {
		t.Error("join should be skipped when key columns are absent")
	}
	found := false
	for _, w := range warnings {
		if w.Stage == "derive" && w.Message == "indicator join skipped, key columns absent after normalization" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected skip warning, got %v", warnings)
	}
}

func TestFeaturesGroupDeltaAndPreviousWinner(t *testing.T) {
	f := buildFrame(t, masterColumns(types.ColWinner),
		[]string{"44109", "Nantes", "2022", "presidentielle", "1", "1000", "800", "0", "0", "800", "RE"},
		[]string{"44109", "Nantes", "2017", "presidentielle", "1", "1000", "780", "0", "0", "780", "PS"},
		[]string{"44109", "Nantes", "2020", "municipale", "1", "1000", "500", "0", "0", "500", "EELV"},
		[]string{"44020", "Bouaye", "2022", "presidentielle", "1", "100", "80", "0", "0", "80", "RE"},
	)
	ind := buildFrame(t, []string{"code_commune_insee", "annee", "population"},
		[]string{"44109", "2017", "290000"},
		[]string{"44109", "2022", "320000"},
		[]string{"44020", "2022", "8000"},
	)

	out, _ := Features(f, ind, DefaultFamilies())

	// Sorted order: 44020/pres/2022, 44109/municipale/2020,
	// 44109/pres/2017, 44109/pres/2022.
	type want struct {
		code, scrutin, year, delta, prev string
	}
	wants := []want{
		{"44020", "presidentielle", "2022", "", ""},
		{"44109", "municipale", "2020", "", ""},
		{"44109", "presidentielle", "2017", "", ""},
		{"44109", "presidentielle", "2022", "30000", "PS"},
	}
	if out.NumRows() != len(wants) {
		t.Fatalf("NumRows = %d, want %d", out.NumRows(), len(wants))
	}
	for i, w := range wants {
		if got := out.Value(i, types.ColCommuneCode); got != w.code {
			t.Fatalf("row %d code = %q, want %q (sort order)", i, got, w.code)
		}
		if got := out.Value(i, types.ColScrutin); got != w.scrutin {
			t.Fatalf("row %d scrutin = %q, want %q (sort order)", i, got, w.scrutin)
		}
		if got := out.Value(i, "population_delta"); got != w.delta {
			t.Errorf("row %d population_delta = %q, want %q", i, got, w.delta)
		}
		if got := out.Value(i, "winner_prev"); got != w.prev {
			t.Errorf("row %d winner_prev = %q, want %q", i, got, w.prev)
		}
	}
}

func TestFeaturesMissingColumnsWarn(t *testing.T) {
	f := buildFrame(t, []string{"code_commune_insee"}, []string{"44109"})

	out, warnings := Features(f, nil, DefaultFamilies())

	for _, col := range types.TallyColumns {
		if !out.Has(col) {
			t.Errorf("missing tally column %s should be added empty", col)
		}
	}
	if len(warnings) == 0 {
		t.Error("expected warnings for missing columns")
	}
}

func TestFeaturesNilMaster(t *testing.T) {
	out, warnings := Features(nil, nil, DefaultFamilies())
	if out != nil || warnings != nil {
		t.Errorf("Features(nil) = (%v, %v), want (nil, nil)", out, warnings)
	}
}
