// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package audit

import (
	"io"
	"strings"
	"testing"

	"github.com/pdiddy/election-engine/internal/frame"
	"github.com/pdiddy/election-engine/pkg/types"
)

var auditColumns = []string{
	types.ColCommuneCode, types.ColYear, types.ColScrutin,
	types.ColRound, types.ColWinner,
}

func buildFrame(t *testing.T, rows ...[]string) *frame.Frame {
	t.Helper()
	f := frame.New(auditColumns...)
	for _, r := range rows {
		if err := f.AppendRow(r); err != nil {
			t.Fatalf("AppendRow(%v): %v", r, err)
		}
	}
	return f
}

func TestRunCleanDataset(t *testing.T) {
	f := buildFrame(t,
		[]string{"44109", "2022", "presidentielle", "1", "RE"},
		[]string{"44020", "2022", "presidentielle", "1", "RN"},
		[]string{"44109", "2017", "presidentielle", "1", "PS"},
		[]string{"44020", "2017", "presidentielle", "1", "LR"},
	)

	var buf strings.Builder
	rep, err := Run(f, &buf)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if !rep.OK() {
		t.Errorf("OK() = false, want true: %+v", rep)
	}
	if rep.UniqueKeys != 4 || rep.Duplicates != 0 {
		t.Errorf("keys = %d unique / %d dup, want 4/0", rep.UniqueKeys, rep.Duplicates)
	}
	if len(rep.Variation) != 2 {
		t.Errorf("variation groups = %d, want 2", len(rep.Variation))
	}
	if !strings.Contains(buf.String(), "verdict: OK") {
		t.Errorf("report missing OK verdict:\n%s", buf.String())
	}
}

func TestRunDetectsDuplicateKeys(t *testing.T) {
	f := buildFrame(t,
		[]string{"44109", "2022", "presidentielle", "1", "RE"},
		[]string{"44109", "2022", "presidentielle", "1", "RN"},
		[]string{"44109", "2022", "presidentielle", "2", "RE"},
	)

	rep, err := Run(f, io.Discard)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if rep.Duplicates != 1 {
		t.Errorf("Duplicates = %d, want 1", rep.Duplicates)
	}
	if rep.UniqueKeys != 2 {
		t.Errorf("UniqueKeys = %d, want 2", rep.UniqueKeys)
	}
	if len(rep.DuplicateSamples) != 1 || !strings.Contains(rep.DuplicateSamples[0], "44109") {
		t.Errorf("DuplicateSamples = %v", rep.DuplicateSamples)
	}
	if rep.OK() {
		t.Error("OK() = true, want false with duplicates present")
	}
}

func TestRunDuplicateSamplesCapped(t *testing.T) {
	rows := make([][]string, 0, 14)
	for i := 0; i < 7; i++ {
		code := string(rune('a' + i))
		rows = append(rows,
			[]string{code, "2022", "presidentielle", "1", "RE"},
			[]string{code, "2022", "presidentielle", "1", "RN"},
		)
	}
	f := buildFrame(t, rows...)

	rep, err := Run(f, io.Discard)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if rep.Duplicates != 7 {
		t.Errorf("Duplicates = %d, want 7", rep.Duplicates)
	}
	if len(rep.DuplicateSamples) != 5 {
		t.Errorf("DuplicateSamples = %d, want capped at 5", len(rep.DuplicateSamples))
	}
}

func TestRunDetectsMonochrome(t *testing.T) {
	f := buildFrame(t,
		[]string{"44109", "2020", "municipale", "1", "EELV"},
		[]string{"44020", "2020", "municipale", "1", "EELV"},
		[]string{"44026", "2020", "municipale", "1", "EELV"},
		[]string{"44109", "2022", "presidentielle", "1", "RE"},
		[]string{"44020", "2022", "presidentielle", "1", "RN"},
	)

	var buf strings.Builder
	rep, err := Run(f, &buf)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(rep.Monochrome) != 1 {
		t.Fatalf("Monochrome = %d groups, want 1", len(rep.Monochrome))
	}
	m := rep.Monochrome[0]
	if m.Year != "2020" || m.Scrutin != "municipale" || m.Communes != 3 || m.Winners != 1 {
		t.Errorf("Monochrome[0] = %+v", m)
	}
	if rep.OK() {
		t.Error("OK() = true, want false with a monochrome election")
	}
	if !strings.Contains(buf.String(), "verdict: PROBLEM") {
		t.Errorf("report missing PROBLEM verdict:\n%s", buf.String())
	}
}

func TestRunSingleCommuneNotMonochrome(t *testing.T) {
	f := buildFrame(t,
		[]string{"44109", "2022", "presidentielle", "1", "RE"},
	)

	rep, err := Run(f, io.Discard)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(rep.Monochrome) != 0 {
		t.Errorf("a single commune cannot be monochrome: %+v", rep.Monochrome)
	}
}

func TestRunSkipsEmptyWinners(t *testing.T) {
	f := buildFrame(t,
		[]string{"44109", "2022", "presidentielle", "1", "RE"},
		[]string{"44020", "2022", "presidentielle", "1", ""},
		[]string{"44026", "2022", "presidentielle", "1", " "},
	)

	rep, err := Run(f, io.Discard)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(rep.Variation) != 1 || rep.Variation[0].Communes != 1 {
		t.Errorf("Variation = %+v, want one group with one commune", rep.Variation)
	}
}

func TestRunVariationSortedByYear(t *testing.T) {
	f := buildFrame(t,
		[]string{"44109", "2022", "presidentielle", "1", "RE"},
		[]string{"44109", "217", "legislative", "1", "PS"},
		[]string{"44109", "2017", "presidentielle", "1", "PS"},
	)

	rep, err := Run(f, io.Discard)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	wantYears := []string{"217", "2017", "2022"}
	for i, want := range wantYears {
		if got := rep.Variation[i].Year; got != want {
			t.Errorf("Variation[%d].Year = %q, want %q (numeric order)", i, got, want)
		}
	}
}

func TestRunMissingColumns(t *testing.T) {
	f := frame.New(types.ColCommuneCode, types.ColYear)
	if _, err := Run(f, io.Discard); err == nil {
		t.Error("expected error for missing required columns")
	}
}

func TestWriteVariationReport(t *testing.T) {
	rep := &Report{
		Variation: []VariationRow{
			{Year: "2020", Scrutin: "municipale", Round: "1", Communes: 3, Winners: 1, Monochrome: true},
			{Year: "2022", Scrutin: "presidentielle", Round: "1", Communes: 3, Winners: 2},
		},
	}

	dir := t.TempDir()
	path, err := WriteVariationReport(rep, dir)
	if err != nil {
		t.Fatalf("WriteVariationReport: %v", err)
	}

	f, err := frame.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if f.NumRows() != 2 {
		t.Fatalf("NumRows = %d, want 2", f.NumRows())
	}
	if got := f.Value(0, "monochrome"); got != "true" {
		t.Errorf("monochrome = %q, want %q", got, "true")
	}
	if got := f.Value(1, "nb_vainqueurs"); got != "2" {
		t.Errorf("nb_vainqueurs = %q, want %q", got, "2")
	}
}
