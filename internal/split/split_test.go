// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package split

import (
	"testing"

	"github.com/pdiddy/election-engine/internal/frame"
	"github.com/pdiddy/election-engine/pkg/types"
)

var splitColumns = []string{
	types.ColCommuneCode, types.ColYear, types.ColScrutin,
	types.ColRound, types.ColWinner, types.ColEstimated,
}

func buildFrame(t *testing.T, rows ...[]string) *frame.Frame {
	t.Helper()
	f := frame.New(splitColumns...)
	for _, r := range rows {
		if err := f.AppendRow(r); err != nil {
			t.Fatalf("AppendRow(%v): %v", r, err)
		}
	}
	return f
}

func yearsOf(f *frame.Frame) map[string]int {
	counts := make(map[string]int)
	for r := 0; r < f.NumRows(); r++ {
		counts[f.Value(r, types.ColYear)]++
	}
	return counts
}

func TestByYearDefaultsToMaxYear(t *testing.T) {
	f := buildFrame(t,
		[]string{"44109", "2017", "presidentielle", "1", "PS", "false"},
		[]string{"44109", "2020", "municipale", "1", "EELV", "false"},
		[]string{"44109", "2022", "presidentielle", "1", "RE", "false"},
		[]string{"44020", "2022", "presidentielle", "1", "RE", "false"},
	)

	res, err := ByYear(f, types.SplitConfig{})
	if err != nil {
		t.Fatalf("ByYear: %v", err)
	}

	if len(res.TestYears) != 1 || res.TestYears[0] != 2022 {
		t.Errorf("TestYears = %v, want [2022]", res.TestYears)
	}
	if res.Test.NumRows() != 2 {
		t.Errorf("test rows = %d, want 2", res.Test.NumRows())
	}
	if res.Train.NumRows() != 2 {
		t.Errorf("train rows = %d, want 2", res.Train.NumRows())
	}
	if got := yearsOf(res.Train)["2022"]; got != 0 {
		t.Errorf("train set contains %d rows of the test year", got)
	}
}

func TestByYearExplicitTestYears(t *testing.T) {
	f := buildFrame(t,
		[]string{"44109", "2017", "presidentielle", "1", "PS", "false"},
		[]string{"44109", "2020", "municipale", "1", "EELV", "false"},
		[]string{"44109", "2022", "presidentielle", "1", "RE", "false"},
	)

	res, err := ByYear(f, types.SplitConfig{TestYears: []int{2017, 2020}})
	if err != nil {
		t.Fatalf("ByYear: %v", err)
	}

	if res.Test.NumRows() != 2 {
		t.Errorf("test rows = %d, want 2", res.Test.NumRows())
	}
	trainYears := yearsOf(res.Train)
	if trainYears["2017"] != 0 || trainYears["2020"] != 0 {
		t.Errorf("train years = %v, want only 2022", trainYears)
	}
}

func TestByYearDropsEstimated(t *testing.T) {
	f := buildFrame(t,
		[]string{"44109", "2017", "presidentielle", "1", "PS", "false"},
		[]string{"44109", "2022", "presidentielle", "1", "RE", "true"},
		[]string{"44020", "2022", "presidentielle", "1", "RE", "oui"},
		[]string{"44026", "2022", "presidentielle", "1", "RE", "0"},
	)

	res, err := ByYear(f, types.SplitConfig{DropEstimated: true})
	if err != nil {
		t.Fatalf("ByYear: %v", err)
	}

	if res.DroppedEstimated != 2 {
		t.Errorf("DroppedEstimated = %d, want 2", res.DroppedEstimated)
	}
	if res.Test.NumRows() != 1 {
		t.Errorf("test rows = %d, want 1", res.Test.NumRows())
	}
}

func TestByYearKeepsEstimatedWhenDisabled(t *testing.T) {
	f := buildFrame(t,
		[]string{"44109", "2017", "presidentielle", "1", "PS", "false"},
		[]string{"44109", "2022", "presidentielle", "1", "RE", "true"},
	)

	res, err := ByYear(f, types.SplitConfig{DropEstimated: false})
	if err != nil {
		t.Fatalf("ByYear: %v", err)
	}
	if res.DroppedEstimated != 0 {
		t.Errorf("DroppedEstimated = %d, want 0", res.DroppedEstimated)
	}
	if res.Test.NumRows() != 1 {
		t.Errorf("test rows = %d, want 1", res.Test.NumRows())
	}
}

func TestByYearDropsInvalidRows(t *testing.T) {
	f := buildFrame(t,
		[]string{"44109", "2017", "presidentielle", "1", "PS", "false"},
		[]string{"44109", "", "presidentielle", "1", "RE", "false"},
		[]string{"44109", "2022", "presidentielle", "1", "", "false"},
		[]string{"44109", "2022", "presidentielle", "1", "RE", "false"},
	)

	res, err := ByYear(f, types.SplitConfig{})
	if err != nil {
		t.Fatalf("ByYear: %v", err)
	}
	if res.DroppedInvalid != 2 {
		t.Errorf("DroppedInvalid = %d, want 2", res.DroppedInvalid)
	}
}

func TestByYearCustomLabelColumn(t *testing.T) {
	f := frame.New(types.ColYear, types.ColScrutin, types.ColFamily)
	rows := [][]string{
		{"2017", "presidentielle", "PS"},
		{"2022", "presidentielle", "RE"},
	}
	for _, r := range rows {
		if err := f.AppendRow(r); err != nil {
			t.Fatalf("AppendRow: %v", err)
		}
	}

	res, err := ByYear(f, types.SplitConfig{LabelColumn: types.ColFamily})
	if err != nil {
		t.Fatalf("ByYear: %v", err)
	}
	if res.Train.NumRows() != 1 || res.Test.NumRows() != 1 {
		t.Errorf("split = %d/%d, want 1/1", res.Train.NumRows(), res.Test.NumRows())
	}
}

func TestByYearErrors(t *testing.T) {
	missing := frame.New(types.ColYear, types.ColScrutin)
	if _, err := ByYear(missing, types.SplitConfig{}); err == nil {
		t.Error("expected error for missing label column")
	}

	empty := buildFrame(t,
		[]string{"44109", "", "presidentielle", "1", "PS", "false"},
	)
	if _, err := ByYear(empty, types.SplitConfig{}); err == nil {
		t.Error("expected error when no usable rows remain")
	}

	oneYear := buildFrame(t,
		[]string{"44109", "2022", "presidentielle", "1", "RE", "false"},
		[]string{"44020", "2022", "presidentielle", "1", "RE", "false"},
	)
	if _, err := ByYear(oneYear, types.SplitConfig{}); err == nil {
		t.Error("expected error when the test years cover every year")
	}
}
