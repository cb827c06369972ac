// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package split divides the master dataset into train and test sets by
// election year. The split is a leakage-safety policy, not a random
// shuffle: every row of a test year goes to the test set, so no model is
// ever trained on data from a year it is evaluated on.
package split

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pdiddy/election-engine/internal/frame"
	"github.com/pdiddy/election-engine/pkg/types"
)

// Result holds the two splits and the bookkeeping of dropped rows.
type Result struct {
	Train *frame.Frame
	Test  *frame.Frame

	// TestYears is the resolved test-year set (after defaulting).
	TestYears []int

	// DroppedEstimated counts rows excluded by the estimated-value filter.
	DroppedEstimated int

	// DroppedInvalid counts rows with an unparseable year or empty label.
	DroppedInvalid int
}

// ByYear splits the dataset. Rows whose year is in cfg.TestYears go to
// the test set, everything else to training; when cfg.TestYears is empty
// the maximum year present is used. Rows without a usable year or label
// are dropped, as are estimated rows when cfg.DropEstimated is set.
func ByYear(f *frame.Frame, cfg types.SplitConfig) (*Result, error) {
	label := cfg.LabelColumn
	if label == "" {
		label = types.ColWinner
	}

	for _, col := range []string{types.ColYear, label, types.ColScrutin} {
		if !f.Has(col) {
			return nil, fmt.Errorf("missing required column: %s", col)
		}
	}

	res := &Result{}

	clean := f.Filter(func(r int) bool {
		if cfg.DropEstimated && isTruthy(f.Value(r, types.ColEstimated)) {
			res.DroppedEstimated++
			return false
		}
		if _, ok := f.Int(r, types.ColYear); !ok {
			res.DroppedInvalid++
			return false
		}
		if strings.TrimSpace(f.Value(r, label)) == "" {
			res.DroppedInvalid++
			return false
		}
		return true
	})

	if clean.NumRows() == 0 {
		return nil, fmt.Errorf("no usable rows after filtering (%d estimated, %d invalid)",
			res.DroppedEstimated, res.DroppedInvalid)
	}

	testYears := cfg.TestYears
	if len(testYears) == 0 {
		testYears = []int{maxYear(clean)}
	}
	sort.Ints(testYears)
	res.TestYears = testYears

	inTest := make(map[int]bool, len(testYears))
	for _, y := range testYears {
		inTest[y] = true
	}

	res.Test = clean.Filter(func(r int) bool {
		y, _ := clean.Int(r, types.ColYear)
		return inTest[y]
	})
	res.Train = clean.Filter(func(r int) bool {
		y, _ := clean.Int(r, types.ColYear)
		return !inTest[y]
	})

	if res.Train.NumRows() == 0 {
		return nil, fmt.Errorf("training split is empty: test years %v cover every year present", testYears)
	}
	return res, nil
}

func maxYear(f *frame.Frame) int {
	max, found := 0, false
	for r := 0; r < f.NumRows(); r++ {
		if y, ok := f.Int(r, types.ColYear); ok && (!found || y > max) {
			max, found = y, true
		}
	}
	return max
}

// isTruthy interprets the estimated flag across the spellings raw sources
// use for booleans.
func isTruthy(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1", "vrai", "oui", "yes":
		return true
	default:
		return false
	}
}
