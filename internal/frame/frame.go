// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package frame provides the column-ordered table every pipeline stage
// exchanges. Cells are strings as read from CSV; numeric accessors parse
// on demand and report missing or malformed values instead of failing.
package frame

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Frame is an in-memory table with named, ordered columns. The zero value
// is not usable; construct with New.
type Frame struct {
	columns []string
	index   map[string]int
	rows    [][]string
}

// New creates an empty frame with the given columns.
func New(columns ...string) *Frame {
	f := &Frame{
		columns: append([]string(nil), columns...),
		index:   make(map[string]int, len(columns)),
	}
	for i, c := range f.columns {
		f.index[c] = i
	}
	return f
}

// Columns returns the column names in order.
func (f *Frame) Columns() []string {
	return append([]string(nil), f.columns...)
}

// NumRows returns the number of rows.
func (f *Frame) NumRows() int { return len(f.rows) }

// NumCols returns the number of columns.
func (f *Frame) NumCols() int { return len(f.columns) }

// Has reports whether the frame contains the column.
func (f *Frame) Has(col string) bool {
	_, ok := f.index[col]
	return ok
}

// AppendRow adds a row. Short rows are padded with empty cells; long rows
// are rejected.
func (f *Frame) AppendRow(values []string) error {
	if len(values) > len(f.columns) {
		return fmt.Errorf("row has %d cells, frame has %d columns", len(values), len(f.columns))
	}
	row := make([]string, len(f.columns))
	copy(row, values)
	f.rows = append(f.rows, row)
	return nil
}

// Row returns a copy of row i.
func (f *Frame) Row(i int) []string {
	return append([]string(nil), f.rows[i]...)
}

// Value returns the cell at (row, col), or "" when the column is absent.
func (f *Frame) Value(row int, col string) string {
	i, ok := f.index[col]
	if !ok {
		return ""
	}
	return f.rows[row][i]
}

// SetValue writes the cell at (row, col). Unknown columns are ignored.
func (f *Frame) SetValue(row int, col, v string) {
	if i, ok := f.index[col]; ok {
		f.rows[row][i] = v
	}
}

// AddColumn appends a column filled with fill. It reports whether the
// column was added (false when it already existed).
func (f *Frame) AddColumn(name, fill string) bool {
	if f.Has(name) {
		return false
	}
	f.index[name] = len(f.columns)
	f.columns = append(f.columns, name)
	for i := range f.rows {
		f.rows[i] = append(f.rows[i], fill)
	}
	return true
}

// RenameColumn renames old to new. Renaming onto an existing column is an
// error; callers decide how to merge duplicated aliases.
func (f *Frame) RenameColumn(old, new string) error {
	i, ok := f.index[old]
	if !ok {
		return fmt.Errorf("no column %q", old)
	}
	if old == new {
		return nil
	}
	if f.Has(new) {
		return fmt.Errorf("column %q already exists", new)
	}
	delete(f.index, old)
	f.index[new] = i
	f.columns[i] = new
	return nil
}

// Float parses the cell at (row, col) as a float. It tolerates a decimal
// comma, common in FR-locale exports. The second return is false for
// missing columns, empty cells, and unparseable values.
func (f *Frame) Float(row int, col string) (float64, bool) {
	s := strings.TrimSpace(f.Value(row, col))
	if s == "" {
		return 0, false
	}
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		return v, true
	}
	if strings.Count(s, ",") == 1 && !strings.Contains(s, ".") {
		if v, err := strconv.ParseFloat(strings.Replace(s, ",", ".", 1), 64); err == nil {
			return v, true
		}
	}
	return 0, false
}

// Int parses the cell at (row, col) as an integer, accepting float forms
// like "2022.0" that appear after spreadsheet round-trips.
func (f *Frame) Int(row int, col string) (int, bool) {
	s := strings.TrimSpace(f.Value(row, col))
	if s == "" {
		return 0, false
	}
	if v, err := strconv.Atoi(s); err == nil {
		return v, true
	}
	if v, ok := f.Float(row, col); ok && v == float64(int(v)) {
		return int(v), true
	}
	return 0, false
}

// FormatFloat renders a float the way frames store numbers: shortest
// round-trip representation, empty string for the missing marker.
func FormatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// SortBy stably sorts rows by the given columns. Cells that parse as
// numbers on both sides compare numerically, otherwise lexically; empty
// cells sort first.
func (f *Frame) SortBy(cols ...string) {
	idx := make([]int, 0, len(cols))
	for _, c := range cols {
		if i, ok := f.index[c]; ok {
			idx = append(idx, i)
		}
	}
	sort.SliceStable(f.rows, func(a, b int) bool {
		for _, i := range idx {
			if c := compareCells(f.rows[a][i], f.rows[b][i]); c != 0 {
				return c < 0
			}
		}
		return false
	})
}

func compareCells(a, b string) int {
	if a == b {
		return 0
	}
	if a == "" {
		return -1
	}
	if b == "" {
		return 1
	}
	fa, errA := strconv.ParseFloat(a, 64)
	fb, errB := strconv.ParseFloat(b, 64)
	if errA == nil && errB == nil {
		switch {
		case fa < fb:
			return -1
		case fa > fb:
			return 1
		default:
			return 0
		}
	}
	return strings.Compare(a, b)
}

// Filter returns a new frame containing the rows for which keep is true.
func (f *Frame) Filter(keep func(row int) bool) *Frame {
	out := New(f.columns...)
	for i := range f.rows {
		if keep(i) {
			out.rows = append(out.rows, append([]string(nil), f.rows[i]...))
		}
	}
	return out
}

// Concat concatenates frames over the union of their columns, in
// first-seen order. Missing cells are empty.
func Concat(frames ...*Frame) *Frame {
	var columns []string
	seen := make(map[string]bool)
	for _, f := range frames {
		if f == nil {
			continue
		}
		for _, c := range f.columns {
			if !seen[c] {
				seen[c] = true
				columns = append(columns, c)
			}
		}
	}
	out := New(columns...)
	for _, f := range frames {
		if f == nil {
			continue
		}
		for r := range f.rows {
			row := make([]string, len(columns))
			for ci, c := range f.columns {
				row[out.index[c]] = f.rows[r][ci]
			}
			out.rows = append(out.rows, row)
		}
	}
	return out
}

// LeftJoin joins right onto f by equality on the on columns. Every left
// row is kept; unmatched keys leave the joined cells empty. Right columns
// named in exclude, used as keys, or already present on the left are not
// carried over. The first matching right row wins.
func (f *Frame) LeftJoin(right *Frame, on, exclude []string) *Frame {
	skip := make(map[string]bool, len(on)+len(exclude))
	for _, c := range on {
		skip[c] = true
	}
	for _, c := range exclude {
		skip[c] = true
	}

	var carried []string
	for _, c := range right.columns {
		if !skip[c] && !f.Has(c) {
			carried = append(carried, c)
		}
	}

	lookup := make(map[string]int, right.NumRows())
	for r := range right.rows {
		k := joinKey(right, r, on)
		if _, ok := lookup[k]; !ok {
			lookup[k] = r
		}
	}

	out := New(append(f.Columns(), carried...)...)
	for r := range f.rows {
		row := make([]string, len(out.columns))
		copy(row, f.rows[r])
		if rr, ok := lookup[joinKey(f, r, on)]; ok {
			for i, c := range carried {
				row[len(f.columns)+i] = right.Value(rr, c)
			}
		}
		out.rows = append(out.rows, row)
	}
	return out
}

func joinKey(f *Frame, row int, on []string) string {
	parts := make([]string, len(on))
	for i, c := range on {
		parts[i] = f.Value(row, c)
	}
	return strings.Join(parts, "\x1f")
}
