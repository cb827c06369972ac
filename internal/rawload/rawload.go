// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package rawload discovers and loads the raw CSV inputs of a pipeline
// run. Sources are matched by filename convention in a single directory:
// per-commune election detail files, a master election fallback, the
// socio-economic indicator file, and the commune and nuance reference
// files.
package rawload

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pdiddy/election-engine/internal/frame"
)

const (
	perCommuneSuffix = "_par_commune.csv"
	masterPrefix     = "elections_master"
	indicatorPrefix  = "indicateurs_"
	communesPrefix   = "communes_"
	nuancesPrefix    = "nuances_"
)

// Set holds the raw frames of one run. Elections is never nil on a
// successful load; the others may be nil when no matching file exists.
type Set struct {
	Elections  *frame.Frame
	Indicators *frame.Frame
	Communes   *frame.Frame
	Nuances    *frame.Frame
}

// Load scans dir and reads the raw inputs. Per-commune detail files take
// priority over the master election file because they carry the granular
// tallies; all of them are concatenated in filename order so runs are
// reproducible. Missing election data is an error; missing reference
// files are reported on w and left nil.
func Load(dir string, w io.Writer) (*Set, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading raw directory %s: %w", dir, err)
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(strings.ToLower(e.Name()), ".csv") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	set := &Set{}

	var parts []*frame.Frame
	for _, name := range names {
		if strings.Contains(name, perCommuneSuffix) {
			f, err := frame.ReadFile(filepath.Join(dir, name))
			if err != nil {
				return nil, err
			}
			fmt.Fprintf(w, "loaded  %s (%d rows)\n", name, f.NumRows())
			parts = append(parts, f)
		}
	}

	switch {
	case len(parts) > 0:
		set.Elections = frame.Concat(parts...)
	default:
		name := firstMatch(names, func(n string) bool {
			return strings.HasPrefix(strings.ToLower(n), masterPrefix)
		})
		if name == "" {
			return nil, fmt.Errorf("no election data in %s: need *%s files or an %s*.csv fallback", dir, perCommuneSuffix, masterPrefix)
		}
		f, err := frame.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		fmt.Fprintf(w, "loaded  %s (%d rows, master fallback)\n", name, f.NumRows())
		set.Elections = f
	}

	set.Indicators = loadOptional(dir, names, w, "indicators", func(n string) bool {
		return strings.HasPrefix(strings.ToLower(n), indicatorPrefix)
	}, func(n string) bool {
		return strings.Contains(strings.ToLower(n), "indicateur")
	})

	set.Communes = loadOptional(dir, names, w, "communes", func(n string) bool {
		return strings.HasPrefix(strings.ToLower(n), communesPrefix)
	}, nil)

	set.Nuances = loadOptional(dir, names, w, "nuances", func(n string) bool {
		return strings.HasPrefix(strings.ToLower(n), nuancesPrefix)
	}, nil)

	return set, nil
}

// loadOptional reads the first file matching primary, falling back to the
// first matching fallback. A missing file is reported, not an error.
func loadOptional(dir string, names []string, w io.Writer, kind string, primary, fallback func(string) bool) *frame.Frame {
	name := firstMatch(names, primary)
	if name == "" && fallback != nil {
		name = firstMatch(names, fallback)
	}
	if name == "" {
		fmt.Fprintf(w, "missing %s file, continuing without\n", kind)
		return nil
	}
	f, err := frame.ReadFile(filepath.Join(dir, name))
	if err != nil {
		fmt.Fprintf(w, "warning: could not read %s file %s: %v\n", kind, name, err)
		return nil
	}
	fmt.Fprintf(w, "loaded  %s (%d rows)\n", name, f.NumRows())
	return f
}

func firstMatch(names []string, match func(string) bool) string {
	for _, n := range names {
		if match(n) {
			return n
		}
	}
	return ""
}
