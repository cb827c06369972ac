// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package frame

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ReadFile loads a CSV file into a frame. Government exports arrive in a
// mix of UTF-8 and Latin-1 with either comma or semicolon delimiters, so
// the reader decodes Latin-1 when the bytes are not valid UTF-8 and
// sniffs the delimiter from the header line. Short rows are padded with
// empty cells.
func ReadFile(path string) (*Frame, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	data = bytes.TrimPrefix(data, utf8BOM)

	if !utf8.Valid(data) {
		decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(data)
		if err != nil {
			return nil, fmt.Errorf("decoding %s as Latin-1: %w", path, err)
		}
		data = decoded
	}

	r := csv.NewReader(bytes.NewReader(data))
	r.Comma = sniffDelimiter(data)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if len(records) == 0 {
		return New(), nil
	}

	header := records[0]
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}
	f := New(header...)
	for _, rec := range records[1:] {
		if len(rec) > len(header) {
			rec = rec[:len(header)]
		}
		if err := f.AppendRow(rec); err != nil {
			return nil, fmt.Errorf("loading %s: %w", path, err)
		}
	}
	return f, nil
}

// sniffDelimiter picks ';' when the header line carries more semicolons
// than commas, the usual shape of FR-locale exports.
func sniffDelimiter(data []byte) rune {
	line := data
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		line = data[:i]
	}
	if bytes.Count(line, []byte{';'}) > bytes.Count(line, []byte{','}) {
		return ';'
	}
	return ','
}

// WriteOptions configures CSV output.
type WriteOptions struct {
	// BOM prefixes the file with a UTF-8 byte-order mark so spreadsheet
	// tools pick the right encoding for accented commune names.
	BOM bool
}

// WriteFile writes the frame as UTF-8 CSV, creating parent directories.
// Output goes to a temp file first and is renamed on success so a failed
// run never leaves a truncated dataset behind.
func WriteFile(f *Frame, path string, opts WriteOptions) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".frame-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if opts.BOM {
		if _, err := tmp.Write(utf8BOM); err != nil {
			tmp.Close()
			os.Remove(tmpPath)
			return fmt.Errorf("writing BOM: %w", err)
		}
	}

	w := csv.NewWriter(tmp)
	writeErr := w.Write(f.columns)
	if writeErr == nil {
		for _, row := range f.rows {
			if writeErr = w.Write(row); writeErr != nil {
				break
			}
		}
	}
	w.Flush()
	if writeErr == nil {
		writeErr = w.Error()
	}

	closeErr := tmp.Close()
	if writeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("writing CSV: %w", writeErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", closeErr)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}
