// Package normalizer turns a stitched table into the final
// NormalizedTable: cleaned headers, canonical empty cells, no dead
// columns, and the rectangularity invariant intact.
package normalizer

import (
	"fmt"
	"strings"

	"go_extractor/core"
	"go_extractor/stitcher"
)

// nullMarkers are the cell values canonicalized to the empty string.
var nullMarkers = map[string]bool{
	"":     true,
	"n/a":  true,
	"na":   true,
	"-":    true,
	"--":   true,
	"nan":  true,
	"none": true,
	"null": true,
}

// Normalizer cleans stitched tables.
//
// Thread-Safety: stateless; safe for concurrent use.
type Normalizer struct{}

// New creates a Normalizer.
func New() *Normalizer {
	return &Normalizer{}
}

// Normalize applies the cleaning passes in order: whitespace collapse,
// empty-header backfill, header de-duplication, null canonicalization,
// trailing empty row removal, and empty column removal. The result is
// rectangular: every row has exactly len(Headers) cells.
func (n *Normalizer) Normalize(stitched *stitcher.Result, method core.ExtractionMethod) *core.NormalizedTable {
	headers := cleanStrings(stitched.Headers)
	rows := make([][]string, 0, len(stitched.Rows))
	for _, row := range stitched.Rows {
		rows = append(rows, cleanStrings(row))
	}

	// A headerless table (every page was a continuation) still gets
	// positional names so downstream consumers can key by column.
	if len(headers) == 0 && len(rows) > 0 {
		width := 0
		for _, row := range rows {
			if len(row) > width {
				width = len(row)
			}
		}
		headers = make([]string, width)
	}

	headers = backfillHeaders(headers)
	headers = dedupeHeaders(headers)

	rows = fitRows(rows, len(headers))
	rows = canonicalizeNulls(rows)
	rows = dropTrailingEmptyRows(rows)
	headers, rows = dropEmptyColumns(headers, rows)

	return &core.NormalizedTable{
		Headers: headers,
		Rows:    rows,
		Metadata: core.TableMetadata{
			TotalRows:        len(rows),
			TotalColumns:     len(headers),
			ExtractionMethod: method,
		},
	}
}

// cleanStrings trims each string and collapses internal whitespace runs.
func cleanStrings(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.Join(strings.Fields(s), " ")
	}
	return out
}

// backfillHeaders fills blank header cells from the previous non-blank
// label. Spanning parent headers leave blank continuation cells in
// clinical matrices. Leading blanks, with nothing to inherit, get a
// positional name.
func backfillHeaders(headers []string) []string {
	out := make([]string, len(headers))
	last := ""
	for i, h := range headers {
		if h == "" || nullMarkers[strings.ToLower(h)] {
			if last != "" {
				out[i] = last
			} else {
				out[i] = fmt.Sprintf("Column %d", i+1)
			}
			continue
		}
		out[i] = h
		last = h
	}
	return out
}

// dedupeHeaders disambiguates repeated labels with " (2)", " (3)"
// suffixes, comparing case-insensitively but preserving original casing.
func dedupeHeaders(headers []string) []string {
	out := make([]string, len(headers))
	seen := make(map[string]int, len(headers))
	for i, h := range headers {
		key := strings.ToLower(h)
		seen[key]++
		if seen[key] == 1 {
			out[i] = h
			continue
		}
		label := fmt.Sprintf("%s (%d)", h, seen[key])
		// The suffixed label could itself collide with a real header.
		for seen[strings.ToLower(label)] > 0 {
			seen[key]++
			label = fmt.Sprintf("%s (%d)", h, seen[key])
		}
		seen[strings.ToLower(label)] = 1
		out[i] = label
	}
	return out
}

// fitRows pads or truncates every row to the given width.
func fitRows(rows [][]string, width int) [][]string {
	out := make([][]string, len(rows))
	for i, row := range rows {
		fitted := make([]string, width)
		copy(fitted, row)
		out[i] = fitted
	}
	return out
}

// canonicalizeNulls replaces recognized null markers with the empty
// string.
func canonicalizeNulls(rows [][]string) [][]string {
	for _, row := range rows {
		for i, cell := range row {
			if nullMarkers[strings.ToLower(cell)] {
				row[i] = ""
			}
		}
	}
	return rows
}

// dropTrailingEmptyRows removes fully-empty rows from the end of the
// body. Page boundaries commonly leave them behind.
func dropTrailingEmptyRows(rows [][]string) [][]string {
	end := len(rows)
	for end > 0 && rowEmpty(rows[end-1]) {
		end--
	}
	return rows[:end]
}

// dropEmptyColumns removes columns whose every cell is empty, keeping
// the header and all rows aligned.
func dropEmptyColumns(headers []string, rows [][]string) ([]string, [][]string) {
	if len(rows) == 0 {
		return headers, rows
	}

	keep := make([]int, 0, len(headers))
	for col := range headers {
		for _, row := range rows {
			if row[col] != "" {
				keep = append(keep, col)
				break
			}
		}
	}
	if len(keep) == len(headers) {
		return headers, rows
	}

	newHeaders := make([]string, len(keep))
	for i, col := range keep {
		newHeaders[i] = headers[col]
	}
	newRows := make([][]string, len(rows))
	for r, row := range rows {
		newRow := make([]string, len(keep))
		for i, col := range keep {
			newRow[i] = row[col]
		}
		newRows[r] = newRow
	}
	return newHeaders, newRows
}

func rowEmpty(row []string) bool {
	for _, cell := range row {
		if cell != "" {
			return false
		}
	}
	return true
}
