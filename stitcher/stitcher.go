// Package stitcher merges per-page table fragments into one logical
// table. Multi-page schedule matrices repeat their header on every page
// and continue rows across page breaks; the stitcher recognizes both and
// keeps the body in page order.
package stitcher

import (
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"go_extractor/core"
	"go_extractor/logging"
)

// nullLikeMarkers are the cell values treated as absent data when
// deciding whether a row carries any information. Blank cells are not in
// this set: sparse rows are normal in a schedule matrix.
var nullLikeMarkers = map[string]bool{
	"none": true,
	"null": true,
	"nan":  true,
}

// maxNullFraction is the null-like cell fraction at or above which a row
// is dropped as noise.
const maxNullFraction = 0.5

// minLabelMatchFraction is the fraction of positionally matching header
// labels below which a same-width header counts as a new table rather
// than a repeat.
const minLabelMatchFraction = 0.5

// Result is the stitched table before normalization. Rows are rectangular
// against Headers per the padding rule; Diagnostics records non-fatal
// decisions made along the way.
type Result struct {
	Headers     []string
	Rows        [][]string
	Diagnostics []string
}

// candidate is one logical table accumulated during stitching.
type candidate struct {
	headers   []string
	rows      [][]string
	firstPage int
}

// Stitcher assembles document tables from page fragments.
//
// Thread-Safety: safe for concurrent use; Stitch carries no state between
// calls.
type Stitcher struct {
	logger *logging.Logger
}

// New creates a Stitcher.
func New(logger *logging.Logger) *Stitcher {
	return &Stitcher{logger: logger.Named("stitcher")}
}

// Stitch merges the fragments of one document, in page order, into a
// single table.
//
// The first non-empty header establishes the canonical header. Later
// fragments whose header matches it (case and whitespace insensitive)
// are repeats; fragments without a header are continuations. A header
// that differs materially (different width, or most labels changed)
// starts a separate candidate table, and the candidate with the most
// rows wins. Repeated header rows inside the body and rows that are
// mostly null markers are dropped; everything else is padded or
// truncated to the header width, never discarded.
func (s *Stitcher) Stitch(fragments []*core.PageTableFragment) *Result {
	ordered := make([]*core.PageTableFragment, 0, len(fragments))
	for _, f := range fragments {
		if !f.Empty() {
			ordered = append(ordered, f)
		}
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].PageIndex < ordered[j].PageIndex
	})

	result := &Result{}
	if len(ordered) == 0 {
		return result
	}

	var candidates []*candidate
	current := &candidate{firstPage: ordered[0].PageIndex}

	for _, f := range ordered {
		switch {
		case len(f.Headers) == 0:
			// Continuation page: rows join the running table.
			current.rows = append(current.rows, f.Rows...)

		case len(current.headers) == 0:
			current.headers = f.Headers
			current.rows = append(current.rows, f.Rows...)

		case headersMatch(current.headers, f.Headers):
			current.rows = append(current.rows, f.Rows...)

		default:
			// Materially different header: a new logical table starts.
			result.Diagnostics = append(result.Diagnostics, fmt.Sprintf(
				"page %d header differs from page %d; treating as a separate table",
				f.PageIndex+1, current.firstPage+1))
			candidates = append(candidates, current)
			current = &candidate{
				headers:   f.Headers,
				rows:      f.Rows,
				firstPage: f.PageIndex,
			}
		}
	}
	candidates = append(candidates, current)

	winner := candidates[0]
	for _, c := range candidates[1:] {
		if len(c.rows) > len(winner.rows) {
			winner = c
		}
	}
	if len(candidates) > 1 {
		result.Diagnostics = append(result.Diagnostics, fmt.Sprintf(
			"kept the table starting on page %d (%d rows) out of %d candidates",
			winner.firstPage+1, len(winner.rows), len(candidates)))
		s.logger.Warn("document contained competing tables",
			zap.Int("candidates", len(candidates)),
			zap.Int("kept_rows", len(winner.rows)))
	}

	result.Headers = winner.headers
	result.Rows = s.cleanBody(winner, result)
	return result
}

// cleanBody drops repeated header rows and mostly-null rows from the
// winning candidate, then makes every surviving row rectangular.
func (s *Stitcher) cleanBody(c *candidate, result *Result) [][]string {
	width := len(c.headers)
	if width == 0 {
		for _, row := range c.rows {
			if len(row) > width {
				width = len(row)
			}
		}
	}

	droppedNull := 0
	rows := make([][]string, 0, len(c.rows))
	for _, row := range c.rows {
		if len(c.headers) > 0 && rowEqualsHeader(row, c.headers) {
			continue
		}
		if mostlyNull(row) {
			droppedNull++
			continue
		}

		fitted := make([]string, width)
		copy(fitted, row)
		rows = append(rows, fitted)
	}

	if droppedNull > 0 {
		result.Diagnostics = append(result.Diagnostics, fmt.Sprintf(
			"dropped %d mostly-empty rows", droppedNull))
	}
	return rows
}

// normalizeLabel lowers a label and collapses its whitespace for
// comparison.
func normalizeLabel(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// headersMatch reports whether two headers describe the same table: same
// width and at least half the labels equal position by position.
func headersMatch(baseline, other []string) bool {
	if len(baseline) != len(other) {
		return false
	}
	if len(baseline) == 0 {
		return true
	}
	matches := 0
	for i := range baseline {
		if normalizeLabel(baseline[i]) == normalizeLabel(other[i]) {
			matches++
		}
	}
	return float64(matches) >= minLabelMatchFraction*float64(len(baseline))
}

// rowEqualsHeader reports whether a body row is a repeat of the header.
func rowEqualsHeader(row, headers []string) bool {
	if len(row) != len(headers) {
		return false
	}
	for i := range row {
		if normalizeLabel(row[i]) != normalizeLabel(headers[i]) {
			return false
		}
	}
	return true
}

// mostlyNull reports whether at least half of a row's cells are explicit
// null markers.
func mostlyNull(row []string) bool {
	if len(row) == 0 {
		return false
	}
	nulls := 0
	for _, cell := range row {
		if nullLikeMarkers[normalizeLabel(cell)] {
			nulls++
		}
	}
	return float64(nulls) >= maxNullFraction*float64(len(row))
}
