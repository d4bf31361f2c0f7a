// stream.go implements the whitespace detection pass. Tables without
// ruled cells still leave vertical channels of whitespace between
// columns; merging every token's horizontal span across all lines and
// looking for uncovered gaps finds those channels.
package pdfprocessor

import "sort"

// defaultMinGapWidth is the narrowest horizontal channel, in points,
// accepted as a column separator. Narrower gaps are treated as ordinary
// word spacing.
const defaultMinGapWidth = 6.0

// streamPass detects a table from whitespace channels between token
// spans. Returns the cell grid in reading order, or nil when fewer than
// two columns emerge.
func streamPass(lines []textLine, minGapWidth float64) [][]string {
	if len(lines) < 2 {
		return nil
	}
	if minGapWidth <= 0 {
		minGapWidth = defaultMinGapWidth
	}

	type span struct{ x0, x1 float64 }
	var spans []span
	for _, line := range lines {
		for _, tok := range line.tokens {
			spans = append(spans, span{tok.x0, tok.x1})
		}
	}
	if len(spans) == 0 {
		return nil
	}
	sort.Slice(spans, func(i, j int) bool { return spans[i].x0 < spans[j].x0 })

	// Merge overlapping spans into covered intervals.
	merged := []span{spans[0]}
	for _, s := range spans[1:] {
		last := &merged[len(merged)-1]
		if s.x0 <= last.x1 {
			if s.x1 > last.x1 {
				last.x1 = s.x1
			}
		} else {
			merged = append(merged, s)
		}
	}

	// Column separators sit at the midpoints of wide-enough gaps.
	var separators []float64
	for i := 1; i < len(merged); i++ {
		gap := merged[i].x0 - merged[i-1].x1
		if gap >= minGapWidth {
			separators = append(separators, merged[i-1].x1+gap/2)
		}
	}
	if len(separators) == 0 {
		return nil
	}

	columns := len(separators) + 1
	grid := make([][]string, 0, len(lines))
	for _, line := range lines {
		row := make([]string, columns)
		for _, tok := range line.tokens {
			col := sort.SearchFloat64s(separators, tok.mid())
			if row[col] == "" {
				row[col] = tok.text
			} else {
				row[col] += " " + tok.text
			}
		}
		grid = append(grid, row)
	}
	return grid
}
