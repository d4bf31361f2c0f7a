package pdfprocessor

import (
	"reflect"
	"testing"
)

// tableLines builds textLines with one token per cell at fixed column
// start positions.
func tableLines(rows [][]string, columnStarts []float64) []textLine {
	lines := make([]textLine, 0, len(rows))
	y := 700.0
	for _, row := range rows {
		line := textLine{y: y}
		for col, cell := range row {
			if cell == "" {
				continue
			}
			x := columnStarts[col]
			line.tokens = append(line.tokens, token{
				x0:   x,
				x1:   x + float64(len(cell))*5,
				y:    y,
				text: cell,
			})
		}
		lines = append(lines, line)
		y -= 20
	}
	return lines
}

func TestLatticePassAlignedColumns(t *testing.T) {
	lines := tableLines([][]string{
		{"Procedure", "Visit 1", "Visit 2"},
		{"ECG", "X", "X"},
		{"Labs", "X", ""},
	}, []float64{100, 250, 350})

	grid := latticePass(lines, defaultSnapTolerance, defaultEdgeSupport)

	want := [][]string{
		{"Procedure", "Visit 1", "Visit 2"},
		{"ECG", "X", "X"},
		{"Labs", "X", ""},
	}
	if !reflect.DeepEqual(grid, want) {
		t.Errorf("latticePass() = %v, want %v", grid, want)
	}
}

func TestLatticePassToleratesJitter(t *testing.T) {
	lines := tableLines([][]string{
		{"A", "B"},
		{"C", "D"},
		{"E", "F"},
	}, []float64{100, 250})
	// Shift one cell within the snap tolerance.
	lines[1].tokens[1].x0 += 2.0

	grid := latticePass(lines, defaultSnapTolerance, defaultEdgeSupport)
	if len(grid) != 3 || len(grid[0]) != 2 {
		t.Fatalf("grid = %v, want 3x2", grid)
	}
	if grid[1][1] != "D" {
		t.Errorf("jittered cell = %q, want D", grid[1][1])
	}
}

func TestLatticePassRejectsUnstructuredText(t *testing.T) {
	// Paragraph-like text: every line starts somewhere else.
	lines := []textLine{
		{y: 700, tokens: []token{{x0: 100, x1: 180, text: "This"}}},
		{y: 680, tokens: []token{{x0: 131, x1: 200, text: "protocol"}}},
		{y: 660, tokens: []token{{x0: 162, x1: 240, text: "describes"}}},
		{y: 640, tokens: []token{{x0: 193, x1: 260, text: "visits"}}},
	}

	if grid := latticePass(lines, defaultSnapTolerance, defaultEdgeSupport); grid != nil {
		t.Errorf("unaligned text should yield nil, got %v", grid)
	}
}

func TestLatticePassSingleLine(t *testing.T) {
	lines := tableLines([][]string{{"A", "B", "C"}}, []float64{100, 200, 300})

	if grid := latticePass(lines, defaultSnapTolerance, defaultEdgeSupport); grid != nil {
		t.Errorf("a single line is not a table, got %v", grid)
	}
}
