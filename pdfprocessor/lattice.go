// lattice.go implements the strict-grid detection pass. Tables drawn with
// ruled cells put every cell's text at a shared set of left edges, so
// column boundaries show up as token start positions repeated across most
// lines. The pass only accepts edges with strong cross-line support, so
// it stays precise on gridded tables and yields nothing on free text,
// which is the behavior the pass scoring relies on.
package pdfprocessor

import "sort"

const (
	// defaultSnapTolerance merges token start positions into one edge.
	defaultSnapTolerance = 3.0

	// defaultEdgeSupport is the fraction of lines that must share an edge
	// for it to count as a column boundary.
	defaultEdgeSupport = 0.6
)

// edgeCluster is one candidate column edge.
type edgeCluster struct {
	center  float64
	support int // number of distinct lines with a token starting here
}

// latticePass detects a table from grid-aligned token edges. Returns the
// cell grid in reading order, or nil when fewer than two columns are
// supported.
func latticePass(lines []textLine, snapTolerance, edgeSupport float64) [][]string {
	if len(lines) < 2 {
		return nil
	}
	if snapTolerance <= 0 {
		snapTolerance = defaultSnapTolerance
	}
	if edgeSupport <= 0 || edgeSupport > 1 {
		edgeSupport = defaultEdgeSupport
	}

	edges := clusterEdges(lines, snapTolerance)

	minSupport := int(edgeSupport*float64(len(lines)) + 0.5)
	if minSupport < 2 {
		minSupport = 2
	}

	var columns []float64
	for _, edge := range edges {
		if edge.support >= minSupport {
			columns = append(columns, edge.center)
		}
	}
	if len(columns) < 2 {
		return nil
	}
	sort.Float64s(columns)

	grid := make([][]string, 0, len(lines))
	for _, line := range lines {
		row := make([]string, len(columns))
		for _, tok := range line.tokens {
			col := columnForEdge(columns, tok.x0, snapTolerance)
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

// clusterEdges groups token start positions within snapTolerance of each
// other and counts per-line support for each cluster.
func clusterEdges(lines []textLine, snapTolerance float64) []edgeCluster {
	type start struct {
		x    float64
		line int
	}
	var starts []start
	for i, line := range lines {
		for _, tok := range line.tokens {
			starts = append(starts, start{x: tok.x0, line: i})
		}
	}
	if len(starts) == 0 {
		return nil
	}
	sort.Slice(starts, func(i, j int) bool { return starts[i].x < starts[j].x })

	var clusters []edgeCluster
	clusterLines := make(map[int]bool)
	sum, count := 0.0, 0
	flush := func() {
		if count > 0 {
			clusters = append(clusters, edgeCluster{center: sum / float64(count), support: len(clusterLines)})
		}
		clusterLines = make(map[int]bool)
		sum, count = 0, 0
	}

	prev := starts[0].x
	for _, s := range starts {
		if s.x-prev > snapTolerance {
			flush()
		}
		clusterLines[s.line] = true
		sum += s.x
		count++
		prev = s.x
	}
	flush()
	return clusters
}

// columnForEdge maps a token start position to the nearest column at or
// left of it.
func columnForEdge(columns []float64, x, tolerance float64) int {
	col := 0
	for i, edge := range columns {
		if x+tolerance >= edge {
			col = i
		} else {
			break
		}
	}
	return col
}
