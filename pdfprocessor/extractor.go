// extractor.go implements the structural table extractor. Both detection
// passes run unconditionally per page (they are cheap relative to OCR);
// the scoring policy picks the winner.
package pdfprocessor

import (
	"strings"

	"go.uber.org/zap"

	"go_extractor/core"
	"go_extractor/logging"
)

// ExtractorConfig holds the geometry tolerances for the detection passes.
type ExtractorConfig struct {
	// LineTolerance buckets characters into the same text line (points)
	LineTolerance float64

	// SnapTolerance merges token start positions into one lattice edge (points)
	SnapTolerance float64

	// EdgeSupport is the fraction of lines that must share a lattice edge
	EdgeSupport float64

	// MinGapWidth is the narrowest whitespace channel the stream pass
	// accepts as a column separator (points)
	MinGapWidth float64
}

// DefaultExtractorConfig returns sensible default tolerances.
func DefaultExtractorConfig() ExtractorConfig {
	return ExtractorConfig{
		LineTolerance: defaultLineTolerance,
		SnapTolerance: defaultSnapTolerance,
		EdgeSupport:   defaultEdgeSupport,
		MinGapWidth:   defaultMinGapWidth,
	}
}

// Extractor extracts table fragments from vector PDF pages.
//
// Thread-Safety: safe for concurrent use; each ExtractPage call is
// independent.
type Extractor struct {
	config ExtractorConfig
	policy core.ExtractionPolicy
	logger *logging.Logger
}

// NewExtractor creates a structural Extractor.
func NewExtractor(policy core.ExtractionPolicy, logger *logging.Logger, config ExtractorConfig) *Extractor {
	return &Extractor{
		config: config,
		policy: policy,
		logger: logger.Named("structural"),
	}
}

// ExtractPage runs both detection passes on the page at the given 0-based
// index and returns the higher-scoring fragment. A page with no text
// layer, no detectable table, or a single-column result (the signature of
// failed structural parsing) returns core.ErrPageExtraction so the caller
// can re-dispatch the page to OCR.
func (e *Extractor) ExtractPage(doc *Document, pageIndex int) (*core.PageTableFragment, error) {
	texts, err := doc.pageContent(pageIndex)
	if err != nil {
		return nil, core.NewExtractionError(core.ErrPageExtraction,
			"page has no readable text layer", err)
	}

	lines := assembleLines(texts, e.config.LineTolerance)
	if len(lines) == 0 {
		return nil, core.NewExtractionError(core.ErrPageExtraction,
			"page has no text content", nil)
	}

	lattice := e.fragmentFromGrid(latticePass(lines, e.config.SnapTolerance, e.config.EdgeSupport), pageIndex)
	stream := e.fragmentFromGrid(streamPass(lines, e.config.MinGapWidth), pageIndex)

	latticeScore := e.policy.Score(lattice)
	streamScore := e.policy.Score(stream)

	// Ties keep the lattice result: aligned edges are the stronger
	// structural signal.
	winner := lattice
	if streamScore > latticeScore {
		winner = stream
	}

	e.logger.Debug("structural passes scored",
		zap.Int("page", pageIndex),
		zap.Float64("lattice_score", latticeScore),
		zap.Float64("stream_score", streamScore))

	if winner.Empty() {
		return nil, core.NewExtractionError(core.ErrPageExtraction,
			"no table detected on page", nil)
	}
	if len(winner.Headers) <= 1 {
		return nil, core.NewExtractionError(core.ErrPageExtraction,
			"structural parsing yielded a single column", nil)
	}
	return winner, nil
}

// fragmentFromGrid shapes a detected cell grid into a PageTableFragment.
// The first grid row is the header candidate; a first row with blank
// cells is a spanning parent row (typically study periods over visit
// columns), and when the row below it is fully labeled the two merge
// into compound "parent | child" headers.
func (e *Extractor) fragmentFromGrid(grid [][]string, pageIndex int) *core.PageTableFragment {
	if len(grid) == 0 {
		return nil
	}

	headers, bodyStart := grid[0], 1
	if len(grid) > 2 && hasBlankCells(grid[0]) && !hasBlankCells(grid[1]) {
		headers = mergeHeaderRows(grid[0], grid[1])
		bodyStart = 2
	}

	fragment := &core.PageTableFragment{
		PageIndex: pageIndex,
		Headers:   headers,
		Rows:      grid[bodyStart:],
		Method:    core.MethodStructural,
	}

	fragment.ColumnsStable = true
	for _, row := range fragment.Rows {
		if len(row) != len(fragment.Headers) {
			fragment.ColumnsStable = false
			break
		}
	}
	return fragment
}

// hasBlankCells reports whether any cell of the row is empty or a null
// marker once trimmed.
func hasBlankCells(row []string) bool {
	for _, cell := range row {
		if headerCellBlank(cell) {
			return true
		}
	}
	return len(row) == 0
}

func headerCellBlank(cell string) bool {
	switch strings.ToLower(strings.TrimSpace(cell)) {
	case "", "none", "nan", "null":
		return true
	}
	return false
}

// mergeHeaderRows joins a spanning parent header row with the child row
// below it, column by column. A column with only one labeled level keeps
// that label alone; a column with both gets "parent | child", the same
// compound form the OCR path produces for nested headers.
func mergeHeaderRows(parent, child []string) []string {
	width := len(child)
	if len(parent) > width {
		width = len(parent)
	}

	merged := make([]string, width)
	for i := 0; i < width; i++ {
		var parts []string
		if i < len(parent) && !headerCellBlank(parent[i]) {
			parts = append(parts, strings.TrimSpace(parent[i]))
		}
		if i < len(child) && !headerCellBlank(child[i]) {
			parts = append(parts, strings.TrimSpace(child[i]))
		}
		merged[i] = strings.Join(parts, " | ")
	}
	return merged
}
