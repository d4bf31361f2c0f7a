// Package core provides the shared types, interfaces, errors, and
// configuration used across the extraction pipeline.
//
// types.go defines the data model that flows through the pipeline:
// PageTableFragment -> NormalizedTable -> AnalyticsResult, plus the
// ExtractionRecord tracked by the record store.
package core

import "time"

// ExtractionMethod identifies how table data was obtained from a page.
type ExtractionMethod string

const (
	// MethodStructural means geometry-based parsing of the PDF text layer.
	MethodStructural ExtractionMethod = "structural"

	// MethodOCR means vision-model extraction from a rasterized page image.
	MethodOCR ExtractionMethod = "ocr"

	// MethodMixed means different pages of one document used different methods.
	MethodMixed ExtractionMethod = "mixed"
)

// RecordStatus is the lifecycle state of an extraction record.
// Transitions: processing -> completed | failed. Both end states are terminal.
type RecordStatus string

const (
	StatusProcessing RecordStatus = "processing"
	StatusCompleted  RecordStatus = "completed"
	StatusFailed     RecordStatus = "failed"
)

// PageTableFragment is the table-shaped result extracted from a single page.
// Headers may be empty for continuation pages. Rows may be ragged; the
// stitcher is responsible for making the final table rectangular.
type PageTableFragment struct {
	// PageIndex is the 0-based index of the source page
	PageIndex int

	// Headers holds the header-candidate strings, possibly empty
	Headers []string

	// Rows holds the data rows, each an ordered sequence of cell strings
	Rows [][]string

	// Method tags which extractor produced this fragment
	Method ExtractionMethod

	// ColumnsStable is true when every row has the same cell count
	ColumnsStable bool

	// Note carries a page-level diagnostic (e.g. an OCR failure reason)
	Note string
}

// Empty reports whether the fragment carries no usable table data.
func (f *PageTableFragment) Empty() bool {
	return f == nil || (len(f.Headers) == 0 && len(f.Rows) == 0)
}

// NonEmptyCells counts cells with non-blank content across all rows.
// Used by the pass-scoring heuristic when comparing extraction passes.
func (f *PageTableFragment) NonEmptyCells() int {
	if f == nil {
		return 0
	}
	n := 0
	for _, row := range f.Rows {
		for _, cell := range row {
			if cell != "" {
				n++
			}
		}
	}
	return n
}

// TableMetadata summarizes a NormalizedTable for external consumers.
type TableMetadata struct {
	TotalRows        int              `json:"totalRows"`
	TotalColumns     int              `json:"totalColumns"`
	ExtractionMethod ExtractionMethod `json:"extractionMethod"`
}

// NormalizedTable is the single logical table for a document after
// stitching and normalization.
//
// Invariant: every row has exactly len(Headers) cells, and header labels
// are pairwise distinct.
type NormalizedTable struct {
	Headers  []string      `json:"headers"`
	Rows     [][]string    `json:"rows"`
	Metadata TableMetadata `json:"metadata"`
}

// VisitCount pairs a visit column label with its performed-assessment count.
type VisitCount struct {
	Visit string `json:"visit"`
	Count int    `json:"count"`
}

// PeriodGroup maps a study period label to the visits belonging to it.
type PeriodGroup struct {
	Period string   `json:"period"`
	Visits []string `json:"visits"`
}

// VisitAssessments lists the assessments performed at one visit,
// preserving source row order.
type VisitAssessments struct {
	Visit       string   `json:"visit"`
	Assessments []string `json:"assessments"`
	Count       int      `json:"count"`
}

// MeaningOverride maps an annotation key (footnote marker) appearing in
// table cells to its legend text.
type MeaningOverride struct {
	Key         string `json:"key"`
	Description string `json:"description"`
}

// AnalyticsResult is the derived, read-only summary of a NormalizedTable.
// It is created once per extraction and never mutated afterward.
type AnalyticsResult struct {
	VisitFrequency     []VisitCount       `json:"visitFrequency"`
	PeriodAnalysis     []PeriodGroup      `json:"periodAnalysis"`
	AssessmentsByVisit []VisitAssessments `json:"assessmentsByVisit"`
	MeaningOverrides   []MeaningOverride  `json:"meaningOverrides"`
	TotalVisits        int                `json:"totalVisits"`
	TotalAssessments   int                `json:"totalAssessments"`
}

// ExtractionRecord is the externally visible unit of work. It is created
// in processing state by the record store before the pipeline starts and
// finalized exactly once by the orchestrator.
type ExtractionRecord struct {
	ID           string           `json:"id"`
	Filename     string           `json:"filename"`
	UploadedAt   time.Time        `json:"uploadedAt"`
	Status       RecordStatus     `json:"status"`
	Table        *NormalizedTable `json:"extractedData,omitempty"`
	Analytics    *AnalyticsResult `json:"analyticsData,omitempty"`
	ErrorMessage string           `json:"errorMessage,omitempty"`

	// Diagnostics holds non-fatal notes recorded during the run
	// (stitch boundary decisions, per-page OCR failures, dropped rows).
	Diagnostics []string `json:"diagnostics,omitempty"`
}

// StoreStats summarizes the record store contents for dashboard-style
// consumers in the external layer.
type StoreStats struct {
	Total       int     `json:"totalExtractions"`
	Completed   int     `json:"successfulExtractions"`
	Failed      int     `json:"failedExtractions"`
	Processing  int     `json:"processingExtractions"`
	SuccessRate float64 `json:"successRate"`
}
