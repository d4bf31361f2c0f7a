// Package analytics derives the visit-level summary from a normalized
// schedule table: which columns are visits, how many assessments each
// visit performs, which study period each visit belongs to, and what the
// footnote markers scattered through the cells mean.
package analytics

import (
	"regexp"
	"strings"

	"go_extractor/core"
)

// visitPattern matches the visit-naming vocabulary of clinical schedule
// headers: visit codes, study days and weeks, and the named milestones.
var visitPattern = regexp.MustCompile(
	`(?i)\bv\d+|visit\s*\d+|day\s*-?\d+|week\s*\d+|random|screen|baseline|follow[-_ ]?up`)

// periodPattern matches period vocabulary when it appears inside a visit
// header without a " | " prefix.
var periodPattern = regexp.MustCompile(
	`(?i)screening|run[-_ ]?in|treatment|follow[-_ ]?up|washout|extension`)

// unspecifiedPeriod groups visits with no recognizable period marker.
// They are reported, never dropped.
const unspecifiedPeriod = "Unspecified"

// Engine computes AnalyticsResults.
//
// Thread-Safety: stateless; safe for concurrent use.
type Engine struct{}

// NewEngine creates an analytics Engine.
func NewEngine() *Engine {
	return &Engine{}
}

// Analyze summarizes a normalized table. The first column is the
// assessment label column; every other column whose header matches the
// visit vocabulary is a visit. legendText is the unstructured trailing
// document text searched for footnote definitions; it may be empty.
func (e *Engine) Analyze(table *core.NormalizedTable, legendText string) *core.AnalyticsResult {
	result := &core.AnalyticsResult{
		VisitFrequency:     []core.VisitCount{},
		PeriodAnalysis:     []core.PeriodGroup{},
		AssessmentsByVisit: []core.VisitAssessments{},
		MeaningOverrides:   []core.MeaningOverride{},
	}
	if table == nil || len(table.Headers) == 0 {
		return result
	}

	visitCols := visitColumns(table.Headers)
	performed := make(map[string]bool) // assessment labels with >=1 non-empty visit cell

	for _, col := range visitCols {
		label := visitLabel(table.Headers[col])
		count := 0
		assessments := []string{}
		for _, row := range table.Rows {
			if row[col] == "" {
				continue
			}
			count++
			assessment := row[0]
			if assessment != "" {
				assessments = append(assessments, assessment)
				performed[assessment] = true
			}
		}
		result.VisitFrequency = append(result.VisitFrequency, core.VisitCount{
			Visit: label,
			Count: count,
		})
		result.AssessmentsByVisit = append(result.AssessmentsByVisit, core.VisitAssessments{
			Visit:       label,
			Assessments: assessments,
			Count:       len(assessments),
		})
	}

	result.PeriodAnalysis = groupPeriods(table.Headers, visitCols)
	result.MeaningOverrides = extractMeaningOverrides(table, visitCols, legendText)
	result.TotalVisits = len(result.VisitFrequency)
	result.TotalAssessments = len(performed)
	return result
}

// visitColumns returns the indexes of headers matching the visit
// vocabulary. The first column is always the assessment label column and
// is never a visit.
func visitColumns(headers []string) []int {
	cols := make([]int, 0, len(headers))
	for i := 1; i < len(headers); i++ {
		if visitPattern.MatchString(headers[i]) {
			cols = append(cols, i)
		}
	}
	return cols
}

// visitLabel strips a " | "-joined period prefix from a flattened
// multi-level header, keeping the visit part.
func visitLabel(header string) string {
	if idx := strings.LastIndex(header, " | "); idx >= 0 {
		return strings.TrimSpace(header[idx+3:])
	}
	return header
}

// visitPeriod derives the period a visit header belongs to: the " | "
// prefix of a flattened multi-level header, or a period keyword embedded
// in the label itself.
func visitPeriod(header string) string {
	if idx := strings.Index(header, " | "); idx >= 0 {
		if prefix := strings.TrimSpace(header[:idx]); prefix != "" {
			return prefix
		}
	}
	if m := periodPattern.FindString(visitLabel(header)); m != "" {
		return capitalize(m)
	}
	return unspecifiedPeriod
}

// capitalize upper-cases the first letter of a lowered keyword match.
func capitalize(s string) string {
	s = strings.ToLower(s)
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// groupPeriods buckets visit columns by period, preserving first-seen
// period order and column order within each period.
func groupPeriods(headers []string, visitCols []int) []core.PeriodGroup {
	groups := []core.PeriodGroup{}
	index := make(map[string]int)
	for _, col := range visitCols {
		period := visitPeriod(headers[col])
		i, ok := index[period]
		if !ok {
			i = len(groups)
			index[period] = i
			groups = append(groups, core.PeriodGroup{Period: period})
		}
		groups[i].Visits = append(groups[i].Visits, visitLabel(headers[col]))
	}
	return groups
}
