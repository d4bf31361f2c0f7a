// legend.go extracts meaning overrides: footnote markers recurring in
// table cells paired with their definitions from the document's trailing
// legend text. Extraction is best-effort; a document without a legend
// yields an empty list, never an error.
package analytics

import (
	"regexp"
	"sort"
	"strings"

	"go_extractor/core"
)

// minMarkerOccurrences is how often a candidate marker must recur in data
// cells before it counts as an annotation key rather than a stray value.
const minMarkerOccurrences = 2

// legendLinePattern matches lines like "a: definition", "b) definition",
// or "● definition" in the trailing document text.
var legendLinePattern = regexp.MustCompile(`^\s*([A-Za-z]|[^\sA-Za-z0-9])[\s:．.)\-–]+(.{4,})$`)

// markerCellPattern matches a cell holding only an annotation: a bare
// marker like "a" or "●", or a checkmark with markers like "X a,b".
var markerCellPattern = regexp.MustCompile(`^(?:[Xx✓●]\s+)?([A-Za-z](?:\s*,\s*[A-Za-z])*)$|^([^\sA-Za-z0-9])$`)

// extractMeaningOverrides finds annotation keys in the visit cells and
// resolves them against the legend text.
func extractMeaningOverrides(table *core.NormalizedTable, visitCols []int, legendText string) []core.MeaningOverride {
	counts := make(map[string]int)
	for _, row := range table.Rows {
		for _, col := range visitCols {
			for _, key := range markerKeys(row[col]) {
				counts[key]++
			}
		}
	}

	keys := make([]string, 0, len(counts))
	for key, n := range counts {
		if n >= minMarkerOccurrences {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	definitions := parseLegend(legendText)
	overrides := []core.MeaningOverride{}
	for _, key := range keys {
		desc, ok := definitions[strings.ToLower(key)]
		if !ok {
			continue
		}
		overrides = append(overrides, core.MeaningOverride{
			Key:         key,
			Description: desc,
		})
	}
	return overrides
}

// markerKeys extracts annotation keys from one cell value, or nothing if
// the cell is ordinary data.
func markerKeys(cell string) []string {
	cell = strings.TrimSpace(cell)
	if cell == "" || strings.EqualFold(cell, "x") {
		return nil
	}
	m := markerCellPattern.FindStringSubmatch(cell)
	if m == nil {
		return nil
	}
	if m[2] != "" {
		return []string{m[2]}
	}
	parts := strings.Split(m[1], ",")
	keys := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			keys = append(keys, p)
		}
	}
	return keys
}

// parseLegend reads "marker: definition" lines out of unstructured text.
// Keys are lowercased for case-insensitive lookup.
func parseLegend(text string) map[string]string {
	definitions := make(map[string]string)
	for _, line := range strings.Split(text, "\n") {
		m := legendLinePattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		key := strings.ToLower(m[1])
		if _, exists := definitions[key]; !exists {
			definitions[key] = strings.TrimSpace(m[2])
		}
	}
	return definitions
}
