// policy.go defines the tunable extraction policy: the weights used to
// pick a winning structural pass per page and the quality filters applied
// to OCR fragments. The lattice-vs-stream tie-break is a heuristic, not a
// fixed law, so it lives in data rather than in control flow.
package core

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ScoringWeights controls how competing structural passes are compared.
//
// A fragment's score is:
//
//	score = nonEmptyCells*NonEmptyCell
//	      + stableBonus (StableColumns if every row has the same cell count)
//	      - raggedRows*RaggedRowPenalty
//
// Higher score wins; ties keep the lattice pass since drawn grid lines are
// the stronger structural signal.
type ScoringWeights struct {
	NonEmptyCell     float64 `yaml:"non_empty_cell"`
	StableColumns    float64 `yaml:"stable_columns"`
	RaggedRowPenalty float64 `yaml:"ragged_row_penalty"`
}

// ExtractionPolicy bundles the scoring weights with the OCR fragment
// quality filters.
type ExtractionPolicy struct {
	Weights ScoringWeights `yaml:"weights"`

	// MinDensity rejects OCR fragments whose filled-cell fraction is
	// below this value (noise tables).
	MinDensity float64 `yaml:"min_density"`

	// MinUsefulColumns rejects OCR fragments with fewer columns that
	// contain at least one non-empty cell.
	MinUsefulColumns int `yaml:"min_useful_columns"`

	// RequireVisitHeader rejects OCR fragments whose header matches no
	// visit-naming pattern. Keeps the vision model from returning
	// demographics or summary tables.
	RequireVisitHeader bool `yaml:"require_visit_header"`
}

// DefaultPolicy returns the policy used when no file overrides it.
// Density and column thresholds follow the values that worked for the
// clinical schedule matrices this pipeline targets.
func DefaultPolicy() ExtractionPolicy {
	return ExtractionPolicy{
		Weights: ScoringWeights{
			NonEmptyCell:     1.0,
			StableColumns:    10.0,
			RaggedRowPenalty: 2.0,
		},
		MinDensity:         0.05,
		MinUsefulColumns:   4,
		RequireVisitHeader: true,
	}
}

// Score computes the pass-comparison score for a fragment.
func (p ExtractionPolicy) Score(f *PageTableFragment) float64 {
	if f.Empty() {
		return 0
	}
	score := float64(f.NonEmptyCells()) * p.Weights.NonEmptyCell
	if f.ColumnsStable {
		score += p.Weights.StableColumns
	} else {
		ragged := 0
		want := len(f.Headers)
		if want == 0 && len(f.Rows) > 0 {
			want = len(f.Rows[0])
		}
		for _, row := range f.Rows {
			if len(row) != want {
				ragged++
			}
		}
		score -= float64(ragged) * p.Weights.RaggedRowPenalty
	}
	return score
}

// LoadPolicy reads an ExtractionPolicy from a YAML file. Fields absent
// from the file keep their default values.
//
// Example:
//
//	policy, err := LoadPolicy("policy.yaml")
func LoadPolicy(path string) (ExtractionPolicy, error) {
	policy := DefaultPolicy()

	data, err := os.ReadFile(path)
	if err != nil {
		return policy, fmt.Errorf("failed to read policy file: %w", err)
	}
	if err := yaml.Unmarshal(data, &policy); err != nil {
		return policy, fmt.Errorf("failed to parse policy file: %w", err)
	}

	if policy.MinDensity < 0 || policy.MinDensity > 1 {
		return policy, fmt.Errorf("min_density must be in [0,1], got %g", policy.MinDensity)
	}
	if policy.MinUsefulColumns < 0 {
		return policy, fmt.Errorf("min_useful_columns must not be negative, got %d", policy.MinUsefulColumns)
	}

	return policy, nil
}

// LoadPolicyOrDefault loads the policy from path when it is non-empty,
// falling back to DefaultPolicy on an empty path.
func LoadPolicyOrDefault(path string) (ExtractionPolicy, error) {
	if path == "" {
		return DefaultPolicy(), nil
	}
	return LoadPolicy(path)
}
