package analytics

import (
	"reflect"
	"testing"

	"go_extractor/core"
)

func scheduleTable() *core.NormalizedTable {
	return &core.NormalizedTable{
		Headers: []string{"Procedure", "Visit 1", "Visit 2", "Day 28"},
		Rows: [][]string{
			{"Informed consent", "X", "", ""},
			{"Vital signs", "X", "X", "X"},
			{"ECG", "", "X", "X"},
			{"PK sampling", "", "", "X"},
		},
		Metadata: core.TableMetadata{
			TotalRows:        4,
			TotalColumns:     4,
			ExtractionMethod: core.MethodStructural,
		},
	}
}

func TestAnalyzeVisitFrequency(t *testing.T) {
	e := NewEngine()
	result := e.Analyze(scheduleTable(), "")

	want := []core.VisitCount{
		{Visit: "Visit 1", Count: 2},
		{Visit: "Visit 2", Count: 2},
		{Visit: "Day 28", Count: 3},
	}
	if !reflect.DeepEqual(result.VisitFrequency, want) {
		t.Errorf("VisitFrequency = %v, want %v", result.VisitFrequency, want)
	}
}

func TestAnalyzeAssessmentsByVisit(t *testing.T) {
	e := NewEngine()
	result := e.Analyze(scheduleTable(), "")

	if len(result.AssessmentsByVisit) != 3 {
		t.Fatalf("AssessmentsByVisit length = %d, want 3", len(result.AssessmentsByVisit))
	}
	day28 := result.AssessmentsByVisit[2]
	wantAssessments := []string{"Vital signs", "ECG", "PK sampling"}
	if !reflect.DeepEqual(day28.Assessments, wantAssessments) {
		t.Errorf("Day 28 assessments = %v, want %v (source row order)", day28.Assessments, wantAssessments)
	}
	if day28.Count != 3 {
		t.Errorf("Day 28 count = %d, want 3", day28.Count)
	}
}

func TestAnalyzeTotalsConsistency(t *testing.T) {
	e := NewEngine()
	result := e.Analyze(scheduleTable(), "")

	if result.TotalVisits != len(result.VisitFrequency) {
		t.Errorf("TotalVisits = %d, want %d", result.TotalVisits, len(result.VisitFrequency))
	}
	// Every assessment row has at least one non-empty visit cell here.
	if result.TotalAssessments != 4 {
		t.Errorf("TotalAssessments = %d, want 4", result.TotalAssessments)
	}
}

func TestAnalyzeIgnoresNonVisitColumns(t *testing.T) {
	e := NewEngine()
	table := &core.NormalizedTable{
		Headers: []string{"Procedure", "Notes", "Visit 1"},
		Rows: [][]string{
			{"ECG", "see protocol", "X"},
		},
	}
	result := e.Analyze(table, "")

	if result.TotalVisits != 1 {
		t.Errorf("TotalVisits = %d, want 1 (Notes is not a visit)", result.TotalVisits)
	}
	if result.VisitFrequency[0].Visit != "Visit 1" {
		t.Errorf("visit = %q", result.VisitFrequency[0].Visit)
	}
}

func TestAnalyzeLabelColumnNeverAVisit(t *testing.T) {
	e := NewEngine()
	table := &core.NormalizedTable{
		Headers: []string{"Visit Procedures", "V1"},
		Rows:    [][]string{{"ECG", "X"}},
	}
	result := e.Analyze(table, "")

	if result.TotalVisits != 1 {
		t.Errorf("TotalVisits = %d, want 1 (first column is the label column)", result.TotalVisits)
	}
}

func TestAnalyzePeriodsFromHeaderPrefix(t *testing.T) {
	e := NewEngine()
	table := &core.NormalizedTable{
		Headers: []string{"Procedure", "Screening | V1", "Treatment | V2", "Treatment | V3", "Day 100"},
		Rows: [][]string{
			{"ECG", "X", "X", "X", "X"},
		},
	}
	result := e.Analyze(table, "")

	want := []core.PeriodGroup{
		{Period: "Screening", Visits: []string{"V1"}},
		{Period: "Treatment", Visits: []string{"V2", "V3"}},
		{Period: "Unspecified", Visits: []string{"Day 100"}},
	}
	if !reflect.DeepEqual(result.PeriodAnalysis, want) {
		t.Errorf("PeriodAnalysis = %v, want %v", result.PeriodAnalysis, want)
	}
}

func TestAnalyzePeriodKeywordInLabel(t *testing.T) {
	e := NewEngine()
	table := &core.NormalizedTable{
		Headers: []string{"Procedure", "Screening Visit 1", "Follow-up Visit 9"},
		Rows:    [][]string{{"ECG", "X", "X"}},
	}
	result := e.Analyze(table, "")

	if len(result.PeriodAnalysis) != 2 {
		t.Fatalf("PeriodAnalysis = %v", result.PeriodAnalysis)
	}
	if result.PeriodAnalysis[0].Period != "Screening" {
		t.Errorf("period = %q, want Screening", result.PeriodAnalysis[0].Period)
	}
	if result.PeriodAnalysis[1].Period != "Follow-up" {
		t.Errorf("period = %q, want Follow-up", result.PeriodAnalysis[1].Period)
	}
}

func TestAnalyzeVisitPatternVariants(t *testing.T) {
	tests := []struct {
		header string
		want   bool
	}{
		{"V1", true},
		{"Visit 3", true},
		{"Day -35", true},
		{"Week 12", true},
		{"Randomisation", true},
		{"Screening", true},
		{"Baseline", true},
		{"Follow-up", true},
		{"Notes", false},
		{"Comments", false},
	}
	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			if got := visitPattern.MatchString(tt.header); got != tt.want {
				t.Errorf("visitPattern(%q) = %v, want %v", tt.header, got, tt.want)
			}
		})
	}
}

func TestAnalyzeEmptyTable(t *testing.T) {
	e := NewEngine()
	result := e.Analyze(&core.NormalizedTable{}, "")

	if result.TotalVisits != 0 || result.TotalAssessments != 0 {
		t.Errorf("empty table should yield zero totals, got %+v", result)
	}
	if result.VisitFrequency == nil || result.MeaningOverrides == nil {
		t.Error("collections should be empty, not nil")
	}
}

func TestAnalyzeMeaningOverrides(t *testing.T) {
	e := NewEngine()
	table := &core.NormalizedTable{
		Headers: []string{"Procedure", "V1", "V2", "V3"},
		Rows: [][]string{
			{"Informed consent", "a", "", ""},
			{"Endoscopy", "b", "", "a"},
			{"Labs", "X", "b", ""},
		},
	}
	legend := "Footnotes:\n" +
		"a: Ensure the patient has signed the informed consent form.\n" +
		"b: Flexible sigmoidoscopy, centrally read.\n"

	result := e.Analyze(table, legend)

	want := []core.MeaningOverride{
		{Key: "a", Description: "Ensure the patient has signed the informed consent form."},
		{Key: "b", Description: "Flexible sigmoidoscopy, centrally read."},
	}
	if !reflect.DeepEqual(result.MeaningOverrides, want) {
		t.Errorf("MeaningOverrides = %v, want %v", result.MeaningOverrides, want)
	}
}

func TestAnalyzeMeaningOverridesWithoutLegend(t *testing.T) {
	e := NewEngine()
	table := &core.NormalizedTable{
		Headers: []string{"Procedure", "V1", "V2"},
		Rows: [][]string{
			{"A", "a", "a"},
		},
	}
	result := e.Analyze(table, "")

	if len(result.MeaningOverrides) != 0 {
		t.Errorf("no legend should yield no overrides, got %v", result.MeaningOverrides)
	}
}
