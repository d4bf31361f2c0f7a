package normalizer

import (
	"reflect"
	"testing"

	"go_extractor/core"
	"go_extractor/stitcher"
)

func normalize(t *testing.T, headers []string, rows [][]string) *core.NormalizedTable {
	t.Helper()
	n := New()
	return n.Normalize(&stitcher.Result{Headers: headers, Rows: rows}, core.MethodStructural)
}

func assertRectangular(t *testing.T, table *core.NormalizedTable) {
	t.Helper()
	for i, row := range table.Rows {
		if len(row) != len(table.Headers) {
			t.Errorf("row %d has %d cells, headers have %d", i, len(row), len(table.Headers))
		}
	}
}

func TestNormalizeWhitespace(t *testing.T) {
	table := normalize(t,
		[]string{"  Procedure ", "Visit\t1"},
		[][]string{{" Informed   consent ", " X "}},
	)

	if table.Headers[0] != "Procedure" || table.Headers[1] != "Visit 1" {
		t.Errorf("Headers = %v", table.Headers)
	}
	if table.Rows[0][0] != "Informed consent" {
		t.Errorf("cell = %q, want collapsed whitespace", table.Rows[0][0])
	}
	assertRectangular(t, table)
}

func TestNormalizeNullMarkers(t *testing.T) {
	// "N/A", "-", and "" all map to canonical empty.
	table := normalize(t,
		[]string{"Procedure", "V1", "V2", "V3"},
		[][]string{
			{"ECG", "N/A", "-", ""},
			{"Labs", "X", "--", "nan"},
		},
	)

	// V2 and V3 become fully empty and are dropped as columns.
	if !reflect.DeepEqual(table.Headers, []string{"Procedure", "V1"}) {
		t.Errorf("Headers = %v", table.Headers)
	}
	want := [][]string{
		{"ECG", ""},
		{"Labs", "X"},
	}
	if !reflect.DeepEqual(table.Rows, want) {
		t.Errorf("Rows = %v, want %v", table.Rows, want)
	}
	assertRectangular(t, table)
}

func TestNormalizeDuplicateHeaders(t *testing.T) {
	table := normalize(t,
		[]string{"Procedure", "Visit 1", "Visit 1"},
		[][]string{{"A", "X", "X"}},
	)

	want := []string{"Procedure", "Visit 1", "Visit 1 (2)"}
	if !reflect.DeepEqual(table.Headers, want) {
		t.Errorf("Headers = %v, want %v", table.Headers, want)
	}
}

func TestNormalizeHeaderBackfill(t *testing.T) {
	// Spanning parent headers leave blank continuation cells that inherit
	// the previous label, then get disambiguated.
	table := normalize(t,
		[]string{"Procedure", "Screening", "", "Treatment"},
		[][]string{{"A", "X", "X", "X"}},
	)

	want := []string{"Procedure", "Screening", "Screening (2)", "Treatment"}
	if !reflect.DeepEqual(table.Headers, want) {
		t.Errorf("Headers = %v, want %v", table.Headers, want)
	}
}

func TestNormalizeLeadingBlankHeader(t *testing.T) {
	table := normalize(t,
		[]string{"", "Visit 1"},
		[][]string{{"A", "X"}},
	)

	if table.Headers[0] != "Column 1" {
		t.Errorf("leading blank header = %q, want positional name", table.Headers[0])
	}
}

func TestNormalizeHeaderlessTable(t *testing.T) {
	table := normalize(t, nil, [][]string{{"A", "X"}, {"B", ""}})

	want := []string{"Column 1", "Column 2"}
	if !reflect.DeepEqual(table.Headers, want) {
		t.Errorf("Headers = %v, want %v", table.Headers, want)
	}
	assertRectangular(t, table)
}

func TestNormalizeDropsTrailingEmptyRows(t *testing.T) {
	table := normalize(t,
		[]string{"Procedure", "V1"},
		[][]string{
			{"A", "X"},
			{"", "N/A"},
			{"", ""},
		},
	)

	if len(table.Rows) != 1 {
		t.Errorf("row count = %d, want 1", len(table.Rows))
	}
	if table.Metadata.TotalRows != 1 {
		t.Errorf("TotalRows = %d, want 1", table.Metadata.TotalRows)
	}
}

func TestNormalizeDropsEmptyColumns(t *testing.T) {
	table := normalize(t,
		[]string{"Procedure", "Unused", "V1"},
		[][]string{
			{"A", "", "X"},
			{"B", "N/A", ""},
		},
	)

	want := []string{"Procedure", "V1"}
	if !reflect.DeepEqual(table.Headers, want) {
		t.Errorf("Headers = %v, want %v", table.Headers, want)
	}
	assertRectangular(t, table)
}

func TestNormalizeRaggedRowPreservation(t *testing.T) {
	// A short row keeps its data and gains canonical-empty trailing cells.
	table := normalize(t,
		[]string{"Procedure", "V1", "V2"},
		[][]string{
			{"A", "X", "X"},
			{"B"},
		},
	)

	if len(table.Rows) != 2 {
		t.Fatalf("row count = %d, want 2", len(table.Rows))
	}
	if !reflect.DeepEqual(table.Rows[1], []string{"B", "", ""}) {
		t.Errorf("padded row = %v", table.Rows[1])
	}
	assertRectangular(t, table)
}

func TestNormalizeMetadata(t *testing.T) {
	table := normalize(t,
		[]string{"Procedure", "V1"},
		[][]string{{"A", "X"}, {"B", "X"}},
	)

	if table.Metadata.TotalRows != 2 || table.Metadata.TotalColumns != 2 {
		t.Errorf("Metadata = %+v", table.Metadata)
	}
	if table.Metadata.ExtractionMethod != core.MethodStructural {
		t.Errorf("ExtractionMethod = %q", table.Metadata.ExtractionMethod)
	}
}

func TestNormalizeEmptyInput(t *testing.T) {
	table := normalize(t, nil, nil)
	if len(table.Headers) != 0 || len(table.Rows) != 0 {
		t.Errorf("empty input should normalize to an empty table, got %+v", table)
	}
}
