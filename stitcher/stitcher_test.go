package stitcher

import (
	"reflect"
	"strings"
	"testing"

	"go_extractor/core"
	"go_extractor/logging"
)

func fragment(page int, headers []string, rows [][]string) *core.PageTableFragment {
	return &core.PageTableFragment{
		PageIndex: page,
		Headers:   headers,
		Rows:      rows,
		Method:    core.MethodStructural,
	}
}

func TestStitchRepeatedHeaders(t *testing.T) {
	s := New(logging.NewNop())

	header := []string{"Procedure", "Visit 1", "Visit 2"}
	got := s.Stitch([]*core.PageTableFragment{
		fragment(0, header, [][]string{
			{"Consent", "X", ""},
			{"Vitals", "X", "X"},
			{"ECG", "", "X"},
		}),
		fragment(1, header, [][]string{
			{"Labs", "X", "X"},
			{"PK sampling", "", "X"},
		}),
	})

	if !reflect.DeepEqual(got.Headers, header) {
		t.Errorf("Headers = %v, want %v", got.Headers, header)
	}
	// Row counts add up when pages share a header.
	if len(got.Rows) != 5 {
		t.Errorf("row count = %d, want 5", len(got.Rows))
	}
	if got.Rows[3][0] != "Labs" {
		t.Errorf("page order lost: row 3 = %v", got.Rows[3])
	}
}

func TestStitchCaseInsensitiveHeaderMatch(t *testing.T) {
	s := New(logging.NewNop())

	got := s.Stitch([]*core.PageTableFragment{
		fragment(0, []string{"Procedure", "Visit 1"}, [][]string{{"A", "X"}}),
		fragment(1, []string{"procedure", " VISIT  1 "}, [][]string{{"B", "X"}}),
	})

	if len(got.Rows) != 2 {
		t.Errorf("row count = %d, want 2 (headers should have matched)", len(got.Rows))
	}
	if len(got.Diagnostics) != 0 {
		t.Errorf("unexpected diagnostics: %v", got.Diagnostics)
	}
}

func TestStitchContinuationPage(t *testing.T) {
	s := New(logging.NewNop())

	got := s.Stitch([]*core.PageTableFragment{
		fragment(0, []string{"Procedure", "V1"}, [][]string{{"A", "X"}}),
		fragment(1, nil, [][]string{{"B", "X"}, {"C", ""}}),
	})

	if len(got.Rows) != 3 {
		t.Errorf("row count = %d, want 3", len(got.Rows))
	}
}

func TestStitchKeepsLargerTableOnHeaderConflict(t *testing.T) {
	s := New(logging.NewNop())

	got := s.Stitch([]*core.PageTableFragment{
		fragment(0, []string{"Characteristic", "Value"}, [][]string{
			{"Age", "54"},
		}),
		fragment(1, []string{"Procedure", "Visit 1"}, [][]string{
			{"Consent", "X"},
			{"Vitals", "X"},
			{"Labs", "X"},
		}),
	})

	if !reflect.DeepEqual(got.Headers, []string{"Procedure", "Visit 1"}) {
		t.Errorf("Headers = %v, want the larger table's", got.Headers)
	}
	if len(got.Rows) != 3 {
		t.Errorf("row count = %d, want 3", len(got.Rows))
	}
	if len(got.Diagnostics) == 0 {
		t.Error("table boundary decision should leave a diagnostic")
	}
}

func TestStitchTreatsDifferentWidthAsNewTable(t *testing.T) {
	s := New(logging.NewNop())

	got := s.Stitch([]*core.PageTableFragment{
		fragment(0, []string{"Procedure", "V1", "V2"}, [][]string{
			{"A", "X", ""}, {"B", "", "X"},
		}),
		fragment(1, []string{"Procedure", "V1"}, [][]string{{"C", "X"}}),
	})

	if len(got.Headers) != 3 {
		t.Errorf("Headers = %v, want the 3-column table", got.Headers)
	}
	if len(got.Rows) != 2 {
		t.Errorf("row count = %d, want 2", len(got.Rows))
	}
}

func TestStitchDropsRepeatedHeaderRowsInBody(t *testing.T) {
	s := New(logging.NewNop())

	header := []string{"Procedure", "Visit 1"}
	got := s.Stitch([]*core.PageTableFragment{
		fragment(0, header, [][]string{
			{"A", "X"},
			{"Procedure", "Visit 1"},
			{"B", "X"},
		}),
	})

	if len(got.Rows) != 2 {
		t.Errorf("row count = %d, want 2 (header echo should be dropped)", len(got.Rows))
	}
}

func TestStitchDropsMostlyNullRows(t *testing.T) {
	s := New(logging.NewNop())

	got := s.Stitch([]*core.PageTableFragment{
		fragment(0, []string{"Procedure", "V1", "V2", "V3"}, [][]string{
			{"A", "X", "", ""},
			{"None", "null", "nan", "B"},
			{"B", "", "X", ""},
		}),
	})

	if len(got.Rows) != 2 {
		t.Fatalf("row count = %d, want 2", len(got.Rows))
	}
	found := false
	for _, d := range got.Diagnostics {
		if strings.Contains(d, "mostly-empty") {
			found = true
		}
	}
	if !found {
		t.Errorf("dropped rows should be diagnosed, got %v", got.Diagnostics)
	}
}

func TestStitchPadsAndTruncatesRaggedRows(t *testing.T) {
	s := New(logging.NewNop())

	got := s.Stitch([]*core.PageTableFragment{
		fragment(0, []string{"Procedure", "V1", "V2"}, [][]string{
			{"A"},
			{"B", "X", "", "overflow"},
		}),
	})

	want := [][]string{
		{"A", "", ""},
		{"B", "X", ""},
	}
	if !reflect.DeepEqual(got.Rows, want) {
		t.Errorf("Rows = %v, want %v", got.Rows, want)
	}
}

func TestStitchSortsByPageIndex(t *testing.T) {
	s := New(logging.NewNop())

	header := []string{"Procedure", "V1"}
	got := s.Stitch([]*core.PageTableFragment{
		fragment(2, header, [][]string{{"Late", "X"}}),
		fragment(0, header, [][]string{{"Early", "X"}}),
	})

	if got.Rows[0][0] != "Early" || got.Rows[1][0] != "Late" {
		t.Errorf("rows out of page order: %v", got.Rows)
	}
}

func TestStitchEmptyInput(t *testing.T) {
	s := New(logging.NewNop())

	got := s.Stitch(nil)
	if len(got.Headers) != 0 || len(got.Rows) != 0 {
		t.Errorf("empty input should stitch to an empty result, got %v", got)
	}

	got = s.Stitch([]*core.PageTableFragment{
		{PageIndex: 0, Method: core.MethodOCR, Note: "cover page"},
	})
	if len(got.Rows) != 0 {
		t.Errorf("all-empty fragments should stitch to an empty result, got %v", got)
	}
}
