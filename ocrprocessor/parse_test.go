package ocrprocessor

import (
	"errors"
	"reflect"
	"testing"

	"go_extractor/core"
)

func TestExtractJSONFromText(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{
			name:  "bare object",
			input: `{"table_present": true}`,
			want:  `{"table_present": true}`,
		},
		{
			name:  "code fenced",
			input: "```json\n{\"table_present\": false}\n```",
			want:  `{"table_present": false}`,
		},
		{
			name:  "surrounded by prose",
			input: `Here is the table: {"a": 1} hope that helps`,
			want:  `{"a": 1}`,
		},
		{
			name:    "no json",
			input:   "I could not find a table on this page.",
			wantErr: true,
		},
		{
			name:    "mismatched braces",
			input:   "} {",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := extractJSONFromText(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrNoJSONFound) {
					t.Errorf("error = %v, want ErrNoJSONFound", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("extractJSONFromText() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseResponseTable(t *testing.T) {
	raw := `{
		"table_present": true,
		"headers": ["Procedure", "V1", "V2"],
		"rows": [["ECG", "X", null], ["Labs", 1, "X"]],
		"note": ""
	}`

	f, err := parseResponse(raw, 2)
	if err != nil {
		t.Fatalf("parseResponse() error: %v", err)
	}
	if f.PageIndex != 2 {
		t.Errorf("PageIndex = %d, want 2", f.PageIndex)
	}
	if f.Method != core.MethodOCR {
		t.Errorf("Method = %q, want ocr", f.Method)
	}
	wantHeaders := []string{"Procedure", "V1", "V2"}
	if !reflect.DeepEqual(f.Headers, wantHeaders) {
		t.Errorf("Headers = %v, want %v", f.Headers, wantHeaders)
	}
	wantRows := [][]string{
		{"ECG", "X", ""},
		{"Labs", "1", "X"},
	}
	if !reflect.DeepEqual(f.Rows, wantRows) {
		t.Errorf("Rows = %v, want %v", f.Rows, wantRows)
	}
	if !f.ColumnsStable {
		t.Error("ColumnsStable = false after row normalization")
	}
}

func TestParseResponseMultiLevelHeaders(t *testing.T) {
	raw := `{
		"table_present": true,
		"headers": [["Screening", "V1"], "V2"],
		"rows": [["X", "X"]]
	}`

	f, err := parseResponse(raw, 0)
	if err != nil {
		t.Fatalf("parseResponse() error: %v", err)
	}
	if f.Headers[0] != "Screening | V1" {
		t.Errorf("flattened header = %q, want %q", f.Headers[0], "Screening | V1")
	}
}

func TestParseResponseRowNormalization(t *testing.T) {
	raw := `{
		"table_present": true,
		"headers": ["A", "B", "C"],
		"rows": [["1"], ["1", "2", "3", "4"]]
	}`

	f, err := parseResponse(raw, 0)
	if err != nil {
		t.Fatalf("parseResponse() error: %v", err)
	}
	want := [][]string{
		{"1", "", ""},
		{"1", "2", "3"},
	}
	if !reflect.DeepEqual(f.Rows, want) {
		t.Errorf("Rows = %v, want %v", f.Rows, want)
	}
}

func TestParseResponseNoTable(t *testing.T) {
	raw := `{"table_present": false, "headers": [], "rows": [], "note": "title page"}`

	f, err := parseResponse(raw, 5)
	if err != nil {
		t.Fatalf("parseResponse() error: %v", err)
	}
	if !f.Empty() {
		t.Errorf("fragment should be empty, got %v", f)
	}
	if f.Note != "title page" {
		t.Errorf("Note = %q, want %q", f.Note, "title page")
	}
}

func TestParseResponseInvalidJSON(t *testing.T) {
	if _, err := parseResponse(`{"table_present": }`, 0); !errors.Is(err, ErrInvalidJSON) {
		t.Errorf("error = %v, want ErrInvalidJSON", err)
	}
	if _, err := parseResponse(`no table here`, 0); !errors.Is(err, ErrNoJSONFound) {
		t.Errorf("error = %v, want ErrNoJSONFound", err)
	}
}

func TestStringifyCell(t *testing.T) {
	tests := []struct {
		name  string
		input interface{}
		want  string
	}{
		{"nil", nil, ""},
		{"string", "X", "X"},
		{"integer-valued float", float64(3), "3"},
		{"fraction", 2.5, "2.5"},
		{"bool", true, "true"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := stringifyCell(tt.input); got != tt.want {
				t.Errorf("stringifyCell(%v) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
