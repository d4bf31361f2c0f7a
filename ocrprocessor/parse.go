// parse.go turns a raw vision-model completion into a PageTableFragment.
// Models wrap JSON in fences or prose despite instructions, return
// multi-level headers as nested lists, and emit numbers or nulls where
// strings belong; everything here exists to absorb those shapes.
package ocrprocessor

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"go_extractor/core"
)

// Parsing errors.
var (
	// ErrNoJSONFound is returned when no JSON object is found in the response.
	ErrNoJSONFound = errors.New("ocrprocessor: no JSON object found in response")

	// ErrInvalidJSON is returned when the JSON payload cannot be decoded.
	ErrInvalidJSON = errors.New("ocrprocessor: invalid JSON in response")
)

// pageResponse mirrors the JSON contract in the system prompt. Headers
// and cells are decoded loosely since models do not reliably emit strings.
type pageResponse struct {
	TablePresent bool            `json:"table_present"`
	Headers      []interface{}   `json:"headers"`
	Rows         [][]interface{} `json:"rows"`
	Note         string          `json:"note"`
}

// extractJSONFromText extracts the first JSON object from a text string by
// locating the outermost braces. Handles responses wrapped in code fences
// or explanatory prose.
func extractJSONFromText(text string) (string, error) {
	startIdx := strings.Index(text, "{")
	endIdx := strings.LastIndex(text, "}")

	if startIdx == -1 || endIdx == -1 || startIdx > endIdx {
		return "", ErrNoJSONFound
	}
	return text[startIdx : endIdx+1], nil
}

// flattenHeader renders one header entry as a string. Multi-level headers
// arrive as lists and are joined with " | " so the period prefix survives
// into analytics.
func flattenHeader(h interface{}) string {
	if parts, ok := h.([]interface{}); ok {
		rendered := make([]string, 0, len(parts))
		for _, part := range parts {
			rendered = append(rendered, stringifyCell(part))
		}
		return strings.Join(rendered, " | ")
	}
	return stringifyCell(h)
}

// stringifyCell renders one cell value as a string. Nulls become empty
// cells per the prompt contract.
func stringifyCell(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", val)
	}
}

// parseResponse decodes a raw completion into a fragment for the given
// page. A well-formed response with table_present=false yields an empty
// fragment carrying the model's note, not an error.
func parseResponse(raw string, pageIndex int) (*core.PageTableFragment, error) {
	jsonStr, err := extractJSONFromText(raw)
	if err != nil {
		return nil, err
	}

	var resp pageResponse
	if err := json.Unmarshal([]byte(jsonStr), &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}

	fragment := &core.PageTableFragment{
		PageIndex: pageIndex,
		Method:    core.MethodOCR,
		Note:      resp.Note,
	}
	if !resp.TablePresent {
		return fragment, nil
	}

	headers := make([]string, 0, len(resp.Headers))
	for _, h := range resp.Headers {
		headers = append(headers, flattenHeader(h))
	}
	fragment.Headers = headers

	// Pad short rows and truncate long ones to the header width.
	rows := make([][]string, 0, len(resp.Rows))
	for _, rawRow := range resp.Rows {
		row := make([]string, len(headers))
		for i := 0; i < len(headers) && i < len(rawRow); i++ {
			row[i] = stringifyCell(rawRow[i])
		}
		rows = append(rows, row)
	}
	fragment.Rows = rows
	fragment.ColumnsStable = true

	return fragment, nil
}
