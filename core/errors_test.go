package core

import (
	"errors"
	"fmt"
	"testing"
)

func TestExtractionErrorIs(t *testing.T) {
	cause := errors.New("read tcp: connection reset")
	err := NewExtractionError(ErrExternalService, "OCR service unavailable", cause)

	if !errors.Is(err, ErrExternalService) {
		t.Error("expected errors.Is to match the error kind")
	}
	if !errors.Is(err, cause) {
		t.Error("expected errors.Is to match the wrapped cause")
	}
	if errors.Is(err, ErrUnreadableDocument) {
		t.Error("did not expect a match against an unrelated kind")
	}
}

func TestExtractionErrorWrapping(t *testing.T) {
	inner := NewExtractionError(ErrEmptyResult, "no usable data", nil)
	wrapped := fmt.Errorf("pipeline: %w", inner)

	if !errors.Is(wrapped, ErrEmptyResult) {
		t.Error("expected kind to survive fmt.Errorf wrapping")
	}

	var ee *ExtractionError
	if !errors.As(wrapped, &ee) {
		t.Fatal("expected errors.As to recover the ExtractionError")
	}
	if ee.UserMessage() != "no usable data" {
		t.Errorf("UserMessage() = %q, want %q", ee.UserMessage(), "no usable data")
	}
}

func TestUserMessageFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "extraction error carries its own message",
			err:  NewExtractionError(ErrUnreadableDocument, "custom message", errors.New("internal detail")),
			want: "custom message",
		},
		{
			name: "bare unreadable kind",
			err:  ErrUnreadableDocument,
			want: "The PDF could not be read. It may be corrupt, encrypted, or empty.",
		},
		{
			name: "bare empty result kind",
			err:  ErrEmptyResult,
			want: "No table data could be extracted from this document.",
		},
		{
			name: "unknown error never leaks internal text",
			err:  errors.New("sql: database is locked"),
			want: "Extraction failed due to an internal error.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := UserMessageFor(tt.err); got != tt.want {
				t.Errorf("UserMessageFor() = %q, want %q", got, tt.want)
			}
		})
	}
}
