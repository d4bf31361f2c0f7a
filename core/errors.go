// errors.go defines the error kinds used across the pipeline and the
// ExtractionError type that separates internal causes from the
// user-presentable message stored on a failed record.
package core

import (
	"errors"
	"fmt"
)

// Error kinds. Fatal kinds finalize the document as failed; the others are
// recovered per page and surface only as diagnostics.
var (
	// ErrUnreadableDocument indicates a corrupt, encrypted, or zero-page PDF. Fatal.
	ErrUnreadableDocument = errors.New("core: unreadable document")

	// ErrPageExtraction indicates one page's extractor produced nothing usable.
	// Recovered by falling back to the other strategy or skipping the page.
	ErrPageExtraction = errors.New("core: page extraction failure")

	// ErrExternalService indicates an OCR call error or timeout.
	// Retried once, then recovered as an empty page fragment.
	ErrExternalService = errors.New("core: external OCR service failure")

	// ErrEmptyResult indicates the pipeline completed but yielded a table
	// with zero rows or zero columns. Fatal: a structurally empty result
	// must not be presented as success.
	ErrEmptyResult = errors.New("core: empty extraction result")
)

// ExtractionError carries an error kind, a user-presentable message, and
// the underlying cause. The message never leaks internal error text; the
// cause is preserved for logs via Unwrap.
type ExtractionError struct {
	Kind    error
	Message string
	Err     error
}

func (e *ExtractionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap exposes the underlying cause chain.
func (e *ExtractionError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return e.Kind
}

// Is matches against both the kind and the wrapped cause.
func (e *ExtractionError) Is(target error) bool {
	return errors.Is(e.Kind, target) || errors.Is(e.Err, target)
}

// UserMessage returns the message safe to store on a failed record.
func (e *ExtractionError) UserMessage() string {
	return e.Message
}

// NewExtractionError builds an ExtractionError of the given kind.
//
// Example:
//
//	err := NewExtractionError(ErrUnreadableDocument,
//	    "The PDF could not be read. It may be corrupt or encrypted.", cause)
func NewExtractionError(kind error, message string, cause error) *ExtractionError {
	return &ExtractionError{Kind: kind, Message: message, Err: cause}
}

// UserMessageFor extracts the user-presentable message from err, falling
// back to a generic message so raw internal text never reaches a record.
func UserMessageFor(err error) string {
	var ee *ExtractionError
	if errors.As(err, &ee) {
		return ee.UserMessage()
	}
	switch {
	case errors.Is(err, ErrUnreadableDocument):
		return "The PDF could not be read. It may be corrupt, encrypted, or empty."
	case errors.Is(err, ErrEmptyResult):
		return "No table data could be extracted from this document."
	case errors.Is(err, ErrExternalService):
		return "Table extraction failed: the OCR service did not return usable data."
	default:
		return "Extraction failed due to an internal error."
	}
}
