// interfaces.go defines the seams between the orchestrator and its
// collaborators so each can be replaced with a stub in tests.
package core

import "context"

// OcrInvoker is the external vision-model contract. Given a rasterized
// page image it returns a PageTableFragment or an error. The strict flag
// selects the tighter retry prompt.
//
// Implementations must be safe for concurrent use; the orchestrator may
// invoke multiple pages in parallel.
type OcrInvoker interface {
	InvokeOCR(ctx context.Context, pageImage []byte, pageIndex int, strict bool) (*PageTableFragment, error)
}

// RecordStore is the external collaborator that persists extraction
// records. The core calls Create before a run starts and Update exactly
// once when the run terminates.
//
// Implementations must support concurrent create/update by id without
// lost updates.
type RecordStore interface {
	// Create inserts a new record in processing state and returns it.
	Create(ctx context.Context, filename string) (*ExtractionRecord, error)

	// Update finalizes or modifies a record by id. Table and analytics
	// may be nil for failed records; errMsg is empty for completed ones.
	Update(ctx context.Context, id string, status RecordStatus, table *NormalizedTable, analytics *AnalyticsResult, errMsg string, diagnostics []string) error

	// Get returns the record with the given id.
	Get(ctx context.Context, id string) (*ExtractionRecord, error)

	// List returns all records, most recently uploaded first.
	List(ctx context.Context) ([]*ExtractionRecord, error)

	// Stats aggregates record counts for dashboard consumers.
	Stats(ctx context.Context) (*StoreStats, error)
}
