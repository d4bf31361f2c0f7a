// Package metrics provides pure data types for pipeline runtime metrics.
// This file contains type definitions with no behavior.
package metrics

import "time"

// Task statuses recorded by the pipeline.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// TaskRecord represents a single unit of pipeline work, either one page
// extraction or one whole document run.
type TaskRecord struct {
	// ID identifies the extraction record the task belongs to
	ID string `json:"id"`

	// Kind identifies the unit of work: "page" or "document"
	Kind string `json:"kind"`

	// Method is the extraction method used ("structural", "ocr", "mixed");
	// empty when the task failed before a method was chosen
	Method string `json:"method,omitempty"`

	// Status is "success" or "error"
	Status string `json:"status"`

	// Duration is the total execution time
	Duration time.Duration `json:"duration"`

	// ErrorMsg contains error details if Status is "error"
	ErrorMsg string `json:"error_msg,omitempty"`
}

// KindMetrics holds aggregate statistics for one task kind.
type KindMetrics struct {
	// Total is the number of tasks recorded for this kind
	Total int64 `json:"total"`

	// Success is the number of tasks that succeeded
	Success int64 `json:"success"`

	// Errors is the number of tasks that failed
	Errors int64 `json:"errors"`

	// AvgDuration is the mean task duration
	AvgDuration time.Duration `json:"avg_duration"`
}

// Snapshot is a point-in-time view of all pipeline metrics.
type Snapshot struct {
	// Pages aggregates per-page extraction tasks
	Pages KindMetrics `json:"pages"`

	// Documents aggregates whole-document runs
	Documents KindMetrics `json:"documents"`

	// ByMethod counts successful page extractions per method
	ByMethod map[string]int64 `json:"by_method"`

	// Recent holds the most recent tasks, newest first
	Recent []TaskRecord `json:"recent"`

	// Uptime is the time elapsed since the store was created
	Uptime time.Duration `json:"uptime"`
}
