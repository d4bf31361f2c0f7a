// memory.go implements the in-memory record store. It is the default
// store for CLI runs and the one tests build on.
package db

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"go_extractor/core"
)

// ErrRecordNotFound is returned when no record exists for an id.
var ErrRecordNotFound = errors.New("db: record not found")

// MemoryStore is a core.RecordStore backed by a map.
//
// Thread-Safety: safe for concurrent use; a single RWMutex guards the map.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]*core.ExtractionRecord
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]*core.ExtractionRecord)}
}

// Create inserts a new record in processing state.
func (s *MemoryStore) Create(ctx context.Context, filename string) (*core.ExtractionRecord, error) {
	record := &core.ExtractionRecord{
		ID:         uuid.NewString(),
		Filename:   filename,
		UploadedAt: time.Now().UTC(),
		Status:     core.StatusProcessing,
	}

	s.mu.Lock()
	s.records[record.ID] = record
	s.mu.Unlock()

	copied := *record
	return &copied, nil
}

// Update finalizes or modifies a record by id.
func (s *MemoryStore) Update(ctx context.Context, id string, status core.RecordStatus, table *core.NormalizedTable, analytics *core.AnalyticsResult, errMsg string, diagnostics []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.records[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrRecordNotFound, id)
	}
	record.Status = status
	record.Table = table
	record.Analytics = analytics
	record.ErrorMessage = errMsg
	record.Diagnostics = diagnostics
	return nil
}

// Get returns a copy of the record with the given id.
func (s *MemoryStore) Get(ctx context.Context, id string) (*core.ExtractionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.records[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrRecordNotFound, id)
	}
	copied := *record
	return &copied, nil
}

// List returns all records, most recently uploaded first.
func (s *MemoryStore) List(ctx context.Context) ([]*core.ExtractionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := make([]*core.ExtractionRecord, 0, len(s.records))
	for _, record := range s.records {
		copied := *record
		records = append(records, &copied)
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].UploadedAt.After(records[j].UploadedAt)
	})
	return records, nil
}

// Stats aggregates record counts.
func (s *MemoryStore) Stats(ctx context.Context) (*core.StoreStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := &core.StoreStats{}
	for _, record := range s.records {
		stats.Total++
		switch record.Status {
		case core.StatusCompleted:
			stats.Completed++
		case core.StatusFailed:
			stats.Failed++
		case core.StatusProcessing:
			stats.Processing++
		}
	}
	if finished := stats.Completed + stats.Failed; finished > 0 {
		stats.SuccessRate = float64(stats.Completed) / float64(finished)
	}
	return stats, nil
}
