// store.go contains the Store, the thread-safe in-memory aggregation of
// TaskRecord values produced by the pipeline.
package metrics

import (
	"sync"
	"time"
)

// DefaultHistoryCapacity is the number of recent tasks retained when a
// Store is created with NewStore.
const DefaultHistoryCapacity = 100

// Store accumulates pipeline task records and serves aggregate views.
// Recent-task history is a fixed-capacity ring; aggregates cover every
// task ever recorded.
//
// Thread-Safety: safe for concurrent use.
type Store struct {
	mu sync.RWMutex

	history []TaskRecord
	head    int
	size    int

	pages     kindTotals
	documents kindTotals
	byMethod  map[string]int64

	startTime time.Time
}

type kindTotals struct {
	total         int64
	success       int64
	errors        int64
	totalDuration time.Duration
}

func (k *kindTotals) add(task TaskRecord) {
	k.total++
	if task.Status == StatusSuccess {
		k.success++
	} else {
		k.errors++
	}
	k.totalDuration += task.Duration
}

func (k *kindTotals) metrics() KindMetrics {
	m := KindMetrics{Total: k.total, Success: k.success, Errors: k.errors}
	if k.total > 0 {
		m.AvgDuration = k.totalDuration / time.Duration(k.total)
	}
	return m
}

// NewStore creates a Store retaining the given number of recent tasks.
// A capacity below 1 falls back to DefaultHistoryCapacity.
func NewStore(historyCapacity int) *Store {
	if historyCapacity < 1 {
		historyCapacity = DefaultHistoryCapacity
	}
	return &Store{
		history:   make([]TaskRecord, historyCapacity),
		byMethod:  make(map[string]int64),
		startTime: time.Now(),
	}
}

// RecordPage logs one per-page extraction task.
func (s *Store) RecordPage(task TaskRecord) {
	task.Kind = "page"
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pages.add(task)
	if task.Status == StatusSuccess && task.Method != "" {
		s.byMethod[task.Method]++
	}
	s.push(task)
}

// RecordDocument logs one whole-document run.
func (s *Store) RecordDocument(task TaskRecord) {
	task.Kind = "document"
	s.mu.Lock()
	defer s.mu.Unlock()
	s.documents.add(task)
	s.push(task)
}

// push must be called with the lock held.
func (s *Store) push(task TaskRecord) {
	s.history[s.head] = task
	s.head = (s.head + 1) % len(s.history)
	if s.size < len(s.history) {
		s.size++
	}
}

// Snapshot returns a copy of all current metrics. Recent tasks come back
// newest first.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	recent := make([]TaskRecord, 0, s.size)
	for i := 0; i < s.size; i++ {
		idx := (s.head - 1 - i + len(s.history)) % len(s.history)
		recent = append(recent, s.history[idx])
	}

	byMethod := make(map[string]int64, len(s.byMethod))
	for method, count := range s.byMethod {
		byMethod[method] = count
	}

	return Snapshot{
		Pages:     s.pages.metrics(),
		Documents: s.documents.metrics(),
		ByMethod:  byMethod,
		Recent:    recent,
		Uptime:    time.Since(s.startTime),
	}
}
