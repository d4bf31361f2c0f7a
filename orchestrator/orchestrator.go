// Package orchestrator drives one document through the full extraction
// pipeline: classify pages, extract per page with structural-to-OCR
// fallback, stitch, normalize, analyze, and finalize the extraction
// record exactly once.
//
// orchestrator.go composes:
//   - PageSource / DocumentOpener (source.go): per-page document access
//   - core.OcrInvoker: the external vision-model contract
//   - stitcher, normalizer, analytics: the sequential tail of the pipeline
//   - core.RecordStore: record lifecycle
//   - metrics.Store: per-page and per-document runtime metrics
package orchestrator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"go_extractor/analytics"
	"go_extractor/core"
	"go_extractor/logging"
	"go_extractor/metrics"
	"go_extractor/normalizer"
	"go_extractor/stitcher"
)

// pageOutcome is one page's extraction result as collected from the
// parallel phase.
type pageOutcome struct {
	pageIndex  int
	fragment   *core.PageTableFragment
	diagnostic string
}

// Orchestrator runs extraction pipelines. One Orchestrator serves many
// documents; per-run state lives on the stack of Process.
//
// Thread-Safety: safe for concurrent use across documents.
type Orchestrator struct {
	opener     DocumentOpener
	ocr        core.OcrInvoker
	store      core.RecordStore
	stitcher   *stitcher.Stitcher
	normalizer *normalizer.Normalizer
	analytics  *analytics.Engine
	metrics    *metrics.Store
	config     *core.Config
	logger     *logging.Logger
}

// New creates an Orchestrator. The OCR invoker may be nil when no OCR
// backend is configured; pages needing OCR then fail individually.
func New(opener DocumentOpener, ocr core.OcrInvoker, store core.RecordStore, cfg *core.Config, logger *logging.Logger) *Orchestrator {
	return &Orchestrator{
		opener:     opener,
		ocr:        ocr,
		store:      store,
		stitcher:   stitcher.New(logger),
		normalizer: normalizer.New(),
		analytics:  analytics.NewEngine(),
		metrics:    metrics.NewStore(metrics.DefaultHistoryCapacity),
		config:     cfg,
		logger:     logger.Named("orchestrator"),
	}
}

// Metrics returns a snapshot of the runtime metrics accumulated across
// every document this Orchestrator has processed.
func (o *Orchestrator) Metrics() metrics.Snapshot {
	return o.metrics.Snapshot()
}

// Process runs the full pipeline for one uploaded document: creates the
// extraction record in processing state, extracts, and finalizes the
// record as completed or failed. The returned record reflects the
// terminal state. The returned error is non-nil only when the record
// store itself fails; extraction failures are reported through the
// record's status and error message.
func (o *Orchestrator) Process(ctx context.Context, filename string, pdfData []byte) (*core.ExtractionRecord, error) {
	record, err := o.store.Create(ctx, filename)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: creating record: %w", err)
	}

	started := time.Now()
	table, analyticsResult, diagnostics, runErr := o.run(ctx, record.ID, pdfData)

	task := metrics.TaskRecord{ID: record.ID, Duration: time.Since(started)}
	if runErr != nil {
		task.Status = metrics.StatusError
		task.ErrorMsg = core.UserMessageFor(runErr)
	} else {
		task.Status = metrics.StatusSuccess
		task.Method = string(table.Metadata.ExtractionMethod)
	}
	o.metrics.RecordDocument(task)

	if runErr != nil {
		o.logger.Warn("extraction failed",
			zap.String("id", record.ID),
			zap.String("filename", filename),
			zap.Error(runErr))
		if err := o.store.Update(ctx, record.ID, core.StatusFailed, nil, nil,
			core.UserMessageFor(runErr), diagnostics); err != nil {
			return nil, fmt.Errorf("orchestrator: finalizing failed record: %w", err)
		}
	} else {
		o.logger.Info("extraction completed",
			zap.String("id", record.ID),
			zap.Int("rows", table.Metadata.TotalRows),
			zap.Int("columns", table.Metadata.TotalColumns),
			zap.String("method", string(table.Metadata.ExtractionMethod)))
		if err := o.store.Update(ctx, record.ID, core.StatusCompleted, table,
			analyticsResult, "", diagnostics); err != nil {
			return nil, fmt.Errorf("orchestrator: finalizing record: %w", err)
		}
	}

	return o.store.Get(ctx, record.ID)
}

// run executes the pipeline and returns its products. All fatal
// conditions come back as the error; non-fatal ones accumulate as
// diagnostics.
func (o *Orchestrator) run(ctx context.Context, id string, pdfData []byte) (*core.NormalizedTable, *core.AnalyticsResult, []string, error) {
	if o.config.MaxFileSize > 0 && int64(len(pdfData)) > o.config.MaxFileSize {
		return nil, nil, nil, core.NewExtractionError(core.ErrUnreadableDocument,
			"The file exceeds the maximum accepted size.", nil)
	}

	source, err := o.opener.Open(pdfData)
	if err != nil {
		return nil, nil, nil, err
	}
	defer source.Close()

	pageCount := source.PageCount()
	if o.config.MaxPages > 0 && pageCount > o.config.MaxPages {
		pageCount = o.config.MaxPages
	}

	outcomes := o.extractPages(ctx, id, source, pageCount)

	fragments := make([]*core.PageTableFragment, 0, len(outcomes))
	var diagnostics []string
	for _, out := range outcomes {
		if out.diagnostic != "" {
			diagnostics = append(diagnostics, out.diagnostic)
		}
		if out.fragment != nil {
			fragments = append(fragments, out.fragment)
		}
	}

	stitched := o.stitcher.Stitch(fragments)
	diagnostics = append(diagnostics, stitched.Diagnostics...)

	table := o.normalizer.Normalize(stitched, documentMethod(fragments))
	if len(table.Rows) == 0 || len(table.Headers) == 0 {
		return nil, nil, diagnostics, core.NewExtractionError(core.ErrEmptyResult,
			"Table extraction failed: no page produced usable table data.", nil)
	}

	analyticsResult := o.analytics.Analyze(table, source.DocumentText())
	return table, analyticsResult, diagnostics, nil
}

// extractPages runs per-page extraction with bounded parallelism and
// returns the outcomes ordered by page index. Each page is first handled
// by the method the classifier chose; a structural page whose extraction
// fails is re-dispatched to OCR before being given up on.
func (o *Orchestrator) extractPages(ctx context.Context, id string, source PageSource, pageCount int) []pageOutcome {
	// Below 1 the semaphore would never admit a page goroutine.
	workers := o.config.MaxConcurrent
	if workers < 1 {
		workers = 1
	}
	sem := make(chan struct{}, workers)
	outcomes := make([]pageOutcome, pageCount)

	var wg sync.WaitGroup
	for i := 0; i < pageCount; i++ {
		wg.Add(1)
		go func(pageIndex int) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			outcomes[pageIndex] = o.extractPage(ctx, id, source, pageIndex)
		}(i)
	}
	wg.Wait()
	return outcomes
}

// extractPage handles one page through its two possible attempts.
func (o *Orchestrator) extractPage(ctx context.Context, id string, source PageSource, pageIndex int) pageOutcome {
	started := time.Now()
	out := pageOutcome{pageIndex: pageIndex}
	method := source.Classify(pageIndex)

	if method == core.MethodStructural {
		fragment, err := source.ExtractStructural(pageIndex)
		if err == nil {
			out.fragment = fragment
			o.metrics.RecordPage(metrics.TaskRecord{
				ID:       id,
				Method:   string(core.MethodStructural),
				Status:   metrics.StatusSuccess,
				Duration: time.Since(started),
			})
			return out
		}
		// Single-column and no-table results land here; the page gets
		// its second attempt through OCR.
		o.logger.Info("structural extraction failed, re-dispatching page to OCR",
			zap.Int("page", pageIndex), zap.Error(err))
	}

	fragment, err := o.invokeOCR(ctx, source, pageIndex)
	if err != nil {
		out.diagnostic = fmt.Sprintf("page %d: %s", pageIndex+1, core.UserMessageFor(err))
		o.metrics.RecordPage(metrics.TaskRecord{
			ID:       id,
			Status:   metrics.StatusError,
			Duration: time.Since(started),
			ErrorMsg: core.UserMessageFor(err),
		})
		return out
	}
	if fragment.Empty() && fragment.Note != "" {
		out.diagnostic = fmt.Sprintf("page %d: %s", pageIndex+1, fragment.Note)
	}
	out.fragment = fragment
	o.metrics.RecordPage(metrics.TaskRecord{
		ID:       id,
		Method:   string(core.MethodOCR),
		Status:   metrics.StatusSuccess,
		Duration: time.Since(started),
	})
	return out
}

// invokeOCR runs the OCR attempt for one page.
func (o *Orchestrator) invokeOCR(ctx context.Context, source PageSource, pageIndex int) (*core.PageTableFragment, error) {
	if o.ocr == nil {
		return nil, core.NewExtractionError(core.ErrExternalService,
			"no OCR backend is configured", nil)
	}
	image, err := source.PageImage(pageIndex)
	if err != nil {
		return nil, core.NewExtractionError(core.ErrPageExtraction,
			"the page has no image suitable for OCR", err)
	}
	return o.ocr.InvokeOCR(ctx, image, pageIndex, false)
}

// documentMethod reports how the document's data was obtained: the single
// method all contributing fragments share, or mixed.
func documentMethod(fragments []*core.PageTableFragment) core.ExtractionMethod {
	var method core.ExtractionMethod
	for _, f := range fragments {
		if f.Empty() {
			continue
		}
		if method == "" {
			method = f.Method
		} else if method != f.Method {
			return core.MethodMixed
		}
	}
	if method == "" {
		return core.MethodStructural
	}
	return method
}
