// processor.go implements the OCR Processor that turns one page image
// into a table fragment. It composes:
//   - vision.PrepareForOCR: image decode and downscale
//   - client.go: VisionClient for the model call
//   - parse.go: response parsing
//   - core.RetryPolicy: bounded retry with prompt escalation
//
// The Processor is the core.OcrInvoker implementation used in production;
// tests substitute stubs at that interface.
package ocrprocessor

import (
	"context"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"go_extractor/core"
	"go_extractor/logging"
	"go_extractor/vision"
)

// visitHeaderPattern matches the visit-naming vocabulary of schedule
// matrices. A fragment whose headers match nothing here is some other
// table the model picked up by mistake.
var visitHeaderPattern = regexp.MustCompile(`(?i)v\d+|visit\s*\d+|day\s*-?\d+|random|screen`)

// Processor runs vision-model OCR on page images and filters the results.
//
// Thread-Safety:
//   - Processor is safe for concurrent use
//   - each InvokeOCR call is independent
type Processor struct {
	client *VisionClient
	policy core.ExtractionPolicy
	retry  core.RetryPolicy
	logger *logging.Logger
}

// NewProcessor creates an OCR Processor from the core configuration.
//
// Example:
//
//	proc, err := ocrprocessor.NewProcessor(cfg, core.DefaultPolicy(), logger)
func NewProcessor(cfg *core.Config, policy core.ExtractionPolicy, logger *logging.Logger) (*Processor, error) {
	client, err := NewVisionClient(cfg, logger)
	if err != nil {
		return nil, err
	}
	return &Processor{
		client: client,
		policy: policy,
		retry: core.RetryPolicy{
			MaxAttempts: cfg.MaxRetries + 1,
			Backoff:     cfg.RetryDelay,
		},
		logger: logger.Named("ocr-processor"),
	}, nil
}

// InvokeOCR extracts a table fragment from one page image.
//
// The first attempt uses the default prompt; any retry escalates to the
// strict prompt (callers may force strict from the start). A response
// that parses but fails the quality filters returns an empty fragment
// with a note rather than an error, matching how an absent table is
// reported. Exhausted retries return core.ErrExternalService.
func (p *Processor) InvokeOCR(ctx context.Context, pageImage []byte, pageIndex int, strict bool) (*core.PageTableFragment, error) {
	log := p.logger.With(zap.Int("page", pageIndex))

	prepared, err := vision.PrepareForOCR(pageImage)
	if err != nil {
		return nil, core.NewExtractionError(core.ErrPageExtraction,
			"page image could not be prepared for OCR", err)
	}

	var fragment *core.PageTableFragment
	err = p.retry.Do(ctx, func(attempt int) error {
		useStrict := strict || attempt > 1
		raw, callErr := p.client.ExtractTable(ctx, prepared, pageIndex, useStrict)
		if callErr != nil {
			log.Warn("vision model call failed",
				zap.Int("attempt", attempt), zap.Error(callErr))
			return callErr
		}

		parsed, parseErr := parseResponse(raw, pageIndex)
		if parseErr != nil {
			log.Warn("vision model response unparseable",
				zap.Int("attempt", attempt), zap.Error(parseErr))
			return parseErr
		}

		fragment = parsed
		return nil
	})
	if err != nil {
		return nil, core.NewExtractionError(core.ErrExternalService,
			"OCR service did not return a usable response", err)
	}

	if fragment.Empty() {
		log.Info("no schedule table on page", zap.String("note", fragment.Note))
		return fragment, nil
	}

	if reason := p.rejectReason(fragment); reason != "" {
		log.Info("OCR fragment rejected by quality filter",
			zap.String("reason", reason))
		return &core.PageTableFragment{
			PageIndex: pageIndex,
			Method:    core.MethodOCR,
			Note:      reason,
		}, nil
	}

	log.Info("OCR fragment accepted",
		zap.Int("columns", len(fragment.Headers)),
		zap.Int("rows", len(fragment.Rows)))
	return fragment, nil
}

// rejectReason applies the policy quality filters to an OCR fragment.
// Returns an empty string when the fragment passes.
func (p *Processor) rejectReason(f *core.PageTableFragment) string {
	total := len(f.Headers) * len(f.Rows)
	if total > 0 {
		density := float64(f.NonEmptyCells()) / float64(total)
		if density < p.policy.MinDensity {
			return "table too sparse to be a schedule matrix"
		}
	}

	if usefulColumns(f) < p.policy.MinUsefulColumns {
		return "too few populated columns for a schedule matrix"
	}

	if p.policy.RequireVisitHeader {
		headerText := strings.ToLower(strings.Join(f.Headers, " "))
		if !visitHeaderPattern.MatchString(headerText) {
			return "headers carry no visit naming"
		}
	}
	return ""
}

// usefulColumns counts columns with at least one non-empty data cell.
func usefulColumns(f *core.PageTableFragment) int {
	useful := 0
	for col := 0; col < len(f.Headers); col++ {
		for _, row := range f.Rows {
			if col < len(row) && strings.TrimSpace(row[col]) != "" {
				useful++
				break
			}
		}
	}
	return useful
}
