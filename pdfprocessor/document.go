// Package pdfprocessor provides structural table extraction from the text
// layer of vector PDFs, plus page classification between structural and
// OCR strategies.
//
// document.go implements Document, the shared page-level view over one
// PDF. It composes two readers over the same bytes:
//   - pdfcpu: validation, page count, dimensions, embedded image access
//   - ledongthuc/pdf: positioned text tokens and plain text per page
package pdfprocessor

import (
	"bytes"
	"fmt"
	"io"
	"sort"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	pdfcpu "github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"go_extractor/core"
)

// Document is a read-only view over one PDF's pages. It is created once
// per extraction run and is safe for concurrent page reads.
type Document struct {
	ctx       *model.Context
	reader    *pdf.Reader
	pageCount int
}

// OpenDocument parses PDF bytes and validates the document structure.
// Corrupt, encrypted, or zero-page PDFs yield core.ErrUnreadableDocument.
func OpenDocument(data []byte) (*Document, error) {
	if len(data) == 0 {
		return nil, core.NewExtractionError(core.ErrUnreadableDocument,
			"The uploaded file is empty.", nil)
	}

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	ctx, err := api.ReadValidateAndOptimize(bytes.NewReader(data), conf)
	if err != nil {
		return nil, core.NewExtractionError(core.ErrUnreadableDocument,
			"The PDF could not be read. It may be corrupt or encrypted.", err)
	}
	if err := ctx.EnsurePageCount(); err != nil || ctx.PageCount == 0 {
		return nil, core.NewExtractionError(core.ErrUnreadableDocument,
			"The PDF contains no pages.", err)
	}

	doc := &Document{ctx: ctx, pageCount: ctx.PageCount}

	// The text-layer reader may fail on image-only scans; the document is
	// still processable via OCR, so a nil reader just disables the
	// structural path.
	if reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data))); err == nil {
		doc.reader = reader
	}

	return doc, nil
}

// PageCount returns the number of pages in the document.
func (d *Document) PageCount() int {
	return d.pageCount
}

// pageContent returns the positioned text elements of a page (0-based
// index). ledongthuc/pdf can panic on malformed content streams, so the
// call is isolated behind a recover.
func (d *Document) pageContent(index int) (texts []pdf.Text, err error) {
	if d.reader == nil {
		return nil, fmt.Errorf("no text layer reader available")
	}
	if index < 0 || index >= d.pageCount {
		return nil, fmt.Errorf("page index %d out of range [0,%d)", index, d.pageCount)
	}

	defer func() {
		if r := recover(); r != nil {
			texts = nil
			err = fmt.Errorf("malformed page content: %v", r)
		}
	}()

	p := d.reader.Page(index + 1)
	if p.V.IsNull() {
		return nil, nil
	}
	return p.Content().Text, nil
}

// textTokenCount returns the number of positioned text elements on the
// page, 0 when the text layer is missing or malformed.
func (d *Document) textTokenCount(index int) int {
	texts, err := d.pageContent(index)
	if err != nil {
		return 0
	}
	return len(texts)
}

// PageText returns the plain text of a page (0-based index), used for
// legend mining. Returns "" on any extraction problem.
func (d *Document) PageText(index int) string {
	if d.reader == nil || index < 0 || index >= d.pageCount {
		return ""
	}

	var text string
	func() {
		defer func() { recover() }() // same malformed-content guard as pageContent
		p := d.reader.Page(index + 1)
		if p.V.IsNull() {
			return
		}
		if t, err := p.GetPlainText(nil); err == nil {
			text = t
		}
	}()
	return text
}

// HasImageXObjects reports whether the page carries embedded images.
// A page with images and no text layer is a scan.
func (d *Document) HasImageXObjects(index int) bool {
	if d.ctx.Optimize == nil {
		return false
	}
	return len(pdfcpu.ImageObjNrs(d.ctx, index+1)) > 0
}

// PageImage returns the raw bytes of the largest embedded image on the
// page (0-based index). For scanned documents this is the full-page scan.
func (d *Document) PageImage(index int) ([]byte, error) {
	images, err := pdfcpu.ExtractPageImages(d.ctx, index+1, false)
	if err != nil {
		return nil, fmt.Errorf("failed to extract page images: %w", err)
	}
	if len(images) == 0 {
		return nil, fmt.Errorf("page %d has no embedded images", index)
	}

	// Deterministic order, then keep the largest payload.
	objNrs := make([]int, 0, len(images))
	for objNr := range images {
		objNrs = append(objNrs, objNr)
	}
	sort.Ints(objNrs)

	var largest []byte
	for _, objNr := range objNrs {
		data, err := io.ReadAll(images[objNr])
		if err != nil {
			continue
		}
		if len(data) > len(largest) {
			largest = data
		}
	}
	if len(largest) == 0 {
		return nil, fmt.Errorf("page %d image streams could not be read", index)
	}
	return largest, nil
}
