// classifier.go decides the initial extraction strategy per page.
//
// The decision here is deliberately cheap and coarse: it reads only the
// page's text-layer size and whether the page embeds an image. The finer
// signal, structural extraction yielding nothing or a single column, is
// observed by the orchestrator when the attempt actually runs, and
// triggers the OCR fallback there.
package pdfprocessor

import "go_extractor/core"

// pageSignals is the per-page evidence classification reads. *Document
// implements it; tests substitute fixed signals.
type pageSignals interface {
	PageCount() int
	textTokenCount(index int) int
	HasImageXObjects(index int) bool
}

// minStructuralText is the positioned-character count below which a text
// layer on an image-bearing page is treated as decoration (a stamped page
// number or watermark on a full-page scan) rather than table content.
const minStructuralText = 40

// ClassifyPage returns the initial strategy for the page at the given
// 0-based index. Pages that cannot be classified confidently default to
// OCR, which can read anything a human can see.
func ClassifyPage(doc *Document, index int) core.ExtractionMethod {
	return classifyPage(doc, index)
}

func classifyPage(doc pageSignals, index int) core.ExtractionMethod {
	if index < 0 || index >= doc.PageCount() {
		return core.MethodOCR
	}
	tokens := doc.textTokenCount(index)
	if tokens == 0 {
		return core.MethodOCR
	}
	if doc.HasImageXObjects(index) && tokens < minStructuralText {
		return core.MethodOCR
	}
	return core.MethodStructural
}
