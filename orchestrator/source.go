// source.go defines the seam between the orchestrator and the PDF layer,
// plus the production implementation backed by pdfprocessor. Tests
// substitute stub sources to drive pipeline scenarios without PDF
// fixtures.
package orchestrator

import (
	"strings"

	"go_extractor/core"
	"go_extractor/logging"
	"go_extractor/pdfprocessor"
)

// PageSource is per-page access to one opened document.
//
// Implementations must be safe for concurrent page access; the
// orchestrator extracts pages in parallel.
type PageSource interface {
	// PageCount returns the number of pages.
	PageCount() int

	// Classify decides the extraction method for one page.
	Classify(pageIndex int) core.ExtractionMethod

	// ExtractStructural runs structural table extraction on one page.
	// Returns core.ErrPageExtraction when the page yields nothing usable.
	ExtractStructural(pageIndex int) (*core.PageTableFragment, error)

	// PageImage returns the page's raster image for OCR.
	PageImage(pageIndex int) ([]byte, error)

	// DocumentText returns the document's plain text, used for legend
	// extraction. May be empty for scanned documents.
	DocumentText() string

	// Close releases the document.
	Close() error
}

// DocumentOpener opens PDF bytes into a PageSource. Open returns
// core.ErrUnreadableDocument for corrupt, encrypted, or zero-page input.
type DocumentOpener interface {
	Open(data []byte) (PageSource, error)
}

// PDFOpener is the production DocumentOpener backed by pdfprocessor.
type PDFOpener struct {
	policy core.ExtractionPolicy
	config pdfprocessor.ExtractorConfig
	logger *logging.Logger
}

// NewPDFOpener creates a PDFOpener with the given extraction policy.
func NewPDFOpener(policy core.ExtractionPolicy, config pdfprocessor.ExtractorConfig, logger *logging.Logger) *PDFOpener {
	return &PDFOpener{policy: policy, config: config, logger: logger}
}

// Open parses the PDF and wires up a structural extractor for it.
func (o *PDFOpener) Open(data []byte) (PageSource, error) {
	doc, err := pdfprocessor.OpenDocument(data)
	if err != nil {
		return nil, err
	}
	return &pdfSource{
		doc:       doc,
		extractor: pdfprocessor.NewExtractor(o.policy, o.logger, o.config),
	}, nil
}

// pdfSource adapts pdfprocessor.Document to the PageSource seam.
type pdfSource struct {
	doc       *pdfprocessor.Document
	extractor *pdfprocessor.Extractor
}

func (s *pdfSource) PageCount() int {
	return s.doc.PageCount()
}

func (s *pdfSource) Classify(pageIndex int) core.ExtractionMethod {
	return pdfprocessor.ClassifyPage(s.doc, pageIndex)
}

func (s *pdfSource) ExtractStructural(pageIndex int) (*core.PageTableFragment, error) {
	return s.extractor.ExtractPage(s.doc, pageIndex)
}

func (s *pdfSource) PageImage(pageIndex int) ([]byte, error) {
	return s.doc.PageImage(pageIndex)
}

// DocumentText concatenates the text layer of every page. Legend lines
// usually trail the table on its last page; handing the analytics engine
// the whole text keeps the search simple and the parsing strict.
func (s *pdfSource) DocumentText() string {
	var b strings.Builder
	for i := 0; i < s.doc.PageCount(); i++ {
		if text := s.doc.PageText(i); text != "" {
			b.WriteString(text)
			b.WriteString("\n")
		}
	}
	return b.String()
}

func (s *pdfSource) Close() error {
	return nil
}
