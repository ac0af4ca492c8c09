package pdf

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// ErrUnparsable marks a document the underlying parsers rejected
// (corrupt, encrypted or not a PDF at all). Callers classify it as a
// client input error, distinct from read failures.
var ErrUnparsable = errors.New("unparsable document")

// TextExtractor converts a materialized document into a single text blob
// by concatenating per-page text in document order.
type TextExtractor struct {
	maxTextSize int
}

// NewTextExtractor creates a text extractor with a bound on accumulated text.
func NewTextExtractor() *TextExtractor {
	return &TextExtractor{
		maxTextSize: 10 * 1024 * 1024, // 10MB text limit
	}
}

// ExtractText extracts the plain text of every page. A document with no
// extractable text yields an empty string, not an error; missing-content
// handling belongs to field validation downstream. Parser failures are
// translated into ErrUnparsable.
func (e *TextExtractor) ExtractText(doc *Document) (text string, err error) {
	// The underlying parsers are known to panic on some malformed inputs.
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = fmt.Errorf("%w: parser panic: %v", ErrUnparsable, r)
		}
	}()

	if doc == nil || doc.Size() == 0 {
		return "", fmt.Errorf("%w: empty document", ErrUnparsable)
	}

	// Structural pass first so a corrupt file fails with one well-defined
	// error instead of a page-level parser failure mid-extraction.
	pageCount, err := e.pageCount(doc)
	if err != nil {
		return "", err
	}

	reader, err := pdf.NewReader(doc.ReaderAt(), doc.Size())
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnparsable, err)
	}

	var builder strings.Builder
	for pageNum := 1; pageNum <= pageCount; pageNum++ {
		page := reader.Page(pageNum)
		if page.V.IsNull() {
			continue
		}

		content, err := page.GetPlainText(nil)
		if err != nil {
			// Continue with other pages even if one fails
			continue
		}

		if builder.Len()+len(content) > e.maxTextSize {
			remaining := e.maxTextSize - builder.Len()
			if remaining > 0 {
				builder.WriteString(content[:remaining])
			}
			break
		}

		builder.WriteString(content)
		builder.WriteString("\n")
	}

	return builder.String(), nil
}

// pageCount validates document structure with pdfcpu and returns the page count.
func (e *TextExtractor) pageCount(doc *Document) (int, error) {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	ctx, err := api.ReadContext(doc.Reader(), conf)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrUnparsable, err)
	}
	if err := api.ValidateContext(ctx); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrUnparsable, err)
	}
	if ctx.PageCount < 1 {
		return 0, fmt.Errorf("%w: document has no pages", ErrUnparsable)
	}

	return ctx.PageCount, nil
}
