// Package pdf implements the two PDF paths of the extraction pipeline:
// direct embedded-text extraction for machine-generated documents and page
// rasterization for scanned ones.
package pdf

import (
	"fmt"
	"log/slog"
	"strings"

	ledpdf "github.com/ledongthuc/pdf"

	"github.com/joseph-ayodele/vlm-extract/internal/common"
)

// Analyzer decides whether a PDF carries enough embedded text to skip
// rasterization, and extracts that text when it does.
type Analyzer struct {
	textRatio float64
	minChars  int
	logger    *slog.Logger
}

func NewAnalyzer(textRatio float64, minChars int, logger *slog.Logger) *Analyzer {
	if logger == nil {
		logger = slog.Default()
	}
	if textRatio <= 0 {
		textRatio = 0.1
	}
	if minChars <= 0 {
		minChars = 50
	}
	return &Analyzer{textRatio: textRatio, minChars: minChars, logger: logger}
}

// IsTextBased reports whether the PDF has enough embedded text to extract
// directly. Any parse failure yields false; it never returns an error.
// The character floor guards against a single stray text fragment in an
// otherwise scanned document.
func (a *Analyzer) IsTextBased(path string) (textBased bool) {
	defer func() {
		// the pdf parser panics on some malformed files
		if r := recover(); r != nil {
			a.logger.Warn("pdf.analyze.panic", "path", path, "panic", r)
			textBased = false
		}
	}()

	f, r, err := ledpdf.Open(path)
	if err != nil {
		return false
	}
	defer func() { _ = f.Close() }()

	pages := r.NumPage()
	if pages <= 0 {
		return false
	}

	totalChars := 0
	for i := 1; i <= pages; i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		text, err := p.GetPlainText(nil)
		if err != nil {
			continue
		}
		totalChars += len(strings.TrimSpace(text))
	}

	ratio := float64(totalChars) / (float64(pages) * 100.0)
	a.logger.Debug("pdf.analyze",
		"path", path,
		"pages", pages,
		"chars", totalChars,
		"ratio", ratio,
	)
	return ratio >= a.textRatio && totalChars > a.minChars
}

// ExtractText extracts embedded text per page, labeling pages when there is
// more than one and joining non-empty pages with a blank line. If every page
// is empty it returns the sentinel "No text could be extracted", which is a
// success value, not an error. Only a document that cannot be opened is an error.
func (a *Analyzer) ExtractText(path string) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = common.NewErrorf(common.KindProcessing, "failed to parse PDF %s: %v", path, r)
		}
	}()

	f, r, err := ledpdf.Open(path)
	if err != nil {
		return "", common.WrapError(common.KindProcessing, fmt.Sprintf("failed to open PDF %s", path), err)
	}
	defer func() { _ = f.Close() }()

	pages := r.NumPage()
	var blocks []string
	for i := 1; i <= pages; i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		pageText, err := p.GetPlainText(nil)
		if err != nil {
			continue
		}
		pageText = strings.TrimSpace(pageText)
		if pageText == "" {
			continue
		}
		if pages > 1 {
			blocks = append(blocks, fmt.Sprintf("Page %d:\n%s", i, pageText))
		} else {
			blocks = append(blocks, pageText)
		}
	}

	if len(blocks) == 0 {
		return NoTextExtracted, nil
	}
	return strings.Join(blocks, "\n\n"), nil
}

// NoTextExtracted is the sentinel returned when extraction succeeds but
// finds nothing. Callers must not conflate it with a failure.
const NoTextExtracted = "No text could be extracted"
