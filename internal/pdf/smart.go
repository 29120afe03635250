package pdf

import (
	"context"
	"log/slog"
)

// Method tags tell callers which path produced a pipeline result.
const (
	MethodNative = "native" // embedded text, no VLM call
	MethodVLM    = "vlm"    // rasterized pages for provider upload
)

// Result is the outcome of the smart pipeline: either extracted text
// (MethodNative) or rendered page images (MethodVLM), never both.
type Result struct {
	Method string
	Text   string
	Pages  []PageImage
}

// TextAnalyzer is the analyzer seam the pipeline depends on.
type TextAnalyzer interface {
	IsTextBased(path string) bool
	ExtractText(path string) (string, error)
}

// PageRenderer is the renderer seam the pipeline depends on.
type PageRenderer interface {
	RenderPages(ctx context.Context, path string) ([]PageImage, error)
}

// Pipeline routes a PDF down the cheap embedded-text path when the analyzer
// approves it, and falls back to rasterization otherwise. This is the
// central cost control: machine-generated PDFs never reach the VLM.
type Pipeline struct {
	analyzer TextAnalyzer
	renderer PageRenderer
	logger   *slog.Logger
}

func NewPipeline(analyzer TextAnalyzer, renderer PageRenderer, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{analyzer: analyzer, renderer: renderer, logger: logger}
}

// Process decides the path for one PDF. A text-based PDF crossing the ratio
// threshold always takes the fast path, even when its embedded text is
// partial; the method tag keeps the decision auditable for callers.
func (p *Pipeline) Process(ctx context.Context, path string) (Result, error) {
	if p.analyzer.IsTextBased(path) {
		text, err := p.analyzer.ExtractText(path)
		if err != nil {
			return Result{}, err
		}
		p.logger.Info("pdf.pipeline.fastpath", "path", path, "chars", len(text))
		return Result{Method: MethodNative, Text: text}, nil
	}

	pages, err := p.renderer.RenderPages(ctx, path)
	if err != nil {
		return Result{}, err
	}
	p.logger.Info("pdf.pipeline.vlm", "path", path, "pages", len(pages))
	return Result{Method: MethodVLM, Pages: pages}, nil
}
