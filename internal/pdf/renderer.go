package pdf

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/joseph-ayodele/vlm-extract/internal/common"
	"github.com/joseph-ayodele/vlm-extract/internal/runner"
)

// PageImage is one rasterized page: 1-based page number and PNG bytes.
// Produced here, consumed once by a provider adapter, then discarded.
type PageImage struct {
	Number int
	PNG    []byte
}

// Renderer rasterizes PDF pages to PNG via pdftoppm.
type Renderer struct {
	pdftoppm string
	dpi      int
	runner   runner.Runner
	logger   *slog.Logger
}

func NewRenderer(pdftoppm string, dpi int, r runner.Runner, logger *slog.Logger) *Renderer {
	if pdftoppm == "" {
		pdftoppm = "pdftoppm"
	}
	if dpi <= 0 {
		dpi = 200
	}
	if r == nil {
		r = runner.Exec{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Renderer{pdftoppm: pdftoppm, dpi: dpi, runner: r, logger: logger}
}

// RenderPages rasterizes every page at the configured DPI, in document
// order. It never returns a partial list: any rendering error fails the
// whole call.
func (r *Renderer) RenderPages(ctx context.Context, path string) ([]PageImage, error) {
	start := time.Now()

	tmpDir, err := os.MkdirTemp("", "vlmx-pp-*")
	if err != nil {
		return nil, common.WrapError(common.KindProcessing, "create temp dir", err)
	}
	defer func() {
		if rmErr := os.RemoveAll(tmpDir); rmErr != nil {
			r.logger.Warn("pdf.render.cleanup_failed", "dir", tmpDir, "error", rmErr)
		}
	}()

	prefix := filepath.Join(tmpDir, "page")
	// pdftoppm -r <dpi> -png <in.pdf> <tmp/page>
	_, errb, err := r.runner.Run(ctx, r.pdftoppm, "-r", fmt.Sprintf("%d", r.dpi), "-png", path, prefix)
	if err != nil {
		return nil, common.WrapError(common.KindProcessing,
			fmt.Sprintf("failed to render PDF %s: %s", path, truncateStderr(errb)), err)
	}

	// collect generated pngs (prefix-1.png, prefix-2.png, ...);
	// pdftoppm zero-pads the page index so lexical order is page order
	matches, _ := filepath.Glob(prefix + "-*.png")
	sort.Strings(matches)
	if len(matches) == 0 {
		return nil, common.NewErrorf(common.KindProcessing, "no pages rendered from %s", path)
	}

	pages := make([]PageImage, 0, len(matches))
	for i, m := range matches {
		data, err := os.ReadFile(m)
		if err != nil {
			return nil, common.WrapError(common.KindProcessing, fmt.Sprintf("read rendered page %s", m), err)
		}
		pages = append(pages, PageImage{Number: i + 1, PNG: data})
	}

	r.logger.Debug("pdf.render.ok",
		"path", path,
		"pages", len(pages),
		"dpi", r.dpi,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return pages, nil
}

// PageCount returns the number of pages, or an error for an unreadable file.
func (r *Renderer) PageCount(path string) (int, error) {
	n, err := api.PageCountFile(path)
	if err != nil {
		return 0, common.WrapError(common.KindProcessing, fmt.Sprintf("failed to read PDF %s", path), err)
	}
	return n, nil
}

// IsValid reports whether the file is a readable PDF with at least one page.
// It never returns an error.
func (r *Renderer) IsValid(path string) bool {
	n, err := api.PageCountFile(path)
	return err == nil && n > 0
}

func truncateStderr(b []byte) string {
	const max = 512
	if len(b) <= max {
		return string(b)
	}
	return string(b[:max]) + "...(truncated)"
}
