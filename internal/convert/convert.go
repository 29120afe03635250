// Package convert wraps the deprecated document-format conversion toolchain
// (pandoc, libreoffice, calibre, wkhtmltopdf). Each converter's whole
// contract is "produce a PDF, or fail"; the PDF then goes through the normal
// rendering path.
package convert

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/joseph-ayodele/vlm-extract/constants"
	"github.com/joseph-ayodele/vlm-extract/internal/common"
	"github.com/joseph-ayodele/vlm-extract/internal/runner"
)

// Tools names the external binaries; empty fields fall back to the bare
// command name.
type Tools struct {
	Pandoc       string
	Libreoffice  string
	EbookConvert string
	Wkhtmltopdf  string
}

// Converter turns legacy document formats into PDFs in a caller-owned
// directory.
type Converter struct {
	tools  Tools
	runner runner.Runner
	logger *slog.Logger
}

func NewConverter(tools Tools, r runner.Runner, logger *slog.Logger) *Converter {
	if tools.Pandoc == "" {
		tools.Pandoc = "pandoc"
	}
	if tools.Libreoffice == "" {
		tools.Libreoffice = "libreoffice"
	}
	if tools.EbookConvert == "" {
		tools.EbookConvert = "ebook-convert"
	}
	if tools.Wkhtmltopdf == "" {
		tools.Wkhtmltopdf = "wkhtmltopdf"
	}
	if r == nil {
		r = runner.Exec{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Converter{tools: tools, runner: r, logger: logger}
}

// ToPDF converts a legacy document into a PDF inside outDir and returns the
// PDF path. The caller owns outDir and its cleanup.
func (c *Converter) ToPDF(ctx context.Context, path, outDir string) (string, error) {
	ext := constants.ExtOf(path)
	c.logger.Info("convert.start", "path", path, "format", ext)

	switch ext {
	case "DOCX":
		return c.docxToPDF(ctx, path, outDir)
	case "PPTX", "XLSX":
		return c.officeToPDF(ctx, path, outDir)
	case "EPUB":
		return c.epubToPDF(ctx, path, outDir)
	case "HTML", "HTM":
		return c.htmlToPDF(ctx, path, outDir)
	default:
		return "", common.NewErrorf(common.KindProcessing, "unsupported document format: %s", ext)
	}
}

// docxToPDF goes DOCX -> HTML (pandoc) -> PDF (wkhtmltopdf).
func (c *Converter) docxToPDF(ctx context.Context, path, outDir string) (string, error) {
	html, errb, err := c.runner.Run(ctx, c.tools.Pandoc, path, "-t", "html", "-s")
	if err != nil {
		return "", c.toolError("pandoc", "DOCX", path, errb, err)
	}

	htmlPath := filepath.Join(outDir, "input.html")
	if err := os.WriteFile(htmlPath, html, 0o644); err != nil {
		return "", common.WrapError(common.KindProcessing, "write intermediate html", err)
	}
	return c.htmlToPDF(ctx, htmlPath, outDir)
}

// officeToPDF uses libreoffice headless for PPTX and XLSX.
func (c *Converter) officeToPDF(ctx context.Context, path, outDir string) (string, error) {
	_, errb, err := c.runner.Run(ctx, c.tools.Libreoffice,
		"--headless", "--convert-to", "pdf", "--outdir", outDir, path)
	if err != nil {
		return "", c.toolError("libreoffice", constants.ExtOf(path), path, errb, err)
	}

	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	pdfPath := filepath.Join(outDir, base+".pdf")
	if _, err := os.Stat(pdfPath); err != nil {
		return "", common.NewErrorf(common.KindProcessing, "failed to convert %s to PDF", path)
	}
	return pdfPath, nil
}

func (c *Converter) epubToPDF(ctx context.Context, path, outDir string) (string, error) {
	pdfPath := filepath.Join(outDir, "output.pdf")
	_, errb, err := c.runner.Run(ctx, c.tools.EbookConvert, path, pdfPath)
	if err != nil {
		return "", c.toolError("calibre", "EPUB", path, errb, err)
	}
	if _, err := os.Stat(pdfPath); err != nil {
		return "", common.NewErrorf(common.KindProcessing, "failed to convert %s to PDF", path)
	}
	return pdfPath, nil
}

func (c *Converter) htmlToPDF(ctx context.Context, path, outDir string) (string, error) {
	pdfPath := filepath.Join(outDir, "output.pdf")
	_, errb, err := c.runner.Run(ctx, c.tools.Wkhtmltopdf, "--quiet", path, pdfPath)
	if err != nil {
		return "", c.toolError("wkhtmltopdf", "HTML", path, errb, err)
	}
	if _, err := os.Stat(pdfPath); err != nil {
		return "", common.NewErrorf(common.KindProcessing, "failed to convert %s to PDF", path)
	}
	return pdfPath, nil
}

func (c *Converter) toolError(tool, format, path string, stderr []byte, err error) error {
	msg := fmt.Sprintf("failed to convert %s %s", format, path)
	if len(stderr) > 0 {
		msg = fmt.Sprintf("%s: %s", msg, strings.TrimSpace(string(stderr)))
	}
	c.logger.Error("convert.failed", "tool", tool, "path", path, "error", err)
	return common.WrapError(common.KindProcessing, msg, err)
}
