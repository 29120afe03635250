// Package extract is the top-level orchestrator: it resolves a provider,
// validates the input, routes PDFs through the smart pipeline, and feeds
// page images into the provider adapter.
package extract

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/vlm-extract/constants"
	"github.com/joseph-ayodele/vlm-extract/internal/common"
	"github.com/joseph-ayodele/vlm-extract/internal/convert"
	"github.com/joseph-ayodele/vlm-extract/internal/files"
	"github.com/joseph-ayodele/vlm-extract/internal/imaging"
	"github.com/joseph-ayodele/vlm-extract/internal/pdf"
	"github.com/joseph-ayodele/vlm-extract/internal/provider"
	"github.com/joseph-ayodele/vlm-extract/internal/runner"
)

// seams so tests can stub the heavy collaborators
type pdfPipeline interface {
	Process(ctx context.Context, path string) (pdf.Result, error)
}

type pageRenderer interface {
	RenderPages(ctx context.Context, path string) ([]pdf.PageImage, error)
}

type docConverter interface {
	ToPDF(ctx context.Context, path, outDir string) (string, error)
}

type imageLoader interface {
	LoadPNG(ctx context.Context, path string) ([]byte, error)
}

type providerFactory func(st provider.Settings, logger *slog.Logger) (provider.Provider, error)

// Service wires the pipeline together around one configuration snapshot.
type Service struct {
	cfg        *common.Config
	logger     *slog.Logger
	classifier files.Classifier
	validator  files.Validator
	pipeline   pdfPipeline
	renderer   pageRenderer
	converter  docConverter
	images     imageLoader
	newProv    providerFactory
}

func NewService(cfg *common.Config, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	classifier := files.NewClassifier(cfg.File.ImageFormats, cfg.File.DocumentFormats)
	run := runner.Exec{}
	renderer := pdf.NewRenderer(cfg.Tools.Pdftoppm, cfg.PDF.RenderDPI, run, logger)
	analyzer := pdf.NewAnalyzer(cfg.PDF.TextRatio, cfg.PDF.MinChars, logger)

	return &Service{
		cfg:        cfg,
		logger:     logger,
		classifier: classifier,
		validator:  files.NewValidator(classifier, cfg.File.MaxFileSizeMB),
		pipeline:   pdf.NewPipeline(analyzer, renderer, logger),
		renderer:   renderer,
		converter: convert.NewConverter(convert.Tools{
			Pandoc:       cfg.Tools.Pandoc,
			Libreoffice:  cfg.Tools.Libreoffice,
			EbookConvert: cfg.Tools.EbookConvert,
			Wkhtmltopdf:  cfg.Tools.Wkhtmltopdf,
		}, run, logger),
		images:  imaging.NewNormalizer(cfg.Tools.HeicConverter, run, logger),
		newProv: provider.New,
	}
}

// resolveProvider maps an explicit provider name (or the configured default
// when empty) to its settings.
func (s *Service) resolveProvider(name string) (provider.Settings, error) {
	if name == "" {
		name = s.cfg.VLM.Provider
	}
	id, err := provider.ParseID(name)
	if err != nil {
		return provider.Settings{}, err
	}
	return provider.Settings{
		ID:           id,
		BaseURL:      s.cfg.VLM.BaseURL,
		Model:        s.cfg.VLM.Model,
		APIKey:       s.cfg.VLM.APIKey,
		Timeout:      s.cfg.VLM.Timeout,
		MaxRetries:   s.cfg.VLM.MaxRetries,
		RateLimitRPS: s.cfg.VLM.RateLimitRPS,
	}, nil
}

// Extract extracts text from one file. providerName selects the backend;
// empty means the configured default.
func (s *Service) Extract(ctx context.Context, path, providerName string) (string, error) {
	jobID := uuid.New().String()
	start := time.Now()
	s.logger.Info("extract.start", "job_id", jobID, "path", path)

	st, err := s.resolveProvider(providerName)
	if err != nil {
		return "", err
	}
	prov, err := s.newProv(st, s.logger)
	if err != nil {
		return "", err
	}

	if ok, reason := s.validator.Validate(path); !ok {
		s.logger.Warn("extract.invalid_file", "job_id", jobID, "path", path, "reason", reason)
		return "", common.NewError(common.KindValidation, reason)
	}
	if desc, err := files.Describe(path); err == nil {
		s.logger.Debug("extract.file", "job_id", jobID, "ext", desc.Ext, "size_bytes", desc.Size)
	}

	var text string
	switch s.classifier.Classify(path) {
	case constants.PDF:
		text, err = s.extractPDF(ctx, jobID, prov, path)
	case constants.DOCUMENT:
		text, err = s.extractDocument(ctx, jobID, prov, path)
	case constants.IMAGE:
		text, err = s.extractImage(ctx, prov, path)
	default:
		// unreachable after validation; kept for safety
		return "", common.NewError(common.KindValidation, "Unsupported file format")
	}
	if err != nil {
		s.logger.Error("extract.failed",
			"job_id", jobID,
			"path", path,
			"provider", prov.Name(),
			"error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return "", err
	}

	s.logger.Info("extract.ok",
		"job_id", jobID,
		"path", path,
		"provider", prov.Name(),
		"chars", len(text),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return text, nil
}

// extractPDF runs the smart pipeline; the native fast path returns without
// any provider call.
func (s *Service) extractPDF(ctx context.Context, jobID string, prov provider.Provider, path string) (string, error) {
	res, err := s.pipeline.Process(ctx, path)
	if err != nil {
		return "", err
	}
	if res.Method == pdf.MethodNative {
		s.logger.Info("extract.pdf.fastpath", "job_id", jobID, "path", path)
		return res.Text, nil
	}
	return s.extractPages(ctx, prov, res.Pages)
}

// extractDocument converts a legacy format to PDF, then rasterizes it and
// runs the page loop. The converted PDF always takes the VLM path; layout
// fidelity is the whole point of converting.
func (s *Service) extractDocument(ctx context.Context, jobID string, prov provider.Provider, path string) (string, error) {
	tmpDir, err := os.MkdirTemp("", "vlmx-doc-*")
	if err != nil {
		return "", common.WrapError(common.KindProcessing, "create temp dir", err)
	}
	defer func() { _ = os.RemoveAll(tmpDir) }()

	pdfPath, err := s.converter.ToPDF(ctx, path, tmpDir)
	if err != nil {
		return "", err
	}
	s.logger.Info("extract.document.converted", "job_id", jobID, "path", path, "pdf", pdfPath)

	pages, err := s.renderer.RenderPages(ctx, pdfPath)
	if err != nil {
		return "", err
	}
	return s.extractPages(ctx, prov, pages)
}

// extractImage loads one image and runs the single-element page loop.
func (s *Service) extractImage(ctx context.Context, prov provider.Provider, path string) (string, error) {
	data, err := s.images.LoadPNG(ctx, path)
	if err != nil {
		return "", err
	}
	return s.extractPages(ctx, prov, []pdf.PageImage{{Number: 1, PNG: data}})
}

// extractPages runs the provider over each page image. On a single-page
// document a failure propagates; on a multi-page document it is rendered
// inline so the rest of the document still comes back.
func (s *Service) extractPages(ctx context.Context, prov provider.Provider, pages []pdf.PageImage) (string, error) {
	multi := len(pages) > 1
	var blocks []string
	for _, page := range pages {
		text, err := prov.ExtractTextFromImage(ctx, page.PNG)
		if err != nil {
			if !multi {
				return "", err
			}
			blocks = append(blocks, fmt.Sprintf("Page %d: Error extracting text - %v", page.Number, err))
			continue
		}
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		if multi {
			blocks = append(blocks, fmt.Sprintf("Page %d:\n%s", page.Number, text))
		} else {
			blocks = append(blocks, text)
		}
	}
	if len(blocks) == 0 {
		return pdf.NoTextExtracted, nil
	}
	return strings.Join(blocks, "\n\n"), nil
}

// HealthCheck reports whether the named provider (default when empty) is
// reachable. Configuration failures count as unhealthy.
func (s *Service) HealthCheck(ctx context.Context, providerName string) bool {
	st, err := s.resolveProvider(providerName)
	if err != nil {
		return false
	}
	prov, err := s.newProv(st, s.logger)
	if err != nil {
		return false
	}
	return prov.HealthCheck(ctx)
}
