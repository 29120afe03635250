// Package vlmextract extracts text from images and documents by routing
// file content through Vision Language Model backends (Ollama, OpenAI),
// with a native fast path for PDFs that already carry embedded text.
//
// Configuration is read once from the environment (and an optional .env
// file) the first time the package is used; see internal/common for the
// knobs. All entry points are safe for concurrent use.
package vlmextract

import (
	"context"
	"log/slog"
	"sync"

	"github.com/joseph-ayodele/vlm-extract/internal/common"
	"github.com/joseph-ayodele/vlm-extract/internal/extract"
	"github.com/joseph-ayodele/vlm-extract/internal/provider"
)

// Result is one slot of a batch extraction, aligned with the input order.
type Result struct {
	Path string
	Text string
	Err  error
}

// Option adjusts a single call.
type Option func(*callOptions)

type callOptions struct {
	provider string
}

// WithProvider selects the backend for this call instead of the configured
// default. Unknown names fail with an "Unsupported provider" error.
func WithProvider(name string) Option {
	return func(o *callOptions) { o.provider = name }
}

var (
	defaultOnce    sync.Once
	defaultService *extract.Service
)

func service() *extract.Service {
	defaultOnce.Do(func() {
		defaultService = extract.NewService(common.LoadConfig(), slog.Default())
	})
	return defaultService
}

func apply(opts []Option) callOptions {
	var o callOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// ExtractText extracts text from a single file.
func ExtractText(ctx context.Context, path string, opts ...Option) (string, error) {
	o := apply(opts)
	return service().Extract(ctx, path, o.provider)
}

// ExtractTextBatch extracts text from many files concurrently. The returned
// slice has one entry per input path, in input order; per-file failures are
// captured in their slot and never abort the batch.
func ExtractTextBatch(ctx context.Context, paths []string, opts ...Option) []Result {
	o := apply(opts)
	batch := service().ExtractBatch(ctx, paths, o.provider)
	out := make([]Result, len(batch))
	for i, r := range batch {
		out[i] = Result{Path: r.Path, Text: r.Text, Err: r.Err}
	}
	return out
}

// HealthCheck reports whether the selected provider is reachable.
func HealthCheck(ctx context.Context, opts ...Option) bool {
	o := apply(opts)
	return service().HealthCheck(ctx, o.provider)
}

// Providers lists the declared provider identifiers.
func Providers() []string {
	ids := provider.IDs()
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = string(id)
	}
	return out
}

// SupportedFormats returns the configured extension allow-lists, keyed by
// "images" and "documents".
func SupportedFormats() map[string][]string {
	cfg := common.LoadConfig()
	return map[string][]string{
		"images":    cfg.File.ImageFormats,
		"documents": cfg.File.DocumentFormats,
	}
}
