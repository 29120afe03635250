package extract

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// BatchResult is one slot of a batch run, aligned with the input order.
// Exactly one of Text or Err is meaningful.
type BatchResult struct {
	Path string
	Text string
	Err  error
}

// ExtractBatch runs extractions concurrently over many files, bounded by
// the configured batch size. Each outcome lands in its input-index slot;
// a failing file never cancels or affects its siblings. An empty input
// yields an empty output. There is no batch deadline; a run lasts as long
// as its slowest file's retries, unless the caller cancels ctx.
func (s *Service) ExtractBatch(ctx context.Context, paths []string, providerName string) []BatchResult {
	results := make([]BatchResult, len(paths))
	if len(paths) == 0 {
		return results
	}

	g := new(errgroup.Group)
	g.SetLimit(s.cfg.Batch.Size)
	for i, path := range paths {
		g.Go(func() error {
			text, err := s.Extract(ctx, path, providerName)
			// failures are captured in the slot, never returned,
			// so errgroup cannot cancel the siblings
			results[i] = BatchResult{Path: path, Text: text, Err: err}
			return nil
		})
	}
	_ = g.Wait()

	return results
}
