package extract

import (
	"context"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/vlm-extract/internal/common"
	"github.com/joseph-ayodele/vlm-extract/internal/pdf"
)

func TestExtractBatch_Empty(t *testing.T) {
	t.Parallel()

	s := newTestService(&fakeProvider{})
	assert.Empty(t, s.ExtractBatch(context.Background(), nil, ""))
	assert.Empty(t, s.ExtractBatch(context.Background(), []string{}, ""))
}

func TestExtractBatch_OrderPreservedWithIsolatedFailure(t *testing.T) {
	t.Parallel()

	prov := &fakeProvider{extract: func(_ context.Context, image []byte) (string, error) {
		return "text from " + string(image), nil
	}}
	s := newTestService(prov)
	s.images = fakeLoader{png: []byte("img")}

	paths := []string{
		writeTestFile(t, "a.png"),
		filepath.Join(t.TempDir(), "missing.png"),
		writeTestFile(t, "c.jpg"),
	}
	results := s.ExtractBatch(context.Background(), paths, "")
	require.Len(t, results, 3)

	assert.Equal(t, paths[0], results[0].Path)
	require.NoError(t, results[0].Err)
	assert.Equal(t, "text from img", results[0].Text)

	assert.Equal(t, paths[1], results[1].Path)
	require.Error(t, results[1].Err)
	assert.True(t, common.IsValidation(results[1].Err))
	assert.Contains(t, results[1].Err.Error(), "File not found")

	assert.Equal(t, paths[2], results[2].Path)
	require.NoError(t, results[2].Err)
	assert.Equal(t, "text from img", results[2].Text)
}

func TestExtractBatch_AllFail(t *testing.T) {
	t.Parallel()

	provErr := common.NewError(common.KindTransient, "provider unreachable")
	prov := &fakeProvider{extract: func(context.Context, []byte) (string, error) {
		return "", provErr
	}}
	s := newTestService(prov)
	s.images = fakeLoader{png: []byte("img")}

	paths := []string{writeTestFile(t, "a.png"), writeTestFile(t, "b.png")}
	results := s.ExtractBatch(context.Background(), paths, "")
	require.Len(t, results, 2)
	for i, res := range results {
		assert.Equal(t, paths[i], res.Path)
		assert.ErrorIs(t, res.Err, provErr)
	}
}

func TestExtractBatch_RespectsConcurrencyLimit(t *testing.T) {
	t.Parallel()

	var active, peak atomic.Int32
	prov := &fakeProvider{extract: func(context.Context, []byte) (string, error) {
		n := active.Add(1)
		defer active.Add(-1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		return "ok", nil
	}}
	s := newTestService(prov) // Batch.Size = 2
	s.images = fakeLoader{png: []byte("img")}

	paths := make([]string, 8)
	for i := range paths {
		paths[i] = writeTestFile(t, "f.png")
	}
	results := s.ExtractBatch(context.Background(), paths, "")
	require.Len(t, results, 8)
	for _, res := range results {
		require.NoError(t, res.Err)
		assert.Equal(t, "ok", res.Text)
	}
	assert.LessOrEqual(t, peak.Load(), int32(2))
}

func TestExtractBatch_MixedDocumentTypes(t *testing.T) {
	t.Parallel()

	prov := &fakeProvider{extract: func(context.Context, []byte) (string, error) {
		return "vlm text", nil
	}}
	s := newTestService(prov)
	s.images = fakeLoader{png: []byte("img")}
	s.pipeline = fakePipeline{res: pdf.Result{Method: pdf.MethodNative, Text: "native text"}}

	paths := []string{writeTestFile(t, "a.pdf"), writeTestFile(t, "b.png")}
	results := s.ExtractBatch(context.Background(), paths, "")
	require.Len(t, results, 2)
	assert.Equal(t, "native text", results[0].Text)
	assert.Equal(t, "vlm text", results[1].Text)
}
