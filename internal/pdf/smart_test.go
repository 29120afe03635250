package pdf

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAnalyzer struct {
	textBased bool
	text      string
	err       error
}

func (f fakeAnalyzer) IsTextBased(string) bool { return f.textBased }
func (f fakeAnalyzer) ExtractText(string) (string, error) {
	return f.text, f.err
}

type fakeRenderer struct {
	pages []PageImage
	err   error
}

func (f fakeRenderer) RenderPages(context.Context, string) ([]PageImage, error) {
	return f.pages, f.err
}

func TestPipeline_TextBased_TakesFastPath(t *testing.T) {
	t.Parallel()

	p := NewPipeline(
		fakeAnalyzer{textBased: true, text: "invoice total 42"},
		fakeRenderer{err: errors.New("must not be called")},
		nil,
	)

	res, err := p.Process(context.Background(), "native.pdf")
	require.NoError(t, err)
	assert.Equal(t, MethodNative, res.Method)
	assert.Equal(t, "invoice total 42", res.Text)
	assert.Empty(t, res.Pages)
}

func TestPipeline_ImageBased_RendersPages(t *testing.T) {
	t.Parallel()

	rendered := []PageImage{
		{Number: 1, PNG: []byte("p1")},
		{Number: 2, PNG: []byte("p2")},
		{Number: 3, PNG: []byte("p3")},
	}
	p := NewPipeline(fakeAnalyzer{textBased: false}, fakeRenderer{pages: rendered}, nil)

	res, err := p.Process(context.Background(), "scanned.pdf")
	require.NoError(t, err)
	assert.Equal(t, MethodVLM, res.Method)
	assert.Empty(t, res.Text)
	require.Len(t, res.Pages, 3)
	for i, page := range res.Pages {
		assert.Equal(t, i+1, page.Number)
	}
}

func TestPipeline_RenderFailurePropagates(t *testing.T) {
	t.Parallel()

	renderErr := errors.New("rasterization backend missing")
	p := NewPipeline(fakeAnalyzer{}, fakeRenderer{err: renderErr}, nil)

	_, err := p.Process(context.Background(), "scanned.pdf")
	assert.ErrorIs(t, err, renderErr)
}

func TestPipeline_ExtractFailurePropagates(t *testing.T) {
	t.Parallel()

	extractErr := errors.New("pdf cannot be opened")
	p := NewPipeline(fakeAnalyzer{textBased: true, err: extractErr}, fakeRenderer{}, nil)

	_, err := p.Process(context.Background(), "native.pdf")
	assert.ErrorIs(t, err, extractErr)
}
