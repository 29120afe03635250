package imaging

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/bmp"

	"github.com/joseph-ayodele/vlm-extract/internal/common"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testImage() image.Image {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for x := 0; x < 4; x++ {
		img.Set(x, x, color.RGBA{R: 255, A: 255})
	}
	return img
}

func TestLoadPNG_PassthroughFormats(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, testImage()))
	path := filepath.Join(t.TempDir(), "plain.PNG")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))

	n := NewNormalizer("magick", nil, discardLogger())
	data, err := n.LoadPNG(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, buf.Bytes(), data, "png bytes upload untouched")
}

func TestLoadPNG_ReencodesBMP(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, bmp.Encode(&buf, testImage()))
	path := filepath.Join(t.TempDir(), "scan.bmp")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))

	n := NewNormalizer("magick", nil, discardLogger())
	data, err := n.LoadPNG(context.Background(), path)
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err, "output must be valid png")
	assert.Equal(t, image.Rect(0, 0, 4, 4), img.Bounds())
}

func TestLoadPNG_CorruptBMP(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "broken.bmp")
	require.NoError(t, os.WriteFile(path, []byte("not a bitmap"), 0o644))

	n := NewNormalizer("magick", nil, discardLogger())
	_, err := n.LoadPNG(context.Background(), path)
	require.Error(t, err)
	assert.True(t, common.IsProcessing(err))
}

func TestLoadPNG_MissingFile(t *testing.T) {
	t.Parallel()

	n := NewNormalizer("magick", nil, discardLogger())
	_, err := n.LoadPNG(context.Background(), filepath.Join(t.TempDir(), "gone.jpg"))
	require.Error(t, err)
	assert.True(t, common.IsProcessing(err))
}

// heicRunner records the converter invocation and writes the output file the
// way the real tool would.
type heicRunner struct {
	name string
	args []string
	err  error
}

func (r *heicRunner) Run(_ context.Context, name string, args ...string) ([]byte, []byte, error) {
	r.name = name
	r.args = args
	if r.err != nil {
		return nil, []byte("conversion error"), r.err
	}
	// the output path is the last argument for every supported converter
	out := args[len(args)-1]
	var buf bytes.Buffer
	if err := png.Encode(&buf, testImage()); err != nil {
		return nil, nil, err
	}
	return nil, nil, os.WriteFile(out, buf.Bytes(), 0o644)
}

func TestLoadPNG_HEICViaConverter(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "photo.heic")
	require.NoError(t, os.WriteFile(path, []byte("heic-bytes"), 0o644))

	run := &heicRunner{}
	n := NewNormalizer("heif-convert", run, discardLogger())
	data, err := n.LoadPNG(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "heif-convert", run.name)
	assert.Equal(t, path, run.args[0])

	_, err = png.Decode(bytes.NewReader(data))
	assert.NoError(t, err)
}

func TestLoadPNG_HEICConverterFailure(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "photo.heic")
	require.NoError(t, os.WriteFile(path, []byte("heic-bytes"), 0o644))

	run := &heicRunner{err: errors.New("exit status 1")}
	n := NewNormalizer("magick", run, discardLogger())
	_, err := n.LoadPNG(context.Background(), path)
	require.Error(t, err)
	assert.True(t, common.IsProcessing(err))
	assert.Contains(t, err.Error(), "magick convert failed")
}

func TestLoadPNG_HEICUnknownConverter(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "photo.heic")
	require.NoError(t, os.WriteFile(path, []byte("heic-bytes"), 0o644))

	n := NewNormalizer("imagemagick7", &heicRunner{}, discardLogger())
	_, err := n.LoadPNG(context.Background(), path)
	require.Error(t, err)
	assert.True(t, common.IsProcessing(err))
	assert.Contains(t, err.Error(), "set HEIC_CONVERTER")
}
