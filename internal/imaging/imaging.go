// Package imaging normalizes input images to PNG before provider upload.
// Provider vision endpoints are fed PNG data URIs, so formats without
// first-class support are re-encoded locally, and HEIC goes through an
// external converter.
package imaging

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
	"golang.org/x/image/webp"

	"github.com/joseph-ayodele/vlm-extract/constants"
	"github.com/joseph-ayodele/vlm-extract/internal/common"
	"github.com/joseph-ayodele/vlm-extract/internal/runner"
)

// Normalizer converts supported image files into provider-ready PNG bytes.
type Normalizer struct {
	heicConverter string
	runner        runner.Runner
	logger        *slog.Logger
}

func NewNormalizer(heicConverter string, r runner.Runner, logger *slog.Logger) *Normalizer {
	if r == nil {
		r = runner.Exec{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Normalizer{heicConverter: heicConverter, runner: r, logger: logger}
}

// LoadPNG reads an image file and returns PNG-encoded bytes. PNG, JPEG and
// GIF pass through untouched since the providers accept them inline. BMP, TIFF
// and WEBP are decoded and re-encoded. HEIC is converted externally.
func (n *Normalizer) LoadPNG(ctx context.Context, path string) ([]byte, error) {
	ext := constants.ExtOf(path)

	if constants.IsHEICExt(ext) {
		return n.convertHEIC(ctx, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, common.WrapError(common.KindProcessing, fmt.Sprintf("read image %s", path), err)
	}

	var img image.Image
	switch ext {
	case "BMP":
		img, err = bmp.Decode(bytes.NewReader(data))
	case "TIFF", "TIF":
		img, err = tiff.Decode(bytes.NewReader(data))
	case "WEBP":
		img, err = webp.Decode(bytes.NewReader(data))
	default:
		// PNG / JPEG / GIF upload as-is
		return data, nil
	}
	if err != nil {
		return nil, common.WrapError(common.KindProcessing, fmt.Sprintf("decode %s image %s", ext, path), err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, common.WrapError(common.KindProcessing, fmt.Sprintf("encode %s as png", path), err)
	}
	n.logger.Debug("imaging.reencoded", "path", path, "from", ext, "bytes", buf.Len())
	return buf.Bytes(), nil
}

// convertHEIC shells out to the configured converter and reads back the PNG.
func (n *Normalizer) convertHEIC(ctx context.Context, path string) ([]byte, error) {
	tmpDir, err := os.MkdirTemp("", "vlmx-heic-*")
	if err != nil {
		return nil, common.WrapError(common.KindProcessing, "create temp dir", err)
	}
	defer func() { _ = os.RemoveAll(tmpDir) }()
	out := filepath.Join(tmpDir, "image.png")

	switch n.heicConverter {
	case "heif-convert":
		if _, errb, err := n.runner.Run(ctx, "heif-convert", path, out); err != nil {
			return nil, common.WrapError(common.KindProcessing,
				fmt.Sprintf("heif-convert failed: %s", string(errb)), err)
		}
	case "magick":
		if _, errb, err := n.runner.Run(ctx, "magick", path, out); err != nil {
			return nil, common.WrapError(common.KindProcessing,
				fmt.Sprintf("magick convert failed: %s", string(errb)), err)
		}
	case "sips":
		if _, errb, err := n.runner.Run(ctx, "sips", "-s", "format", "png", path, "--out", out); err != nil {
			return nil, common.WrapError(common.KindProcessing,
				fmt.Sprintf("sips convert failed: %s", string(errb)), err)
		}
	default:
		return nil, common.NewError(common.KindProcessing,
			"HEIC not supported: set HEIC_CONVERTER to one of: heif-convert | magick | sips")
	}

	data, err := os.ReadFile(out)
	if err != nil {
		return nil, common.WrapError(common.KindProcessing, "read converted HEIC image", err)
	}
	return data, nil
}
