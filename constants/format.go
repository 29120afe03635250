package constants

import (
	"path/filepath"
	"strings"
)

// FileFormat is the coarse classification used to route a file through the
// extraction pipeline.
type FileFormat string

const (
	IMAGE       FileFormat = "IMAGE"
	PDF         FileFormat = "PDF"
	DOCUMENT    FileFormat = "DOCUMENT" // legacy formats converted to PDF externally
	UNSUPPORTED FileFormat = ""
)

// DefaultImageFormats holds the default allowed image extensions.
var DefaultImageFormats = []string{"PNG", "JPEG", "JPG", "GIF", "BMP", "WEBP", "TIFF", "HEIC"}

// DefaultDocumentFormats holds the default allowed document extensions.
// PDF is the only first-class document format; the rest go through the
// deprecated external conversion toolchain.
var DefaultDocumentFormats = []string{"PDF", "DOCX", "PPTX", "XLSX", "EPUB", "HTML"}

// NormalizeExt uppercases an extension and trims the leading dot,
// so ".pdf", "pdf" and "PDF" all map to "PDF".
func NormalizeExt(ext string) string {
	return strings.ToUpper(strings.TrimPrefix(ext, "."))
}

// ExtOf returns the normalized extension of a path.
func ExtOf(path string) string {
	return NormalizeExt(filepath.Ext(path))
}

// HEIC extensions need an external converter before upload; no Go decoder
// is available for them.
var heicExts = map[string]struct{}{"HEIC": {}, "HEIF": {}}

func IsHEICExt(ext string) bool {
	_, ok := heicExts[NormalizeExt(ext)]
	return ok
}
