// Package files classifies and validates input files before they enter the
// extraction pipeline.
package files

import (
	"github.com/joseph-ayodele/vlm-extract/constants"
)

// Classifier maps file extensions to a coarse format, driven by the
// configured allow-lists.
type Classifier struct {
	images    map[string]struct{}
	documents map[string]struct{}
}

// NewClassifier builds a Classifier from extension allow-lists.
// Matching is case-insensitive.
func NewClassifier(imageFormats, documentFormats []string) Classifier {
	c := Classifier{
		images:    make(map[string]struct{}, len(imageFormats)),
		documents: make(map[string]struct{}, len(documentFormats)),
	}
	for _, f := range imageFormats {
		c.images[constants.NormalizeExt(f)] = struct{}{}
	}
	for _, f := range documentFormats {
		c.documents[constants.NormalizeExt(f)] = struct{}{}
	}
	return c
}

// Classify returns the format for a path based on its extension alone.
// It never touches the filesystem.
func (c Classifier) Classify(path string) constants.FileFormat {
	ext := constants.ExtOf(path)
	if _, ok := c.images[ext]; ok {
		return constants.IMAGE
	}
	if _, ok := c.documents[ext]; ok {
		if ext == "PDF" {
			return constants.PDF
		}
		return constants.DOCUMENT
	}
	return constants.UNSUPPORTED
}
