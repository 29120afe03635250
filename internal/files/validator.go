package files

import (
	"os"

	"github.com/joseph-ayodele/vlm-extract/constants"
)

// Descriptor captures the on-disk facts about an input file. Immutable once
// read from disk.
type Descriptor struct {
	Path string
	Ext  string // normalized uppercase, no dot
	Size int64
}

// Describe stats a path and returns its descriptor.
func Describe(path string) (Descriptor, error) {
	st, err := os.Stat(path)
	if err != nil {
		return Descriptor{}, err
	}
	return Descriptor{Path: path, Ext: constants.ExtOf(path), Size: st.Size()}, nil
}

// Validator checks that a file can enter the pipeline.
type Validator struct {
	classifier    Classifier
	maxFileSizeMB int
}

func NewValidator(classifier Classifier, maxFileSizeMB int) Validator {
	return Validator{classifier: classifier, maxFileSizeMB: maxFileSizeMB}
}

// Validate runs the checks in order, short-circuiting on the first failure:
// existence, regular file, size ceiling, recognized format. The reason
// strings are part of the contract; callers surface them verbatim.
func (v Validator) Validate(path string) (bool, string) {
	st, err := os.Stat(path)
	if err != nil {
		return false, "File not found"
	}
	if !st.Mode().IsRegular() {
		return false, "Path is not a file"
	}
	if st.Size() > int64(v.maxFileSizeMB)*1024*1024 {
		return false, "File too large"
	}
	if v.classifier.Classify(path) == constants.UNSUPPORTED {
		return false, "Unsupported file format"
	}
	return true, ""
}
