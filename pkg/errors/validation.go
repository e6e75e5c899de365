package errors

import (
	"path/filepath"
	"strings"
	"unicode"
)

// DocumentExt is the file extension of flow documents accepted by the CLI.
const DocumentExt = ".storyboard"

// ValidateDocumentPath validates a document path given on the command line.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 4096 characters
//   - No null bytes or control characters
//   - Must carry the .storyboard extension (or .xml for exported copies)
func ValidateDocumentPath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "document path cannot be empty")
	}

	const maxPathLength = 4096
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength).WithSubject(path)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters").WithSubject(path)
		}
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case DocumentExt, ".xml":
		return nil
	default:
		return New(ErrCodeInvalidPath, "expected a %s file", DocumentExt).WithSubject(path)
	}
}

// ValidateOutputPath validates an output base path.
// Output paths may be relative or absolute but must not be a directory marker.
func ValidateOutputPath(path string) error {
	if path == "" {
		return nil
	}
	if strings.HasSuffix(path, "/") || strings.HasSuffix(path, "\\") {
		return New(ErrCodeInvalidPath, "output path must name a file, not a directory").WithSubject(path)
	}
	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "output path contains invalid characters").WithSubject(path)
		}
	}
	return nil
}
