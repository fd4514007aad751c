// Package intake validates candidate dataset files and hands them to the
// profiling engine.
package intake

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/dandantas/profilewatch/internal/model"
)

// DefaultMaxBytes is the largest file accepted for upload (50 MiB)
const DefaultMaxBytes int64 = 50 * 1024 * 1024

// AllowedExtensions holds the file extensions the engine can parse
var AllowedExtensions = map[string]struct{}{
	"csv":  {},
	"xlsx": {},
	"xls":  {},
	"json": {},
}

// Kind groups extensions the way the upload preview labels them
type Kind string

const (
	KindCSV   Kind = "csv"
	KindExcel Kind = "excel"
	KindJSON  Kind = "json"
)

// NormalizeExt lowercases a file's extension and drops the dot
func NormalizeExt(name string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
}

// FileKind classifies a file name, returning false for unsupported types
func FileKind(name string) (Kind, bool) {
	switch NormalizeExt(name) {
	case "csv":
		return KindCSV, true
	case "xlsx", "xls":
		return KindExcel, true
	case "json":
		return KindJSON, true
	default:
		return "", false
	}
}

// Validate checks type then size. Content is never inspected.
func Validate(name string, size, maxBytes int64) error {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	if _, ok := AllowedExtensions[NormalizeExt(name)]; !ok {
		return &model.ValidationError{Reason: model.ReasonUnsupportedType, File: name}
	}
	if size > maxBytes {
		return &model.ValidationError{Reason: model.ReasonTooLarge, File: name, Limit: maxBytes}
	}
	return nil
}

// FormatSize renders a byte count for the file preview
func FormatSize(bytes int64) string {
	switch {
	case bytes < 1024:
		return fmt.Sprintf("%d B", bytes)
	case bytes < 1024*1024:
		return fmt.Sprintf("%.1f KB", float64(bytes)/1024)
	default:
		return fmt.Sprintf("%.2f MB", float64(bytes)/(1024*1024))
	}
}
