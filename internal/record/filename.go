package record

import (
	"fmt"
	"path/filepath"
	"strings"
)

// SanitizeFilename reduces an uploaded filename to a safe single path
// segment: directory components are stripped, and any character outside
// [A-Za-z0-9._-] is replaced with an underscore. Returns "" if nothing
// usable remains.
func SanitizeFilename(name string) string {
	// Strip directory components from either path convention
	name = strings.ReplaceAll(name, "\\", "/")
	name = filepath.Base(name)
	if name == "." || name == "/" {
		return ""
	}

	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.' || r == '_' || r == '-':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}

	out := strings.Trim(b.String(), ".")
	if out == "" {
		return ""
	}
	return out
}

// WithTimestampSuffix appends a Unix timestamp to the base name,
// preserving the extension. Used to disambiguate a colliding upload.
func WithTimestampSuffix(name string, unix int64) string {
	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)
	return fmt.Sprintf("%s_%d%s", base, unix, ext)
}

// PDFName returns the produced PDF filename for a source filename:
// same base name, .pdf extension.
func PDFName(source string) string {
	ext := filepath.Ext(source)
	return strings.TrimSuffix(source, ext) + ".pdf"
}

// HasAllowedExtension reports whether name's extension (case-insensitive)
// is in the allowed set. Entries in allowed are lowercase with a leading dot.
func HasAllowedExtension(name string, allowed []string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, a := range allowed {
		if ext == a {
			return true
		}
	}
	return false
}
