package util

import (
	"path/filepath"
	"strings"
	"unicode"
)

// SanitizeString trims whitespace and removes control characters from s.
func SanitizeString(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
}

// IsSafeFilename reports whether name can be used verbatim as a single path
// element inside a directory: non-empty, no separators, not "." or "..",
// no leading dot-dot, not absolute, no control characters.
func IsSafeFilename(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	if filepath.IsAbs(name) || strings.ContainsAny(name, `/\`) || strings.HasPrefix(name, "..") {
		return false
	}
	if SanitizeString(name) != name {
		return false
	}
	return filepath.Base(name) == name
}

// HasAllowedExtension reports whether name ends with one of the given
// extensions. The comparison is case-sensitive.
func HasAllowedExtension(name string, allowed []string) bool {
	for _, ext := range allowed {
		if ext != "" && strings.HasSuffix(name, ext) {
			return true
		}
	}
	return false
}
