package errors

import (
	"path/filepath"
	"slices"
	"strings"
	"unicode"
)

// Supported table file extensions.
var tableExtensions = []string{".json", ".toml"}

// ValidatePath validates a user-supplied file path for safety.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 4096 characters
//   - No null bytes or control characters
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 4096
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	return nil
}

// ValidateTablePath validates a table file path and its extension.
// Only .json and .toml files are accepted.
func ValidateTablePath(path string) error {
	if err := ValidatePath(path); err != nil {
		return err
	}
	ext := strings.ToLower(filepath.Ext(path))
	if !slices.Contains(tableExtensions, ext) {
		return New(ErrCodeInvalidFormat, "unsupported table file %q (want .json or .toml)", path)
	}
	return nil
}
