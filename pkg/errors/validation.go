package errors

import (
	"strings"
	"unicode"
)

// ValidateSourcePath validates the path of a DOT source file handed to the
// layout command. The file name becomes an argument of "-O" and the
// directory becomes the working directory of the subprocess.
//
// Validation rules:
//   - Path cannot be empty
//   - No null bytes or control characters
//   - Must name a file, not end in a path separator
//   - File name cannot start with "-" (it would be parsed as a flag)
func ValidateSourcePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "source path cannot be empty")
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "source path contains invalid characters")
		}
	}

	if strings.HasSuffix(path, "/") || strings.HasSuffix(path, "\\") {
		return New(ErrCodeInvalidPath, "source path must name a file: %q", path)
	}

	base := path
	if i := strings.LastIndexAny(path, `/\`); i >= 0 {
		base = path[i+1:]
	}
	if strings.HasPrefix(base, "-") {
		return New(ErrCodeInvalidPath, "source file name cannot start with '-': %q", base)
	}

	return nil
}

// ValidateLimit checks a caller-supplied result limit.
func ValidateLimit(n, max int) error {
	if n <= 0 {
		return New(ErrCodeInvalidInput, "limit must be positive, got %d", n)
	}
	if n > max {
		return New(ErrCodeInvalidInput, "limit too large (max %d)", max)
	}
	return nil
}
