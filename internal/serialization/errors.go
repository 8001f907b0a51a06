package serialization

import (
	"errors"
	"fmt"
)

// Common errors.
var (
	ErrChecksumMismatch   = errors.New("checksum mismatch: file may be corrupted")
	ErrInvalidMagic       = errors.New("invalid magic bytes")
	ErrUnsupportedVersion = errors.New("unsupported format version")
	ErrOutOfBounds        = errors.New("tensor extends beyond data section")
	ErrSizeMismatch       = errors.New("tensor size does not match its shape")
	ErrDuplicateTensor    = errors.New("duplicate tensor name")
	ErrHeaderTooLarge     = errors.New("header exceeds maximum size")
)

// maxHeaderSize bounds the JSON header to keep malformed files from
// triggering huge allocations.
const maxHeaderSize = 16 << 20

// FormatError provides context for a malformed .tomo file.
type FormatError struct {
	Path   string // File being read
	Tensor string // Tensor involved, if any
	Err    error  // Underlying error
}

// Error implements the error interface.
func (e *FormatError) Error() string {
	if e.Tensor != "" {
		return fmt.Sprintf("%s: tensor %q: %v", e.Path, e.Tensor, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

// Unwrap returns the underlying error.
func (e *FormatError) Unwrap() error {
	return e.Err
}
