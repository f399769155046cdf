package codec

import (
	"errors"
	"fmt"
)

// ErrUnsupportedFormat is wrapped by DecodeError and EncodeError when the
// requested format has no codec.
var ErrUnsupportedFormat = errors.New("unsupported format")

// ErrTooLarge is returned by DecodeReader when the input exceeds its limit.
var ErrTooLarge = errors.New("file too large")

// UnsupportedFileTypeMessage is the message shown when an upload is rejected.
const UnsupportedFileTypeMessage = "Please upload only XLS, XLSX, or CSV files."

// ValidationError rejects an upload before any bytes are decoded.
type ValidationError struct {
	Field   string // "file" or "mime"
	Value   string // The rejected file name or MIME type
	Message string // Human-readable error message
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed: %s %q: %s", e.Field, e.Value, e.Message)
	}
	return "validation failed: " + e.Message
}

// DecodeError reports bytes that could not be read as the declared format.
type DecodeError struct {
	Format Format
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("could not read this file as %s: %v", e.Format, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// EncodeError reports an export that could not be produced.
type EncodeError struct {
	Format Format
	Err    error
}

func (e *EncodeError) Error() string {
	return fmt.Sprintf("export to %s failed: %v", e.Format, e.Err)
}

func (e *EncodeError) Unwrap() error {
	return e.Err
}

func newValidationError(field, value string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Value:   value,
		Message: UnsupportedFileTypeMessage,
	}
}
