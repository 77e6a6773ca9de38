// Package tx error types.
//
// These errors cover the two failure classes of the codec: structural
// violations found while decoding untrusted transaction bytes, and values
// that cannot be represented while encoding.
package tx

import "fmt"

// MalformedTransactionError is returned when transaction bytes cannot be
// decoded: a length prefix runs past the end of the buffer, a required field
// is truncated, or trailing bytes remain after the declared structure.
type MalformedTransactionError struct {
	Offset  int    // Byte offset at which decoding failed
	Message string // Human-readable error message
	Cause   error  // Underlying error (if any)
}

func (e *MalformedTransactionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("malformed transaction at byte %d: %s: %v", e.Offset, e.Message, e.Cause)
	}
	return fmt.Sprintf("malformed transaction at byte %d: %s", e.Offset, e.Message)
}

func (e *MalformedTransactionError) Unwrap() error { return e.Cause }

// EncodingError is returned when a value cannot be serialized: a negative
// varint, or a script longer than the codec is willing to emit.
type EncodingError struct {
	Value   int64  // Offending value
	Message string // Human-readable error message
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("encoding error: %s (value %d)", e.Message, e.Value)
}
