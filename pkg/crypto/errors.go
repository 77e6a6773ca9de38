// Package crypto error types.
package crypto

import (
	"encoding/hex"
	"fmt"
)

// SighashError is returned when the signature hash cannot be computed: the
// input index is out of range or the personalized hash primitive rejected
// its configuration. There is deliberately no degraded mode that substitutes
// another hash.
type SighashError struct {
	InputIndex int    // Index of the input being signed
	Message    string // Human-readable error message
	Cause      error  // Underlying error (if any)
}

func (e *SighashError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("sighash error at input %d: %s: %v", e.InputIndex, e.Message, e.Cause)
	}
	return fmt.Sprintf("sighash error at input %d: %s", e.InputIndex, e.Message)
}

func (e *SighashError) Unwrap() error { return e.Cause }

// SigningError is returned when ECDSA signing fails, most commonly because
// the private key bytes are not a valid curve scalar.
type SigningError struct {
	Message string
	Cause   error
}

func (e *SigningError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("signing error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("signing error: %s", e.Message)
}

func (e *SigningError) Unwrap() error { return e.Cause }

// UnsupportedAddressTypeError is returned when an address payload carries a
// version prefix other than the network's P2PKH or P2SH prefixes.
type UnsupportedAddressTypeError struct {
	Prefix []byte // Version bytes found in the payload
}

func (e *UnsupportedAddressTypeError) Error() string {
	return fmt.Sprintf("unsupported address type (version prefix %s)", hex.EncodeToString(e.Prefix))
}
