package tx

import (
	"crypto/sha256"
	"encoding/hex"
)

// TxID computes the display transaction ID of fully serialized transaction
// bytes: double SHA-256, byte-reversed, hex-encoded. The reversal is display
// convention only; on the wire txids are stored as hashed.
func TxID(raw []byte) string {
	first := sha256.Sum256(raw)
	second := sha256.Sum256(first[:])

	reversed := make([]byte, len(second))
	for i, b := range second {
		reversed[len(second)-1-i] = b
	}
	return hex.EncodeToString(reversed)
}

// TxIDHex computes the transaction ID of a hex-encoded transaction.
func TxIDHex(txHex string) (string, error) {
	raw, err := hex.DecodeString(txHex)
	if err != nil {
		return "", &MalformedTransactionError{Message: "invalid transaction hex", Cause: err}
	}
	return TxID(raw), nil
}
