package tx

import (
	"bytes"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"io"
)

// ParseHex decodes a hex-encoded raw transaction.
func ParseHex(s string) (*Transaction, error) {
	data, err := hex.DecodeString(s)
	if err != nil {
		return nil, &MalformedTransactionError{Message: "invalid transaction hex", Cause: err}
	}
	return Parse(data)
}

// Parse decodes raw transaction bytes.
//
// Decision sequence: version; version group ID if overwintered; inputs;
// outputs; lock time; expiry height if version >= 3 or overwintered; value
// balance plus three shielded section counts if the Sapling group is active.
// The shielded counts must be zero: transactions carrying shielded payloads
// are rejected rather than half-parsed. Trailing bytes beyond the declared
// structure are an error.
func Parse(data []byte) (*Transaction, error) {
	r := bytes.NewReader(data)
	t := &Transaction{}

	if err := binary.Read(r, binary.LittleEndian, &t.Version); err != nil {
		return nil, malformed(r, "reading version", err)
	}

	if t.Overwintered() {
		if err := binary.Read(r, binary.LittleEndian, &t.VersionGroupID); err != nil {
			return nil, malformed(r, "reading version group id", err)
		}
	}

	numInputs, err := readCount(r, "input count")
	if err != nil {
		return nil, err
	}
	t.Inputs = make([]TxIn, numInputs)
	for i := range t.Inputs {
		if err := parseTxIn(r, &t.Inputs[i]); err != nil {
			return nil, malformed(r, fmt.Sprintf("parsing input %d", i), err)
		}
	}

	numOutputs, err := readCount(r, "output count")
	if err != nil {
		return nil, err
	}
	t.Outputs = make([]TxOut, numOutputs)
	for i := range t.Outputs {
		if err := parseTxOut(r, &t.Outputs[i]); err != nil {
			return nil, malformed(r, fmt.Sprintf("parsing output %d", i), err)
		}
	}

	if err := binary.Read(r, binary.LittleEndian, &t.LockTime); err != nil {
		return nil, malformed(r, "reading lock time", err)
	}

	if t.hasExpiryHeight() {
		if err := binary.Read(r, binary.LittleEndian, &t.ExpiryHeight); err != nil {
			return nil, malformed(r, "reading expiry height", err)
		}
	}

	if t.hasSaplingFields() {
		if err := binary.Read(r, binary.LittleEndian, &t.ValueBalance); err != nil {
			return nil, malformed(r, "reading value balance", err)
		}
		for _, section := range []string{"shielded spend", "shielded output", "joinsplit"} {
			n, err := readCompactSize(r)
			if err != nil {
				return nil, malformed(r, "reading "+section+" count", err)
			}
			if n != 0 {
				return nil, malformed(r, section+" descriptors are not supported", nil)
			}
		}
	}

	if r.Len() != 0 {
		return nil, malformed(r, fmt.Sprintf("%d trailing bytes after transaction", r.Len()), nil)
	}

	return t, nil
}

// parseTxIn reads one transparent input.
func parseTxIn(r *bytes.Reader, in *TxIn) error {
	if _, err := io.ReadFull(r, in.PrevTxID[:]); err != nil {
		return fmt.Errorf("reading prevout txid: %w", err)
	}
	if err := binary.Read(r, binary.LittleEndian, &in.PrevIndex); err != nil {
		return fmt.Errorf("reading prevout index: %w", err)
	}

	script, err := readScript(r)
	if err != nil {
		return fmt.Errorf("reading unlock script: %w", err)
	}
	in.UnlockScript = script

	if err := binary.Read(r, binary.LittleEndian, &in.Sequence); err != nil {
		return fmt.Errorf("reading sequence: %w", err)
	}
	return nil
}

// parseTxOut reads one transparent output.
func parseTxOut(r *bytes.Reader, out *TxOut) error {
	if err := binary.Read(r, binary.LittleEndian, &out.Value); err != nil {
		return fmt.Errorf("reading value: %w", err)
	}

	script, err := readScript(r)
	if err != nil {
		return fmt.Errorf("reading lock script: %w", err)
	}
	out.LockScript = script
	return nil
}

// readScript reads a compact-size-prefixed byte sequence, verifying the
// prefix against both the allocation cap and the remaining buffer before
// allocating.
func readScript(r *bytes.Reader) ([]byte, error) {
	n, err := readCompactSize(r)
	if err != nil {
		return nil, fmt.Errorf("reading length prefix: %w", err)
	}
	if n > maxCompactSize {
		return nil, fmt.Errorf("declared length %d exceeds maximum", n)
	}
	if n > uint64(r.Len()) {
		return nil, fmt.Errorf("declared length %d exceeds remaining %d bytes", n, r.Len())
	}
	script := make([]byte, n)
	if _, err := io.ReadFull(r, script); err != nil {
		return nil, err
	}
	return script, nil
}

// readCount reads a compact-size element count, bounding it by both the cap
// and the minimum serialized size of one element (1 byte).
func readCount(r *bytes.Reader, what string) (uint64, error) {
	n, err := readCompactSize(r)
	if err != nil {
		return 0, malformed(r, "reading "+what, err)
	}
	if n > maxCompactSize || n > uint64(r.Len()) {
		return 0, malformed(r, fmt.Sprintf("%s %d exceeds remaining data", what, n), nil)
	}
	return n, nil
}

// malformed wraps an error with the current read offset.
func malformed(r *bytes.Reader, msg string, cause error) error {
	return &MalformedTransactionError{
		Offset:  int(r.Size()) - r.Len(),
		Message: msg,
		Cause:   cause,
	}
}
