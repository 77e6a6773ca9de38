package tx

import (
	"bytes"
	"encoding/binary"
	"encoding/hex"
	"fmt"
)

// Serialize encodes the transaction to wire bytes.
//
// Field presence mirrors Parse exactly but is re-derived from the version
// and version group ID on every call. A Transaction assembled on a different
// decision path than the one it is serialized on still produces a
// self-consistent encoding. The Sapling branch emits the value balance plus
// three empty shielded section counts.
func (t *Transaction) Serialize() ([]byte, error) {
	buf := new(bytes.Buffer)

	binary.Write(buf, binary.LittleEndian, t.Version)

	if t.Overwintered() {
		binary.Write(buf, binary.LittleEndian, t.VersionGroupID)
	}

	writeCompactSize(buf, uint64(len(t.Inputs)))
	for i := range t.Inputs {
		in := &t.Inputs[i]
		buf.Write(in.PrevTxID[:])
		binary.Write(buf, binary.LittleEndian, in.PrevIndex)
		if err := writeScript(buf, in.UnlockScript); err != nil {
			return nil, fmt.Errorf("serializing input %d: %w", i, err)
		}
		binary.Write(buf, binary.LittleEndian, in.Sequence)
	}

	writeCompactSize(buf, uint64(len(t.Outputs)))
	for i := range t.Outputs {
		out := &t.Outputs[i]
		binary.Write(buf, binary.LittleEndian, out.Value)
		if err := writeScript(buf, out.LockScript); err != nil {
			return nil, fmt.Errorf("serializing output %d: %w", i, err)
		}
	}

	binary.Write(buf, binary.LittleEndian, t.LockTime)

	if t.hasExpiryHeight() {
		binary.Write(buf, binary.LittleEndian, t.ExpiryHeight)
	}

	if t.hasSaplingFields() {
		binary.Write(buf, binary.LittleEndian, t.ValueBalance)
		// Empty shielded spend, shielded output and joinsplit sections.
		buf.Write([]byte{0x00, 0x00, 0x00})
	}

	return buf.Bytes(), nil
}

// SerializeHex encodes the transaction to hex.
func (t *Transaction) SerializeHex() (string, error) {
	raw, err := t.Serialize()
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(raw), nil
}

// writeScript writes a compact-size-prefixed byte sequence.
func writeScript(buf *bytes.Buffer, script []byte) error {
	if len(script) > maxCompactSize {
		return &EncodingError{Value: int64(len(script)), Message: "script exceeds maximum length"}
	}
	writeCompactSize(buf, uint64(len(script)))
	buf.Write(script)
	return nil
}
