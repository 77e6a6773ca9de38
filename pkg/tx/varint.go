package tx

import (
	"encoding/binary"
	"fmt"
	"io"
)

// maxCompactSize bounds counts and script lengths read from untrusted bytes
// so a hostile length prefix cannot drive allocation. The full 64-bit varint
// width is still decoded; values above the cap are rejected by the parser,
// not silently truncated.
const maxCompactSize = 0x02000000

// ReadVarInt decodes a compact-size integer from buf starting at offset and
// returns the value together with the offset of the first byte after it.
//
// Encoding: a first byte below 0xfd is the value itself; 0xfd, 0xfe and 0xff
// prefix a little-endian u16, u32 and u64 respectively. A value encoded wider
// than its minimal width is non-canonical and rejected: accepting it would
// allow two distinct byte strings for the same transaction, and with them two
// transaction IDs.
func ReadVarInt(buf []byte, offset int) (uint64, int, error) {
	if offset < 0 || offset >= len(buf) {
		return 0, 0, &MalformedTransactionError{Offset: offset, Message: "varint prefix past end of buffer"}
	}

	first := buf[offset]
	var width int
	switch first {
	case 0xfd:
		width = 2
	case 0xfe:
		width = 4
	case 0xff:
		width = 8
	default:
		return uint64(first), offset + 1, nil
	}

	if offset+1+width > len(buf) {
		return 0, 0, &MalformedTransactionError{Offset: offset, Message: "truncated varint"}
	}

	var v uint64
	switch width {
	case 2:
		v = uint64(binary.LittleEndian.Uint16(buf[offset+1:]))
	case 4:
		v = uint64(binary.LittleEndian.Uint32(buf[offset+1:]))
	case 8:
		v = binary.LittleEndian.Uint64(buf[offset+1:])
	}
	if !minimalWidth(v, width) {
		return 0, 0, &MalformedTransactionError{Offset: offset, Message: "non-canonical varint"}
	}
	return v, offset + 1 + width, nil
}

// minimalWidth reports whether v requires the given prefix width.
func minimalWidth(v uint64, width int) bool {
	switch width {
	case 2:
		return v >= 0xfd
	case 4:
		return v > 0xffff
	default:
		return v > 0xffffffff
	}
}

// WriteVarInt encodes v as a compact-size integer using the minimal width
// for its magnitude. Negative values are not representable.
func WriteVarInt(v int64) ([]byte, error) {
	if v < 0 {
		return nil, &EncodingError{Value: v, Message: "varint cannot encode negative value"}
	}

	n := uint64(v)
	switch {
	case n < 0xfd:
		return []byte{byte(n)}, nil
	case n <= 0xffff:
		out := make([]byte, 3)
		out[0] = 0xfd
		binary.LittleEndian.PutUint16(out[1:], uint16(n))
		return out, nil
	case n <= 0xffffffff:
		out := make([]byte, 5)
		out[0] = 0xfe
		binary.LittleEndian.PutUint32(out[1:], uint32(n))
		return out, nil
	default:
		out := make([]byte, 9)
		out[0] = 0xff
		binary.LittleEndian.PutUint64(out[1:], n)
		return out, nil
	}
}

// readCompactSize is the streaming form of ReadVarInt used by the parser.
// It applies the same canonical-width rule, so every accepted transaction
// reserializes to the exact bytes it was parsed from.
func readCompactSize(r io.Reader) (uint64, error) {
	var first [1]byte
	if _, err := io.ReadFull(r, first[:]); err != nil {
		return 0, err
	}

	var v uint64
	var width int
	switch first[0] {
	case 0xfd:
		var u uint16
		if err := binary.Read(r, binary.LittleEndian, &u); err != nil {
			return 0, err
		}
		v, width = uint64(u), 2
	case 0xfe:
		var u uint32
		if err := binary.Read(r, binary.LittleEndian, &u); err != nil {
			return 0, err
		}
		v, width = uint64(u), 4
	case 0xff:
		if err := binary.Read(r, binary.LittleEndian, &v); err != nil {
			return 0, err
		}
		width = 8
	default:
		return uint64(first[0]), nil
	}

	if !minimalWidth(v, width) {
		return 0, fmt.Errorf("non-canonical compact size: %d encoded in %d bytes", v, width+1)
	}
	return v, nil
}

// writeCompactSize is the streaming form of WriteVarInt. Lengths are never
// negative so this cannot fail.
func writeCompactSize(w io.Writer, n uint64) {
	switch {
	case n < 0xfd:
		w.Write([]byte{byte(n)})
	case n <= 0xffff:
		w.Write([]byte{0xfd})
		binary.Write(w, binary.LittleEndian, uint16(n))
	case n <= 0xffffffff:
		w.Write([]byte{0xfe})
		binary.Write(w, binary.LittleEndian, uint32(n))
	default:
		w.Write([]byte{0xff})
		binary.Write(w, binary.LittleEndian, n)
	}
}

// WriteCompactSize writes the compact-size encoding of n to w. Exposed for
// callers that build hash pre-images containing varint-prefixed scripts.
func WriteCompactSize(w io.Writer, n uint64) {
	writeCompactSize(w, n)
}
