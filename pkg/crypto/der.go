package crypto

// EncodeDER encodes a raw (r, s) signature as a minimal DER SEQUENCE of two
// INTEGERs:
//
//	0x30 totalLen 0x02 rLen r... 0x02 sLen s...
//
// Each integer is stripped to its shortest representation with a clear sign
// bit: leading zero bytes are dropped, and one 0x00 byte is prepended when
// the top bit of the first remaining byte is set.
func EncodeDER(sig RawSignature) []byte {
	r := canonicalInt(sig.R[:])
	s := canonicalInt(sig.S[:])

	out := make([]byte, 0, 6+len(r)+len(s))
	out = append(out, 0x30, byte(4+len(r)+len(s)))
	out = append(out, 0x02, byte(len(r)))
	out = append(out, r...)
	out = append(out, 0x02, byte(len(s)))
	out = append(out, s...)
	return out
}

// canonicalInt returns the minimal big-endian two's-complement encoding of
// an unsigned big-endian integer.
func canonicalInt(b []byte) []byte {
	i := 0
	for i < len(b)-1 && b[i] == 0 {
		i++
	}
	b = b[i:]
	if b[0]&0x80 != 0 {
		padded := make([]byte, 1+len(b))
		copy(padded[1:], b)
		return padded
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
