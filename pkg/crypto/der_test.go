package crypto

import (
	"testing"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	secpecdsa "github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// rawSig builds a RawSignature from 32-byte big-endian r and s values given
// as trailing bytes (leading zeros implied).
func rawSig(r, s []byte) RawSignature {
	var sig RawSignature
	copy(sig.R[32-len(r):], r)
	copy(sig.S[32-len(s):], s)
	return sig
}

func TestEncodeDERStripsLeadingZeros(t *testing.T) {
	// r = 0x01, s = 0x02: 31 leading zero bytes each must be stripped.
	der := EncodeDER(rawSig([]byte{0x01}, []byte{0x02}))
	assert.Equal(t, []byte{0x30, 0x06, 0x02, 0x01, 0x01, 0x02, 0x01, 0x02}, der)
}

func TestEncodeDERPadsHighBit(t *testing.T) {
	// r = 0x80: top bit set, exactly one 0x00 byte prepended.
	der := EncodeDER(rawSig([]byte{0x80}, []byte{0x7f}))
	assert.Equal(t, []byte{0x30, 0x07, 0x02, 0x02, 0x00, 0x80, 0x02, 0x01, 0x7f}, der)
}

func TestEncodeDERFullWidth(t *testing.T) {
	r := make([]byte, 32)
	s := make([]byte, 32)
	for i := range r {
		r[i] = 0x7f // clear high bit, no padding
		s[i] = 0xff // high bit set, one pad byte
	}
	der := EncodeDER(rawSig(r, s))

	require.Equal(t, byte(0x30), der[0])
	totalLen := int(der[1])
	assert.Equal(t, len(der)-2, totalLen)

	rLen := int(der[3])
	sLen := int(der[5+rLen])
	assert.Equal(t, 32, rLen)
	assert.Equal(t, 33, sLen)
	assert.Equal(t, 4+rLen+sLen, totalLen)
	assert.Equal(t, byte(0x00), der[4+rLen+2]) // s starts with the pad byte
}

func TestEncodeDERZeroValue(t *testing.T) {
	// An all-zero integer still encodes as a single 0x00 byte.
	der := EncodeDER(rawSig([]byte{0x00}, []byte{0x01}))
	assert.Equal(t, []byte{0x30, 0x06, 0x02, 0x01, 0x00, 0x02, 0x01, 0x01}, der)
}

// The hand-assembled encoding must agree byte-for-byte with the curve
// library's own DER serialization of the same signature.
func TestEncodeDERMatchesLibrary(t *testing.T) {
	keyBytes := make([]byte, 32)
	for i := range keyBytes {
		keyBytes[i] = byte(i + 1)
	}
	var digest [32]byte
	for i := range digest {
		digest[i] = 0xa5
	}

	raw, err := Secp256k1Signer{}.Sign(digest, keyBytes)
	require.NoError(t, err)

	priv := secp256k1.PrivKeyFromBytes(keyBytes)
	libDER := secpecdsa.Sign(priv, digest[:]).Serialize()

	assert.Equal(t, libDER, EncodeDER(raw))
}
