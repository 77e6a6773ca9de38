// Transparent address encoding.
//
// Zcash-derived chains use base58check with a two-byte version prefix for
// transparent addresses (t1/t3 on mainnet). The payload is a 20-byte
// hash160: RIPEMD-160 of SHA-256.
package crypto

import (
	"crypto/sha256"
	"errors"

	"github.com/btcsuite/btcutil/base58"
	"golang.org/x/crypto/ripemd160"

	"github.com/suffix-labs/zcash-tsign/pkg/chain"
)

// AddressType distinguishes the two transparent locking templates.
type AddressType int

const (
	AddressP2PKH AddressType = iota
	AddressP2SH
)

// Hash160 computes RIPEMD-160(SHA-256(data)).
func Hash160(data []byte) [20]byte {
	sha := sha256.Sum256(data)
	rip := ripemd160.New()
	rip.Write(sha[:])

	var out [20]byte
	copy(out[:], rip.Sum(nil))
	return out
}

// DecodeAddress decodes a base58check transparent address and classifies it
// against the network's version prefixes.
func DecodeAddress(addr string, params *chain.Params) (AddressType, [20]byte, error) {
	var hash [20]byte

	decoded := base58.Decode(addr)
	// 2-byte version || 20-byte hash || 4-byte checksum
	if len(decoded) != 26 {
		return 0, hash, errors.New("invalid address length")
	}

	payload := decoded[:22]
	hash1 := sha256.Sum256(payload)
	hash2 := sha256.Sum256(hash1[:])
	for i := 0; i < 4; i++ {
		if decoded[22+i] != hash2[i] {
			return 0, hash, errors.New("address checksum mismatch")
		}
	}

	copy(hash[:], payload[2:])
	prefix := [2]byte{payload[0], payload[1]}
	switch prefix {
	case params.P2PKHPrefix:
		return AddressP2PKH, hash, nil
	case params.P2SHPrefix:
		return AddressP2SH, hash, nil
	default:
		return 0, hash, &UnsupportedAddressTypeError{Prefix: payload[:2]}
	}
}

// EncodeP2PKHAddress encodes a public key hash as a transparent address.
func EncodeP2PKHAddress(hash [20]byte, params *chain.Params) string {
	return encodeAddress(params.P2PKHPrefix, hash)
}

// EncodeP2SHAddress encodes a script hash as a transparent address.
func EncodeP2SHAddress(hash [20]byte, params *chain.Params) string {
	return encodeAddress(params.P2SHPrefix, hash)
}

// PublicKeyAddress derives the P2PKH address of a serialized public key.
func PublicKeyAddress(pubKey []byte, params *chain.Params) string {
	return EncodeP2PKHAddress(Hash160(pubKey), params)
}

func encodeAddress(prefix [2]byte, hash [20]byte) string {
	payload := make([]byte, 0, 26)
	payload = append(payload, prefix[:]...)
	payload = append(payload, hash[:]...)

	hash1 := sha256.Sum256(payload)
	hash2 := sha256.Sum256(hash1[:])
	payload = append(payload, hash2[:4]...)

	return base58.Encode(payload)
}
