// secp256k1 key handling and the signing backend.
//
// Key formats:
//   - Private keys: WIF (Wallet Import Format) or raw 32 bytes
//   - Public keys: compressed 33-byte or uncompressed 65-byte, chosen by the
//     WIF compression flag
//   - Signatures: raw 64-byte r||s, DER-encoded separately
//
// The curve arithmetic is bound statically through the Signer interface so
// the signing pipeline can be exercised with a stub backend in tests.
package crypto

import (
	"crypto/sha256"
	"errors"
	"fmt"

	"github.com/btcsuite/btcutil/base58"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	secpecdsa "github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
)

// RawSignature is a 64-byte ECDSA signature: 32-byte big-endian r followed
// by 32-byte big-endian s. It is a transient value, converted to DER before
// it is ever stored in a script.
type RawSignature struct {
	R [32]byte
	S [32]byte
}

// Signer is the curve capability required by the signing pipeline.
type Signer interface {
	// Sign produces a deterministic ECDSA signature over digest.
	Sign(digest [32]byte, privateKey []byte) (RawSignature, error)
	// DerivePublicKey returns the serialized public key for a private scalar.
	DerivePublicKey(privateKey []byte, compressed bool) ([]byte, error)
	// IsValidScalar reports whether the bytes are a valid non-zero scalar.
	IsValidScalar(privateKey []byte) bool
}

// Secp256k1Signer is the concrete Signer backend, RFC 6979 deterministic
// with low-s normalization.
type Secp256k1Signer struct{}

// Sign implements Signer.
func (Secp256k1Signer) Sign(digest [32]byte, privateKey []byte) (RawSignature, error) {
	var sig RawSignature
	if !(Secp256k1Signer{}).IsValidScalar(privateKey) {
		return sig, &SigningError{Message: "private key is not a valid curve scalar"}
	}

	priv := secp256k1.PrivKeyFromBytes(privateKey)
	defer priv.Zero()

	der := secpecdsa.Sign(priv, digest[:])
	r := der.R()
	s := der.S()
	sig.R = r.Bytes()
	sig.S = s.Bytes()
	return sig, nil
}

// DerivePublicKey implements Signer.
func (Secp256k1Signer) DerivePublicKey(privateKey []byte, compressed bool) ([]byte, error) {
	if !(Secp256k1Signer{}).IsValidScalar(privateKey) {
		return nil, &SigningError{Message: "private key is not a valid curve scalar"}
	}

	priv := secp256k1.PrivKeyFromBytes(privateKey)
	defer priv.Zero()

	if compressed {
		return priv.PubKey().SerializeCompressed(), nil
	}
	return priv.PubKey().SerializeUncompressed(), nil
}

// IsValidScalar implements Signer.
func (Secp256k1Signer) IsValidScalar(privateKey []byte) bool {
	if len(privateKey) != 32 {
		return false
	}
	var scalar secp256k1.ModNScalar
	overflow := scalar.SetByteSlice(privateKey)
	valid := !overflow && !scalar.IsZero()
	scalar.Zero()
	return valid
}

// PrivateKey is WIF-decoded key material. It is owned for the duration of
// one signing call; Zero must be called on every exit path.
type PrivateKey struct {
	keyBytes   [32]byte
	compressed bool
}

// PrivateKeyFromBytes wraps a raw 32-byte scalar.
func PrivateKeyFromBytes(raw []byte, compressed bool) (*PrivateKey, error) {
	if len(raw) != 32 {
		return nil, fmt.Errorf("private key must be 32 bytes, got %d", len(raw))
	}
	pk := &PrivateKey{compressed: compressed}
	copy(pk.keyBytes[:], raw)
	return pk, nil
}

// Bytes returns the raw 32-byte scalar. The slice aliases the key's storage
// and is invalidated by Zero.
func (pk *PrivateKey) Bytes() []byte {
	return pk.keyBytes[:]
}

// Compressed reports whether the WIF carried the compression flag, which
// selects the public key serialization.
func (pk *PrivateKey) Compressed() bool {
	return pk.compressed
}

// Zero clears the key material.
func (pk *PrivateKey) Zero() {
	for i := range pk.keyBytes {
		pk.keyBytes[i] = 0
	}
}

// DecodeWIF decodes a WIF-encoded private key.
// WIF format: version_byte || private_key (32 bytes) || [compression_flag] || checksum (4 bytes)
func DecodeWIF(wif string, wifPrefix byte) (*PrivateKey, error) {
	decoded := base58.Decode(wif)
	if len(decoded) != 37 && len(decoded) != 38 {
		return nil, errors.New("invalid WIF length")
	}

	if decoded[0] != wifPrefix {
		return nil, fmt.Errorf("invalid WIF version byte: 0x%02x", decoded[0])
	}

	checksumOffset := len(decoded) - 4
	payload := decoded[:checksumOffset]
	provided := decoded[checksumOffset:]

	hash1 := sha256.Sum256(payload)
	hash2 := sha256.Sum256(hash1[:])
	for i := 0; i < 4; i++ {
		if provided[i] != hash2[i] {
			return nil, errors.New("WIF checksum mismatch")
		}
	}

	compressed := false
	if len(decoded) == 38 {
		if payload[33] != 0x01 {
			return nil, fmt.Errorf("invalid WIF compression flag: 0x%02x", payload[33])
		}
		compressed = true
	}

	return PrivateKeyFromBytes(payload[1:33], compressed)
}

// EncodeWIF encodes a raw private key to WIF format.
func EncodeWIF(privateKey []byte, compressed bool, wifPrefix byte) (string, error) {
	if len(privateKey) != 32 {
		return "", errors.New("private key must be 32 bytes")
	}

	payload := make([]byte, 0, 38)
	payload = append(payload, wifPrefix)
	payload = append(payload, privateKey...)
	if compressed {
		payload = append(payload, 0x01)
	}

	hash1 := sha256.Sum256(payload)
	hash2 := sha256.Sum256(hash1[:])
	payload = append(payload, hash2[:4]...)

	return base58.Encode(payload), nil
}

// GenerateWIF creates a fresh random private key and returns it WIF-encoded
// with the compression flag set. The raw scalar is zeroed before return.
func GenerateWIF(wifPrefix byte) (string, error) {
	priv, err := secp256k1.GeneratePrivateKey()
	if err != nil {
		return "", &SigningError{Message: "generating private key", Cause: err}
	}
	defer priv.Zero()

	raw := priv.Serialize()
	wif, err := EncodeWIF(raw, true, wifPrefix)
	for i := range raw {
		raw[i] = 0
	}
	return wif, err
}

// VerifySignature checks a DER-encoded signature against a serialized
// public key. Used by tests and callers that want to confirm a produced
// signature before broadcast.
func VerifySignature(pubKey []byte, digest [32]byte, derSig []byte) bool {
	pub, err := secp256k1.ParsePubKey(pubKey)
	if err != nil {
		return false
	}
	sig, err := secpecdsa.ParseDERSignature(derSig)
	if err != nil {
		return false
	}
	return sig.Verify(digest[:], pub)
}
