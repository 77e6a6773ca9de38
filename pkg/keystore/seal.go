package keystore

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"

	"golang.org/x/crypto/scrypt"
)

// scrypt parameters. N=2^15 keeps interactive unlock under a second on
// commodity hardware while staying above the historical 2^14 default.
const (
	scryptN      = 1 << 15
	scryptR      = 8
	scryptP      = 1
	scryptKeyLen = 32
	saltLen      = 16
)

// seal encrypts plaintext with AES-256-GCM under an scrypt-derived key.
// Output layout: salt (16) || nonce (12) || ciphertext.
func seal(plaintext []byte, password string) ([]byte, error) {
	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("generating salt: %w", err)
	}

	gcm, err := deriveAEAD(password, salt)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("generating nonce: %w", err)
	}

	out := make([]byte, 0, saltLen+len(nonce)+len(plaintext)+gcm.Overhead())
	out = append(out, salt...)
	out = append(out, nonce...)
	return gcm.Seal(out, nonce, plaintext, nil), nil
}

// open decrypts a blob produced by seal. A wrong password fails GCM
// authentication and is reported as a decryption error, distinct from a
// missing key.
func open(sealed []byte, password string) ([]byte, error) {
	if len(sealed) < saltLen {
		return nil, errors.New("sealed blob too short")
	}
	salt := sealed[:saltLen]

	gcm, err := deriveAEAD(password, salt)
	if err != nil {
		return nil, err
	}

	rest := sealed[saltLen:]
	if len(rest) < gcm.NonceSize() {
		return nil, errors.New("sealed blob too short")
	}
	nonce := rest[:gcm.NonceSize()]
	ciphertext := rest[gcm.NonceSize():]

	plain, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, errors.New("decryption failed (wrong password or corrupted data)")
	}
	return plain, nil
}

func deriveAEAD(password string, salt []byte) (cipher.AEAD, error) {
	key, err := scrypt.Key([]byte(password), salt, scryptN, scryptR, scryptP, scryptKeyLen)
	if err != nil {
		return nil, fmt.Errorf("deriving key: %w", err)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("initializing cipher: %w", err)
	}
	return cipher.NewGCM(block)
}
