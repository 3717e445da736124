// Package service implements the cryptographic primitives behind per-database
// envelope encryption: AES-256-GCM sealing of value payloads and RFC 3394 key
// wrapping of per-value keys.
package service

import (
	"crypto/aes"
	"crypto/cipher"
	"fmt"

	cryptoDomain "github.com/allisson/aegis/internal/crypto/domain"
)

// AESGCMCipher implements authenticated encryption using AES-256-GCM with a
// fixed all-zero 96-bit nonce.
//
// The zero nonce is sound only because every cipher instance is keyed with a
// fresh random per-value key and used for a single Seal. Reusing a per-value
// key across Seal calls breaks AES-GCM; callers must never do so.
type AESGCMCipher struct {
	aead cipher.AEAD
}

// NewAESGCM creates a new AES-256-GCM cipher instance.
// Returns ErrInvalidKeySize if key is not exactly 32 bytes.
func NewAESGCM(key []byte) (*AESGCMCipher, error) {
	if len(key) != cryptoDomain.KeySize {
		return nil, cryptoDomain.ErrInvalidKeySize
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create AES cipher: %w", err)
	}

	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}

	return &AESGCMCipher{aead: aead}, nil
}

// Seal encrypts plaintext under the fixed zero nonce, authenticating aad.
// It returns the ciphertext body (same length as plaintext) and the 16-byte
// authentication tag separately, matching the envelope layout.
func (a *AESGCMCipher) Seal(plaintext, aad []byte) (body, tag []byte) {
	nonce := make([]byte, a.aead.NonceSize())
	out := a.aead.Seal(nil, nonce, plaintext, aad)
	return out[:len(out)-cryptoDomain.TagSize], out[len(out)-cryptoDomain.TagSize:]
}

// Open decrypts a ciphertext body and verifies its tag against aad.
// Returns ErrDecryptionFailed on any authentication failure.
func (a *AESGCMCipher) Open(body, tag, aad []byte) ([]byte, error) {
	nonce := make([]byte, a.aead.NonceSize())
	ct := make([]byte, 0, len(body)+len(tag))
	ct = append(ct, body...)
	ct = append(ct, tag...)

	plaintext, err := a.aead.Open(make([]byte, 0, len(body)), nonce, ct, aad)
	if err != nil {
		return nil, cryptoDomain.ErrDecryptionFailed
	}
	return plaintext, nil
}
