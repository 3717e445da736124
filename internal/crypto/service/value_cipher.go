package service

import (
	"crypto/rand"
	"fmt"

	"github.com/google/uuid"

	cryptoDomain "github.com/allisson/aegis/internal/crypto/domain"
)

// ValueCipher encrypts and decrypts value payloads bound to a
// (database UUID, logical key) identity.
//
// Every Encrypt call generates a fresh random 256-bit per-value key, seals the
// plaintext with it, wraps it under the database key, and frames the result as
// an envelope. The per-value key never leaves this package in plaintext form.
type ValueCipher struct{}

// NewValueCipher creates a new ValueCipher instance.
func NewValueCipher() *ValueCipher {
	return &ValueCipher{}
}

// Encrypt produces a ciphertext envelope for plaintext under dbKey, bound to
// the database UUID and logical key.
func (v *ValueCipher) Encrypt(dbKey []byte, id uuid.UUID, logicalKey, plaintext []byte) ([]byte, error) {
	// Generate a fresh random per-value key. This freshness is what makes the
	// fixed zero nonce in AESGCMCipher sound.
	valueKey := make([]byte, cryptoDomain.KeySize)
	if _, err := rand.Read(valueKey); err != nil {
		return nil, fmt.Errorf("failed to generate per-value key: %w", err)
	}
	defer cryptoDomain.Zero(valueKey)

	wrappedKey, err := WrapKey(dbKey, valueKey)
	if err != nil {
		return nil, err
	}

	aead, err := NewAESGCM(valueKey)
	if err != nil {
		return nil, err
	}

	body, tag := aead.Seal(plaintext, cryptoDomain.AssociatedData(id, logicalKey))

	envelope := cryptoDomain.Envelope{
		WrappedKey: wrappedKey,
		Tag:        tag,
		Ciphertext: body,
	}
	return envelope.Marshal(), nil
}

// Decrypt parses a ciphertext envelope and recovers the plaintext under dbKey.
// Returns ErrNotCiphertext on a malformed envelope and ErrDecryptionFailed
// when the key unwrap or tag verification fails, including any mismatch of
// the database UUID or logical key.
func (v *ValueCipher) Decrypt(dbKey []byte, id uuid.UUID, logicalKey, ciphertext []byte) ([]byte, error) {
	envelope, err := cryptoDomain.ParseEnvelope(ciphertext)
	if err != nil {
		return nil, err
	}

	valueKey, err := UnwrapKey(dbKey, envelope.WrappedKey)
	if err != nil {
		return nil, err
	}
	defer cryptoDomain.Zero(valueKey)

	aead, err := NewAESGCM(valueKey)
	if err != nil {
		return nil, err
	}

	return aead.Open(envelope.Ciphertext, envelope.Tag, cryptoDomain.AssociatedData(id, logicalKey))
}
