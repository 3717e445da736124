// Package domain defines core cryptographic domain models for per-database
// envelope encryption: the framed ciphertext envelope and its error surface.
package domain

import (
	"github.com/allisson/aegis/internal/errors"
)

// Cryptographic operation errors.
var (
	// ErrInvalidKeySize indicates the cryptographic key size is invalid (must be 32 bytes).
	ErrInvalidKeySize = errors.Wrap(errors.ErrInvalidInput, "invalid key size")

	// ErrNotCiphertext indicates the buffer is not a ciphertext envelope:
	// it is shorter than the fixed header or carries an unknown version byte.
	ErrNotCiphertext = errors.Wrap(errors.ErrInvalidInput, "not ciphertext")

	// ErrDecryptionFailed indicates decryption failed. The key-unwrap integrity
	// check and the AEAD tag check both surface as this error; callers cannot
	// tell the two apart.
	ErrDecryptionFailed = errors.Wrap(errors.ErrInvalidInput, "decryption failed")
)
