package service

import (
	"crypto/aes"
	"crypto/subtle"
	"fmt"

	cryptoDomain "github.com/allisson/aegis/internal/crypto/domain"
)

// keyWrapIV is the RFC 3394 initial value; unwrap recovers it iff the
// ciphertext and KEK are intact.
var keyWrapIV = [8]byte{0xA6, 0xA6, 0xA6, 0xA6, 0xA6, 0xA6, 0xA6, 0xA6}

// WrapKey wraps a 256-bit key under a 256-bit KEK using RFC 3394 AES key wrap.
// The result is 40 bytes: the key expanded by one 64-bit integrity block.
func WrapKey(kek, key []byte) ([]byte, error) {
	if len(kek) != cryptoDomain.KeySize || len(key) != cryptoDomain.KeySize {
		return nil, cryptoDomain.ErrInvalidKeySize
	}

	block, err := aes.NewCipher(kek)
	if err != nil {
		return nil, fmt.Errorf("failed to create AES cipher: %w", err)
	}

	n := len(key) / 8
	a := make([]byte, 8)
	copy(a, keyWrapIV[:])
	r := make([]byte, len(key))
	copy(r, key)

	buf := make([]byte, 16)
	for j := 0; j <= 5; j++ {
		for i := 1; i <= n; i++ {
			copy(buf[:8], a)
			copy(buf[8:], r[(i-1)*8:i*8])
			block.Encrypt(buf, buf)

			t := uint64(n*j + i)
			copy(a, buf[:8])
			for k := 0; k < 8; k++ {
				a[7-k] ^= byte(t >> (8 * k))
			}
			copy(r[(i-1)*8:i*8], buf[8:])
		}
	}

	return append(a, r...), nil
}

// UnwrapKey unwraps a 40-byte RFC 3394 ciphertext under a 256-bit KEK,
// returning the original 256-bit key. Returns ErrDecryptionFailed when the
// integrity check fails (wrong KEK or tampered ciphertext).
func UnwrapKey(kek, wrapped []byte) ([]byte, error) {
	if len(kek) != cryptoDomain.KeySize {
		return nil, cryptoDomain.ErrInvalidKeySize
	}
	if len(wrapped) != cryptoDomain.WrappedKeySize {
		return nil, cryptoDomain.ErrDecryptionFailed
	}

	block, err := aes.NewCipher(kek)
	if err != nil {
		return nil, fmt.Errorf("failed to create AES cipher: %w", err)
	}

	n := (len(wrapped) - 8) / 8
	a := make([]byte, 8)
	copy(a, wrapped[:8])
	r := make([]byte, len(wrapped)-8)
	copy(r, wrapped[8:])

	buf := make([]byte, 16)
	for j := 5; j >= 0; j-- {
		for i := n; i >= 1; i-- {
			t := uint64(n*j + i)
			copy(buf[:8], a)
			for k := 0; k < 8; k++ {
				buf[7-k] ^= byte(t >> (8 * k))
			}
			copy(buf[8:], r[(i-1)*8:i*8])
			block.Decrypt(buf, buf)

			copy(a, buf[:8])
			copy(r[(i-1)*8:i*8], buf[8:])
		}
	}

	if subtle.ConstantTimeCompare(a, keyWrapIV[:]) != 1 {
		return nil, cryptoDomain.ErrDecryptionFailed
	}

	return r, nil
}
