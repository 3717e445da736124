package domain

import (
	"github.com/google/uuid"
)

const (
	// EnvelopeVersion is the only envelope version this service emits or accepts.
	EnvelopeVersion byte = 0x01

	// KeySize is the size in bytes of every symmetric key in the scheme
	// (database keys and per-value keys).
	KeySize = 32

	// WrappedKeySize is the size in bytes of an AES-wrapped per-value key.
	// RFC 3394 key wrap expands a 256-bit key by one 64-bit block.
	WrappedKeySize = 40

	// TagSize is the size in bytes of the AES-GCM authentication tag.
	TagSize = 16

	// envelopeHeaderSize is the fixed prefix before the ciphertext body:
	// version byte, wrapped per-value key, and GCM tag.
	envelopeHeaderSize = 1 + WrappedKeySize + TagSize
)

// Envelope is the framed ciphertext produced for a single value:
//
//	version(1) || wrapped_key(40) || tag(16) || ciphertext
//
// The ciphertext body has the same length as the plaintext.
type Envelope struct {
	WrappedKey []byte // AES-wrapped per-value key (40 bytes)
	Tag        []byte // AES-GCM authentication tag (16 bytes)
	Ciphertext []byte // AES-GCM ciphertext body
}

// ParseEnvelope parses a serialized envelope. It returns ErrNotCiphertext if
// the buffer is shorter than the fixed header or the version byte is unknown.
func ParseEnvelope(data []byte) (Envelope, error) {
	if len(data) < envelopeHeaderSize {
		return Envelope{}, ErrNotCiphertext
	}
	if data[0] != EnvelopeVersion {
		return Envelope{}, ErrNotCiphertext
	}

	return Envelope{
		WrappedKey: data[1 : 1+WrappedKeySize],
		Tag:        data[1+WrappedKeySize : envelopeHeaderSize],
		Ciphertext: data[envelopeHeaderSize:],
	}, nil
}

// Marshal serializes the envelope into its wire form.
func (e Envelope) Marshal() []byte {
	out := make([]byte, 0, envelopeHeaderSize+len(e.Ciphertext))
	out = append(out, EnvelopeVersion)
	out = append(out, e.WrappedKey...)
	out = append(out, e.Tag...)
	out = append(out, e.Ciphertext...)
	return out
}

// AssociatedData builds the AEAD associated data binding a ciphertext to its
// database identity and logical key: uuid || 0x00 || logical_key.
func AssociatedData(id uuid.UUID, logicalKey []byte) []byte {
	aad := make([]byte, 0, len(id)+1+len(logicalKey))
	aad = append(aad, id[:]...)
	aad = append(aad, 0x00)
	aad = append(aad, logicalKey...)
	return aad
}
