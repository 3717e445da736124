package domain

import (
	"bytes"
	"crypto/rand"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func randomBytes(t *testing.T, n int) []byte {
	t.Helper()
	b := make([]byte, n)
	_, err := rand.Read(b)
	require.NoError(t, err)
	return b
}

func TestParseEnvelope(t *testing.T) {
	wrappedKey := randomBytes(t, WrappedKeySize)
	tag := randomBytes(t, TagSize)
	body := randomBytes(t, 5)

	t.Run("round trip", func(t *testing.T) {
		env := Envelope{WrappedKey: wrappedKey, Tag: tag, Ciphertext: body}
		data := env.Marshal()
		assert.Len(t, data, 57+5)
		assert.Equal(t, EnvelopeVersion, data[0])

		parsed, err := ParseEnvelope(data)
		require.NoError(t, err)
		assert.Equal(t, wrappedKey, parsed.WrappedKey)
		assert.Equal(t, tag, parsed.Tag)
		assert.Equal(t, body, parsed.Ciphertext)
	})

	t.Run("round trip with empty body", func(t *testing.T) {
		env := Envelope{WrappedKey: wrappedKey, Tag: tag}
		data := env.Marshal()
		assert.Len(t, data, 57)

		parsed, err := ParseEnvelope(data)
		require.NoError(t, err)
		assert.Empty(t, parsed.Ciphertext)
	})

	t.Run("buffer shorter than header", func(t *testing.T) {
		_, err := ParseEnvelope(make([]byte, 10))
		assert.ErrorIs(t, err, ErrNotCiphertext)

		_, err = ParseEnvelope(make([]byte, 56))
		assert.ErrorIs(t, err, ErrNotCiphertext)
	})

	t.Run("nil buffer", func(t *testing.T) {
		_, err := ParseEnvelope(nil)
		assert.ErrorIs(t, err, ErrNotCiphertext)
	})

	t.Run("unknown version", func(t *testing.T) {
		env := Envelope{WrappedKey: wrappedKey, Tag: tag, Ciphertext: body}
		data := env.Marshal()
		data[0] = 0x02

		_, err := ParseEnvelope(data)
		assert.ErrorIs(t, err, ErrNotCiphertext)
	})
}

func TestAssociatedData(t *testing.T) {
	id := uuid.MustParse("00000000-0000-0000-0000-000000000001")

	t.Run("binds uuid and logical key with separator", func(t *testing.T) {
		aad := AssociatedData(id, []byte("name"))
		want := append(append(append([]byte{}, id[:]...), 0x00), []byte("name")...)
		assert.Equal(t, want, aad)
		assert.Len(t, aad, 16+1+4)
	})

	t.Run("different uuids produce different aad", func(t *testing.T) {
		other := uuid.MustParse("00000000-0000-0000-0000-000000000002")
		assert.False(t, bytes.Equal(AssociatedData(id, []byte("k")), AssociatedData(other, []byte("k"))))
	})

	t.Run("different logical keys produce different aad", func(t *testing.T) {
		assert.False(t, bytes.Equal(AssociatedData(id, []byte("a")), AssociatedData(id, []byte("b"))))
	})
}

func TestZero(t *testing.T) {
	t.Run("zeros all bytes", func(t *testing.T) {
		b := randomBytes(t, 32)
		Zero(b)
		assert.Equal(t, make([]byte, 32), b)
	})

	t.Run("nil slice is a no-op", func(t *testing.T) {
		assert.NotPanics(t, func() { Zero(nil) })
	})
}
