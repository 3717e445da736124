package app

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/allisson/aegis/internal/config"
	keysDomain "github.com/allisson/aegis/internal/keys/domain"
)

func TestContainer(t *testing.T) {
	t.Run("components initialize lazily and are shared", func(t *testing.T) {
		container := NewContainer(config.Load())
		defer func() {
			require.NoError(t, container.Shutdown(context.Background()))
		}()

		assert.Same(t, container.Logger(), container.Logger())
		assert.Same(t, container.Cache(), container.Cache())

		useCase, err := container.KeyUseCase()
		require.NoError(t, err)
		useCase2, err := container.KeyUseCase()
		require.NoError(t, err)
		assert.Same(t, useCase, useCase2)

		server, err := container.HTTPServer()
		require.NoError(t, err)
		assert.NotNil(t, server)
	})

	t.Run("local key manager is used without KMS_KEY_URI", func(t *testing.T) {
		container := NewContainer(config.Load())
		defer func() {
			require.NoError(t, container.Shutdown(context.Background()))
		}()

		useCase, err := container.KeyUseCase()
		require.NoError(t, err)

		db := keysDomain.NewDescriptor(uuid.New())
		require.True(t, useCase.InitDB(context.Background(), db, nil))

		ciphertext, err := useCase.Encrypt(context.Background(), db, []byte("k"), []byte("v"))
		require.NoError(t, err)

		plaintext, err := useCase.Decrypt(context.Background(), db, []byte("k"), ciphertext)
		require.NoError(t, err)
		assert.Equal(t, []byte("v"), plaintext)
	})

	t.Run("kms key manager is used with KMS_KEY_URI", func(t *testing.T) {
		t.Setenv("KMS_KEY_URI", "base64key://c21va2V5c21va2V5c21va2V5c21va2V5c21va2V5c20=")

		container := NewContainer(config.Load())
		defer func() {
			require.NoError(t, container.Shutdown(context.Background()))
		}()

		useCase, err := container.KeyUseCase()
		require.NoError(t, err)

		db := keysDomain.NewDescriptor(uuid.New())
		require.True(t, useCase.InitDB(context.Background(), db, nil))
		require.True(t, useCase.OpenDB(context.Background(), db))
	})

	t.Run("invalid KMS URI surfaces an init error", func(t *testing.T) {
		t.Setenv("KMS_KEY_URI", "invalid://uri")

		container := NewContainer(config.Load())
		defer func() {
			_ = container.Shutdown(context.Background())
		}()

		_, err := container.KeyUseCase()
		assert.Error(t, err)

		// The error is sticky across accesses.
		_, err = container.HTTPServer()
		assert.Error(t, err)
	})

	t.Run("shutdown is safe on an unused container", func(t *testing.T) {
		container := NewContainer(config.Load())
		assert.NoError(t, container.Shutdown(context.Background()))
	})
}
