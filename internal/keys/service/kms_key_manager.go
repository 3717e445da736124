package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"gocloud.dev/secrets"

	cryptoDomain "github.com/allisson/aegis/internal/crypto/domain"
	apperrors "github.com/allisson/aegis/internal/errors"
	keysDomain "github.com/allisson/aegis/internal/keys/domain"

	// Register all KMS provider drivers
	_ "gocloud.dev/secrets/awskms"
	_ "gocloud.dev/secrets/azurekeyvault"
	_ "gocloud.dev/secrets/gcpkms"
	_ "gocloud.dev/secrets/hashivault"
	_ "gocloud.dev/secrets/localsecrets"
)

// KMSKeyManager implements KeyManager on top of a gocloud.dev/secrets keeper.
//
// InitDB generates a random 256-bit database key, encrypts it with the keeper
// and retains only the encrypted blob; OpenDB decrypts the blob back into the
// plaintext key. The embedding system is expected to persist the encrypted
// blobs alongside its database metadata; this implementation keeps them in
// process memory, which is sufficient for a single-process deployment and for
// exercising the real KMS round trip.
type KMSKeyManager struct {
	keeper *secrets.Keeper

	mu      sync.RWMutex
	wrapped map[uuid.UUID][]byte
}

// NewKMSKeyManager opens a keeper for keyURI and returns a key manager backed
// by it. Supported URIs: awskms://, gcpkms://, azurekeyvault://, hashivault://
// and base64key:// for local development.
func NewKMSKeyManager(ctx context.Context, keyURI string) (*KMSKeyManager, error) {
	keeper, err := secrets.OpenKeeper(ctx, keyURI)
	if err != nil {
		return nil, fmt.Errorf("failed to open KMS keeper: %w", err)
	}

	return &KMSKeyManager{
		keeper:  keeper,
		wrapped: make(map[uuid.UUID][]byte),
	}, nil
}

// InitDB creates and returns a fresh database key for db, replacing any
// previous key for the same UUID.
func (k *KMSKeyManager) InitDB(
	ctx context.Context,
	db keysDomain.Database,
	options map[string]string,
) ([]byte, error) {
	_ = options // no provider-specific options yet

	key := make([]byte, cryptoDomain.KeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("failed to generate database key: %w", err)
	}

	blob, err := k.keeper.Encrypt(ctx, key)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrUnavailable, err.Error())
	}

	k.mu.Lock()
	k.wrapped[db.UUID()] = blob
	k.mu.Unlock()

	return key, nil
}

// OpenDB decrypts and returns the database key for db.
func (k *KMSKeyManager) OpenDB(ctx context.Context, db keysDomain.Database) ([]byte, error) {
	k.mu.RLock()
	blob, ok := k.wrapped[db.UUID()]
	k.mu.RUnlock()

	if !ok {
		return nil, apperrors.Wrapf(apperrors.ErrNotFound, "no key for database %s", db.UUID())
	}

	key, err := k.keeper.Decrypt(ctx, blob)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrUnavailable, err.Error())
	}

	return key, nil
}

// Close releases the underlying keeper.
func (k *KMSKeyManager) Close() error {
	return k.keeper.Close()
}
