package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"sync"

	"github.com/google/uuid"

	cryptoDomain "github.com/allisson/aegis/internal/crypto/domain"
	apperrors "github.com/allisson/aegis/internal/errors"
	keysDomain "github.com/allisson/aegis/internal/keys/domain"
)

// LocalKeyManager implements KeyManager with plaintext keys held in process
// memory. Keys do not survive a restart and are never wrapped; use it for
// development and tests only.
type LocalKeyManager struct {
	mu   sync.RWMutex
	keys map[uuid.UUID][]byte
}

// NewLocalKeyManager creates an empty local key manager.
func NewLocalKeyManager() *LocalKeyManager {
	return &LocalKeyManager{
		keys: make(map[uuid.UUID][]byte),
	}
}

// InitDB creates and returns a fresh database key for db, replacing any
// previous key for the same UUID.
func (l *LocalKeyManager) InitDB(
	_ context.Context,
	db keysDomain.Database,
	options map[string]string,
) ([]byte, error) {
	_ = options

	key := make([]byte, cryptoDomain.KeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("failed to generate database key: %w", err)
	}

	l.mu.Lock()
	l.keys[db.UUID()] = key
	l.mu.Unlock()

	return key, nil
}

// OpenDB returns the database key for db.
func (l *LocalKeyManager) OpenDB(_ context.Context, db keysDomain.Database) ([]byte, error) {
	l.mu.RLock()
	key, ok := l.keys[db.UUID()]
	l.mu.RUnlock()

	if !ok {
		return nil, apperrors.Wrapf(apperrors.ErrNotFound, "no key for database %s", db.UUID())
	}

	return key, nil
}
