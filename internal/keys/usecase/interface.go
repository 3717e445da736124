// Package usecase implements the key service coordinator.
//
// The coordinator is the single owner of key cache writes. Encrypt and decrypt
// run on caller goroutines and take the lock-light freshness fast path; cache
// installs funnel through the coordinator after key manager calls, and
// housekeeping (recency bumps, TTL sweeps) runs on a dedicated worker
// goroutine started by Start.
package usecase

import (
	"context"

	keysDomain "github.com/allisson/aegis/internal/keys/domain"
)

// KeyUseCase is the key service surface: database key lifecycle plus
// value-level encryption and decryption.
type KeyUseCase interface {
	// InitDB asks the key manager to create a key for a new database and
	// installs it into the cache. Returns false if the key manager fails.
	InitDB(ctx context.Context, db keysDomain.Database, options map[string]string) bool

	// OpenDB asks the key manager for the key of an existing database and
	// installs it into the cache, warming it for subsequent encrypt/decrypt
	// calls. Returns false if the key manager fails.
	OpenDB(ctx context.Context, db keysDomain.Database) bool

	// Encrypt produces a ciphertext envelope for plaintext bound to
	// (db.UUID(), logicalKey). The database key is taken from the cache when
	// fresh; otherwise it is fetched from the key manager and installed.
	Encrypt(ctx context.Context, db keysDomain.Database, logicalKey, plaintext []byte) ([]byte, error)

	// Decrypt recovers the plaintext from a ciphertext envelope bound to
	// (db.UUID(), logicalKey). Key acquisition mirrors Encrypt.
	Decrypt(ctx context.Context, db keysDomain.Database, logicalKey, ciphertext []byte) ([]byte, error)

	// Start launches the housekeeping worker. Idempotent.
	Start()

	// Close stops the worker and purges cached key material. Idempotent.
	Close()
}
