// Package service provides key manager backends for the key service.
//
// A key manager is the external authority for database keys: it creates a key
// when a database is initialized and hands the key back when a database is
// opened after a cache miss. The key service never persists keys itself; it
// only caches what a key manager returns.
//
// Implementations:
//   - KMSKeyManager: wraps database keys with a gocloud.dev/secrets keeper
//     (AWS KMS, GCP KMS, Azure Key Vault, HashiCorp Vault, or a local base64
//     key for development).
//   - LocalKeyManager: keeps plaintext keys in process memory; development
//     and tests only.
package service

import (
	"context"

	keysDomain "github.com/allisson/aegis/internal/keys/domain"
)

// KeyManager is the pluggable backend providing database keys.
type KeyManager interface {
	// InitDB creates a database key for a new database. The options map
	// carries provider-specific parameters; providers ignore keys they do
	// not understand.
	InitDB(ctx context.Context, db keysDomain.Database, options map[string]string) ([]byte, error)

	// OpenDB returns the database key for an existing database. Called on a
	// cache miss or a stale entry.
	OpenDB(ctx context.Context, db keysDomain.Database) ([]byte, error)
}
