// Package domain defines core domain models for the per-database key service:
// the database descriptor consumed by key manager providers and the service
// error surface.
package domain

import (
	"github.com/google/uuid"
)

// Database describes the database a key operation targets. Callers supply an
// opaque descriptor; the only field the key service itself reads is the UUID.
// Key manager providers may type-assert the descriptor for provider-specific
// fields.
type Database interface {
	// UUID returns the identity of the database.
	UUID() uuid.UUID
}

// Descriptor is the minimal Database implementation: a bare UUID.
type Descriptor struct {
	id uuid.UUID
}

// NewDescriptor creates a database descriptor for the given UUID.
func NewDescriptor(id uuid.UUID) Descriptor {
	return Descriptor{id: id}
}

// UUID returns the identity of the database.
func (d Descriptor) UUID() uuid.UUID {
	return d.id
}
