package domain

import (
	"github.com/allisson/aegis/internal/errors"
)

// Key service errors.
var (
	// ErrKeyManagerUnavailable indicates the key manager backend failed to
	// produce a database key.
	ErrKeyManagerUnavailable = errors.Wrap(errors.ErrUnavailable, "key manager unavailable")

	// ErrIndexDivergence indicates the cache indexes disagree about which
	// entries exist. This is a bug, not a recoverable condition: a write was
	// lost or a reader observed an illegal state. The coordinator terminates.
	ErrIndexDivergence = errors.Wrap(errors.ErrInternal, "cache index divergence")
)
