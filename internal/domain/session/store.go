package session

import "context"

// Store maps identity to at most one session. Expiry is TTL-based and
// checked lazily on access; a background sweep is an optimization, not a
// correctness requirement.
type Store interface {
	// Get returns the live session for identity, or nil if none exists or
	// the stored one has expired.
	Get(ctx context.Context, identity string) (*Session, error)
	Put(ctx context.Context, sess *Session) error
	Delete(ctx context.Context, identity string) error
}
