package store

import (
	"context"
	"errors"
	"time"
)

// ErrCacheMiss is returned by Get when the node does not hold the key.
// It is distinct from node failure: a miss means the node answered.
var ErrCacheMiss = errors.New("store: cache miss")

// Store is the capability a single cache node exposes. Implementations
// must return errors for transport failures and timeouts rather than
// panicking; callers record them per node and continue.
type Store interface {
	// Get retrieves a value. Returns ErrCacheMiss if the key is absent.
	Get(ctx context.Context, key string) ([]byte, error)
	// Set stores a value. A ttl of zero means no expiration.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// Delete removes a key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
	// Close releases the node connection.
	Close() error
}

// Dialer connects to a cache node at addr with the given per-operation
// timeout. The client uses it to obtain a handle for each ring member.
type Dialer func(addr string, timeout time.Duration) (Store, error)
