package providers

import (
	"context"
	"time"
)

// CacheProvider defines the interface for caching and short-lived locks
type CacheProvider interface {
	// Get retrieves a value from cache
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value in cache with expiration
	Set(ctx context.Context, key string, value []byte, expiration time.Duration) error

	// SetNX stores a value only if the key does not exist yet; it reports whether the value was stored
	SetNX(ctx context.Context, key string, value []byte, expiration time.Duration) (bool, error)

	// Delete removes a value from cache
	Delete(ctx context.Context, key string) error

	// Exists checks if a key exists in cache
	Exists(ctx context.Context, key string) (bool, error)
}
