package kv

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a key does not exist in the store.
var ErrNotFound = errors.New("key not found")

// ErrUnavailable is returned when the backing store cannot be reached.
// Callers performing validation decisions must treat it as a denial.
var ErrUnavailable = errors.New("ephemeral store unavailable")

// Store is the shared ephemeral store contract used for the token
// blacklist, the refresh-token registry, token metadata, and MFA
// challenges. Single-key operations are atomic on the backend; prefix
// scans are not and callers must not assume point-in-time snapshots.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	SetWithTTL(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	DeleteMany(ctx context.Context, keys ...string) error
	ScanPrefix(ctx context.Context, prefix string) ([]string, error)
	Ping(ctx context.Context) error
}
