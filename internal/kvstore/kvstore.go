// Package kvstore defines the size-limited string key/value store the
// cache layer persists into, together with the two shipped
// implementations (SQLite-backed and in-memory).
package kvstore

import "errors"

var (
	// ErrNotFound is returned when a key has no stored value.
	ErrNotFound = errors.New("key not found")
	// ErrQuotaExceeded is returned when a write would push the store
	// past its configured byte quota.
	ErrQuotaExceeded = errors.New("storage quota exceeded")
)

// Store is a synchronous string key/value store with a byte quota.
// Implementations must make quota failures distinguishable via
// ErrQuotaExceeded so callers can degrade instead of failing.
type Store interface {
	Get(key string) (string, error)
	Set(key, value string) error
	Remove(key string) error
	// Keys returns all stored keys with the given prefix.
	Keys(prefix string) ([]string, error)
}
