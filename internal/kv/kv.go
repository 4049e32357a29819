// Package kv defines the key/value persistence contract the ledger writes
// through, with in-memory and SQLite adapters.
package kv

import "context"

// Store is the persistence port. Values are JSON-encoded collections; the
// store itself is format-agnostic.
type Store interface {
	// Get returns the value for key and whether it exists.
	Get(ctx context.Context, key string) (string, bool, error)
	// Set writes the value for key, replacing any existing value.
	Set(ctx context.Context, key, value string) error
	// Remove deletes key. Removing a missing key is not an error.
	Remove(ctx context.Context, key string) error
}
