// Package kvstore provides whole-document key-value persistence for the
// session engines. Every write replaces the full document for a key, so
// concurrent writes resolve to last-write-wins.
package kvstore

import "context"

// Store is the persistence surface required by the session engines.
type Store interface {
	// Get returns the document for a key. The second return value is false
	// when the key is absent.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set replaces the document for a key.
	Set(ctx context.Context, key string, value []byte) error
	// Remove deletes the document for a key. Removing an absent key is not
	// an error.
	Remove(ctx context.Context, key string) error
}
