// Package kv provides the key-value stores the course collection is persisted in.
package kv

import (
	"context"
	"errors"
)

// ErrUnknownBackend is returned by Open for an unsupported backend name.
var ErrUnknownBackend = errors.New("unknown storage backend")

// Store is a string key-value store. A missing key reports ok=false, not an error.
type Store interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	// Clear removes every key the store owns.
	Clear(ctx context.Context) error
	Close() error
}

// UpdateFunc receives the current value of a key and returns the value to store.
// Returning an error aborts the update and leaves the key untouched.
type UpdateFunc func(value string, ok bool) (string, error)

// Updater is implemented by stores that can run a read-modify-write on one key
// atomically with respect to other writers of that key.
type Updater interface {
	Update(ctx context.Context, key string, fn UpdateFunc) error
}
