// Package kv provides the small key/value stores the session blob
// persists into.
package kv

import "github.com/pkg/errors"

// ErrNotFound is returned by Get when a key is absent.
var ErrNotFound = errors.New("key not found")

// Store is a durable key/value blob store.
type Store interface {
	Get(key string) ([]byte, error)
	Set(key string, value []byte) error
	Delete(key string) error
}
