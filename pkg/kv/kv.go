// Package kv is the small durable key-value layer that local client state
// (the notification ledger, the calendar event index) is persisted through.
package kv

import "errors"

var ErrNotFound = errors.New("kv: key not found")

// Store loads and saves opaque values by key. Load returns ErrNotFound for
// keys that were never saved.
type Store interface {
	Load(key string) ([]byte, error)
	Save(key string, value []byte) error
}
