// Package storage provides the durability backend for the wallet state.
package storage

import "errors"

// ErrNotFound is returned when a key has never been written.
var ErrNotFound = errors.New("key not found")

// DB is the interface for key-value persistence. The wallet keeps its whole
// state under a single key, so the interface is deliberately small: the
// atomic read-modify-write discipline lives above it, in the state store.
type DB interface {
	Get(key []byte) ([]byte, error)
	Put(key, value []byte) error
	Delete(key []byte) error
	Has(key []byte) (bool, error)
	Close() error
}
