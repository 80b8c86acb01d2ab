// Package kv holds the string key-value stores backing the local collections.
// Values are opaque serialized text; callers own the encoding.
package kv

import (
	"context"
	"errors"
)

// ErrClosed is returned by stores used after Close.
var ErrClosed = errors.New("kv: store closed")

// Store is a persistent string key-value map.
type Store interface {
	// Get returns the value for key and whether it was present.
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Close() error
}
