package storage

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when nothing was saved under the key.
var ErrNotFound = errors.New("storage: key not found")

// KV is a byte-oriented key/value store that survives restarts.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}
