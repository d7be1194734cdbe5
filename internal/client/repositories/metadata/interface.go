// Package metadata is the client's local key-value table. Preferences and
// session hints are stored here as opaque values.
package metadata

import (
	"context"
	"time"
)

// Record is a stored value with the time it was last written.
type Record struct {
	Key       string
	Value     []byte
	UpdatedAt time.Time
}

type Repository interface {
	// Get returns (nil, nil) when key is absent.
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	List(ctx context.Context) ([]Record, error)
	Clear(ctx context.Context) error
}
