package cache

import (
	"context"
	"time"
)

// Cache is the key/value contract the services depend on
type Cache interface {
	// Get unmarshals the cached value into dest.
	// found is false on a miss and dest is left untouched.
	Get(ctx context.Context, key string, dest interface{}) (bool, error)

	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error

	Delete(ctx context.Context, keys ...string) error

	Ping(ctx context.Context) error

	// DeletePattern removes every key matching a glob such as "supplier_products:<id>:*"
	DeletePattern(ctx context.Context, pattern string) error
}
