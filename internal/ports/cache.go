package ports

import (
	"context"
	"time"
)

// Cache memoizes serialized dashboard responses. A miss is (nil, false, nil);
// errors are reserved for backend failures so callers can fall through to
// the store.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Close() error
}
