package contracts

import "context"

// TimedCache stores JSON encodable values that expire after a fixed ttl.
// Get decodes into dest and reports whether a fresh entry was found.
type TimedCache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Put(ctx context.Context, key string, value interface{}) error
	Remove(ctx context.Context, key string) error
}
