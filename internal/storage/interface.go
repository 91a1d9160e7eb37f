package storage

import (
	"context"
	"time"
)

// Object references one stored object.
type Object struct {
	Bucket string
	Key    string
	Size   int64
}

// ObjectStore is the object storage surface the pipeline and entry points use.
// Missing objects are reported as apperr.NotFound, every other failure as apperr.Storage.
type ObjectStore interface {
	// List returns every object under prefix in listing (lexicographic key) order.
	List(ctx context.Context, bucket, prefix string) ([]Object, error)
	// Download streams an object into the local file dst.
	Download(ctx context.Context, bucket, key, dst string) error
	Get(ctx context.Context, bucket, key string) ([]byte, error)
	Put(ctx context.Context, bucket, key string, body []byte, contentType string) error
	// PresignPut returns a time-limited URL a client can PUT the object body to.
	PresignPut(ctx context.Context, bucket, key, contentType string, ttl time.Duration) (string, error)
}
