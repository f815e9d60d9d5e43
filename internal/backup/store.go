package backup

import (
	"context"
	"io"
	"time"
)

// RemoteObject describes an object in the remote store, as returned by List.
type RemoteObject struct {
	Key     string
	Size    int64
	ModTime time.Time
}

// ObjectStore provides an interface for the remote object storage backend.
// Credential resolution is owned by the implementation (shared config,
// environment, instance profile), never by the workflow.
type ObjectStore interface {
	// List returns all objects under the given key prefix, keyed by object key.
	List(ctx context.Context, bucket, prefix string) (map[string]RemoteObject, error)

	// Upload stores an object. size is the number of bytes that will be
	// read from r.
	Upload(ctx context.Context, bucket, key string, r io.Reader, size int64) error

	// Download retrieves an object and writes its content to w.
	Download(ctx context.Context, bucket, key string, w io.Writer) error
}
