// Package storage publishes downloaded files: either straight from the
// locally served downloads directory, or by uploading them to an
// S3-compatible object store and handing back a public or presigned URL.
package storage

import (
	"context"
	"io"
	"time"
)

// LocalMountPrefix is the URL path the HTTP layer serves the download
// directory under. Local publish results are rooted here.
const LocalMountPrefix = "/downloads"

// ObjectStore is the narrow contract the publisher needs from an
// S3-compatible backend.
type ObjectStore interface {
	// Put stores an object under key. Size may be zero when unknown.
	Put(ctx context.Context, key string, body io.Reader, contentType string, size int64) error

	// PresignGet returns a time-limited URL for reading the object at key.
	PresignGet(ctx context.Context, key string, expires time.Duration) (string, error)
}
