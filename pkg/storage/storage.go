// Package storage abstracts the remote asset host behind a Disk interface.
//
// Two drivers are available:
//   - "s3"    — S3-compatible object storage (AWS S3, MinIO, R2, Spaces)
//   - "local" — local filesystem, for development and tests
//
// The server relays uploaded product images to a Disk and serves their
// public URLs back to clients.
package storage

import (
	"context"
	"io"
)

// Disk is the asset-store driver interface.
type Disk interface {
	// PutStream writes the content of r under key.
	PutStream(ctx context.Context, key string, r io.Reader) error

	// Delete removes the object stored under key.
	Delete(ctx context.Context, key string) error

	// Exists reports whether an object is stored under key.
	Exists(ctx context.Context, key string) bool

	// URL returns the public URL for key.
	URL(key string) string
}
