// Package blobstore abstracts durable storage of document bytes. The intake
// validator stores accepted files here and records the returned locator on
// the application; nothing else in the system touches raw file content.
package blobstore

import (
	"context"
	"io"
)

// BlobStore durably stores a byte stream under a key and returns a locator
// that can later retrieve it. Implementations must make Delete safe to call
// for keys that were never stored (intake cleanup is best-effort and may
// race with a failed Put).
type BlobStore interface {
	Put(ctx context.Context, key string, content io.Reader, size int64, contentType string) (locator string, err error)
	Delete(ctx context.Context, locator string) error
}
