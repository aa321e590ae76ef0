// Package storage provides the blob store supporting-document files live in,
// with a local filesystem backend and an S3 backend.
package storage

import (
	"context"
	"io"
)

type BlobStore interface {
	Put(ctx context.Context, key string, body io.Reader, contentType string) error
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}
