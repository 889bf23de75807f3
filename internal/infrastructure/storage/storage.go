// Package storage provides object storage for ledger attachments: transfer
// proofs referenced by deliveries and archived receipt PDFs.
package storage

import (
	"context"
	"errors"
	"time"
)

// ErrObjectNotFound is returned by Stat when the key does not exist
var ErrObjectNotFound = errors.New("object not found")

// ObjectInfo is the metadata of a stored object
type ObjectInfo struct {
	Key          string
	Size         int64
	ContentType  string
	ETag         string
	LastModified time.Time
}

// ObjectStorage is the subset of an S3-compatible store the ledger uses
type ObjectStorage interface {
	Stat(ctx context.Context, storageKey string) (*ObjectInfo, error)
	Upload(ctx context.Context, storageKey string, data []byte, contentType string) error
	GenerateDownloadURL(ctx context.Context, storageKey string, expiresIn time.Duration) (string, time.Time, error)
	Bucket() string
}
