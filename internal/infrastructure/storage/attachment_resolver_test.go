package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tourops/backend/internal/domain/shared"
)

func TestAttachmentResolver_Resolve(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryObjectStorage("proofs")
	require.NoError(t, store.Upload(ctx, "transfers/abc.pdf", []byte("%PDF"), "application/pdf"))
	require.NoError(t, store.Upload(ctx, "transfers/photo.jpg", []byte{0xff, 0xd8}, "image/jpeg; charset=binary"))
	require.NoError(t, store.Upload(ctx, "transfers/empty.pdf", nil, "application/pdf"))
	require.NoError(t, store.Upload(ctx, "transfers/notes.html", []byte("<p>"), "text/html"))

	r := NewAttachmentResolver(store, nil)

	tests := []struct {
		name     string
		ref      string
		want     string
		wantCode string
	}{
		{name: "bare key", ref: "transfers/abc.pdf", want: "s3://proofs/transfers/abc.pdf"},
		{name: "leading slash", ref: "/transfers/abc.pdf", want: "s3://proofs/transfers/abc.pdf"},
		{name: "s3 uri", ref: "s3://proofs/transfers/photo.jpg", want: "s3://proofs/transfers/photo.jpg"},
		{name: "missing object", ref: "transfers/nope.pdf", wantCode: shared.CodeValidation},
		{name: "empty object", ref: "transfers/empty.pdf", wantCode: shared.CodeValidation},
		{name: "unsupported type", ref: "transfers/notes.html", wantCode: shared.CodeValidation},
		{name: "foreign bucket", ref: "s3://other/transfers/abc.pdf", wantCode: shared.CodeValidation},
		{name: "no key in uri", ref: "s3://proofs", wantCode: shared.CodeValidation},
		{name: "path traversal", ref: "transfers/../secrets.pdf", wantCode: shared.CodeValidation},
		{name: "blank", ref: "   ", wantCode: shared.CodeValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.Resolve(ctx, tt.ref)
			if tt.wantCode != "" {
				require.Error(t, err)
				assert.Equal(t, tt.wantCode, shared.CodeOf(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

type failingStorage struct{ *MemoryObjectStorage }

func (failingStorage) Stat(context.Context, string) (*ObjectInfo, error) {
	return nil, errors.New("connection reset")
}

func TestAttachmentResolver_StorageErrorIsNotADomainError(t *testing.T) {
	r := NewAttachmentResolver(failingStorage{NewMemoryObjectStorage("proofs")}, nil)

	_, err := r.Resolve(context.Background(), "transfers/abc.pdf")
	require.Error(t, err)
	assert.Empty(t, shared.CodeOf(err))
	assert.Equal(t, shared.CodeLedgerFailure, shared.CodeOf(shared.LedgerFailure(err)))
}

func TestReceiptArchive(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryObjectStorage("ledger")
	archive := NewReceiptArchive(store, "receipts")

	key, err := archive.Archive(ctx, "REC-000042", []byte("%PDF-receipt"))
	require.NoError(t, err)
	assert.Equal(t, "receipts/REC-000042.pdf", key)

	data, ok := store.Object(key)
	require.True(t, ok)
	assert.Equal(t, "%PDF-receipt", string(data))

	info, err := store.Stat(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", info.ContentType)

	url, _, err := archive.DownloadURL(ctx, "REC-000042", time.Minute)
	require.NoError(t, err)
	assert.Contains(t, url, "receipts/REC-000042.pdf")
}
