package storage

import (
	"context"
	"strings"
	"time"

	appledger "github.com/tourops/backend/internal/application/ledger"
)

// ReceiptArchive stores rendered receipt PDFs under a key prefix
type ReceiptArchive struct {
	store  ObjectStorage
	prefix string
}

// NewReceiptArchive creates an archive writing to prefix (e.g. "receipts/")
func NewReceiptArchive(store ObjectStorage, prefix string) *ReceiptArchive {
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return &ReceiptArchive{store: store, prefix: prefix}
}

// Key returns the object key of a receipt
func (a *ReceiptArchive) Key(receiptNumber string) string {
	return a.prefix + receiptNumber + ".pdf"
}

// Archive implements appledger.ReceiptArchive. Re-rendering a receipt
// overwrites the same key.
func (a *ReceiptArchive) Archive(ctx context.Context, receiptNumber string, pdf []byte) (string, error) {
	key := a.Key(receiptNumber)
	if err := a.store.Upload(ctx, key, pdf, "application/pdf"); err != nil {
		return "", err
	}
	return key, nil
}

// DownloadURL returns a presigned link to an archived receipt
func (a *ReceiptArchive) DownloadURL(ctx context.Context, receiptNumber string, expiresIn time.Duration) (string, time.Time, error) {
	return a.store.GenerateDownloadURL(ctx, a.Key(receiptNumber), expiresIn)
}

var _ appledger.ReceiptArchive = (*ReceiptArchive)(nil)
