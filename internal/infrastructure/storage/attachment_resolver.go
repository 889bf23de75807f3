package storage

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"go.uber.org/zap"

	appledger "github.com/tourops/backend/internal/application/ledger"
	"github.com/tourops/backend/internal/domain/shared"
)

// DefaultAttachmentTypes are the content types accepted as transfer proofs
var DefaultAttachmentTypes = []string{
	"application/pdf",
	"image/jpeg",
	"image/png",
	"image/webp",
	"application/octet-stream",
}

// AttachmentResolver verifies that a delivery's attachment reference points
// at a non-empty object of an accepted type, and canonicalizes it to
// s3://<bucket>/<key>.
type AttachmentResolver struct {
	store        ObjectStorage
	allowedTypes map[string]struct{}
	logger       *zap.Logger
}

// NewAttachmentResolver creates a resolver over store. Empty allowedTypes
// means DefaultAttachmentTypes.
func NewAttachmentResolver(store ObjectStorage, logger *zap.Logger, allowedTypes ...string) *AttachmentResolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(allowedTypes) == 0 {
		allowedTypes = DefaultAttachmentTypes
	}
	allowed := make(map[string]struct{}, len(allowedTypes))
	for _, t := range allowedTypes {
		allowed[strings.ToLower(t)] = struct{}{}
	}
	return &AttachmentResolver{store: store, allowedTypes: allowed, logger: logger}
}

// Resolve implements appledger.AttachmentResolver
func (r *AttachmentResolver) Resolve(ctx context.Context, ref string) (string, error) {
	key, err := r.objectKey(ref)
	if err != nil {
		return "", err
	}

	info, err := r.store.Stat(ctx, key)
	if errors.Is(err, ErrObjectNotFound) {
		return "", shared.Validation("attachment %q does not exist", ref)
	}
	if err != nil {
		return "", fmt.Errorf("resolve attachment %q: %w", ref, err)
	}
	if info.Size == 0 {
		return "", shared.Validation("attachment %q is empty", ref)
	}
	if ct := mediaType(info.ContentType); ct != "" {
		if _, ok := r.allowedTypes[ct]; !ok {
			return "", shared.Validation("attachment %q has unsupported content type %q", ref, info.ContentType)
		}
	}

	canonical := "s3://" + r.store.Bucket() + "/" + key
	r.logger.Debug("attachment resolved",
		zap.String("ref", ref),
		zap.String("canonical", canonical),
		zap.Int64("size", info.Size),
	)
	return canonical, nil
}

// objectKey accepts a bare key or an s3:// URI in the configured bucket
func (r *AttachmentResolver) objectKey(ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	key := ref
	if rest, ok := strings.CutPrefix(ref, "s3://"); ok {
		bucket, k, found := strings.Cut(rest, "/")
		if !found || k == "" {
			return "", shared.Validation("attachment %q has no object key", ref)
		}
		if bucket != r.store.Bucket() {
			return "", shared.Validation("attachment %q is outside bucket %q", ref, r.store.Bucket())
		}
		key = k
	}
	key = strings.TrimPrefix(key, "/")
	if key == "" {
		return "", shared.Validation("attachment reference is empty")
	}
	if path.Clean(key) != key || strings.HasPrefix(key, "../") {
		return "", shared.Validation("attachment %q is not a clean object key", ref)
	}
	return key, nil
}

func mediaType(contentType string) string {
	ct, _, _ := strings.Cut(contentType, ";")
	return strings.ToLower(strings.TrimSpace(ct))
}

var _ appledger.AttachmentResolver = (*AttachmentResolver)(nil)
