package storage

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// MemoryObjectStorage keeps objects in process memory. It backs tests and
// local development without an S3 endpoint.
type MemoryObjectStorage struct {
	mu      sync.RWMutex
	bucket  string
	objects map[string]memoryObject
	now     func() time.Time
}

type memoryObject struct {
	data        []byte
	contentType string
	modified    time.Time
}

// NewMemoryObjectStorage creates an empty in-memory bucket
func NewMemoryObjectStorage(bucket string) *MemoryObjectStorage {
	return &MemoryObjectStorage{
		bucket:  bucket,
		objects: make(map[string]memoryObject),
		now:     time.Now,
	}
}

// Stat implements ObjectStorage
func (m *MemoryObjectStorage) Stat(_ context.Context, storageKey string) (*ObjectInfo, error) {
	if storageKey == "" {
		return nil, errors.New("storage key is required")
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	obj, ok := m.objects[storageKey]
	if !ok {
		return nil, ErrObjectNotFound
	}
	return &ObjectInfo{
		Key:          storageKey,
		Size:         int64(len(obj.data)),
		ContentType:  obj.contentType,
		LastModified: obj.modified,
	}, nil
}

// Upload implements ObjectStorage. The data is copied.
func (m *MemoryObjectStorage) Upload(_ context.Context, storageKey string, data []byte, contentType string) error {
	if storageKey == "" {
		return errors.New("storage key is required")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[storageKey] = memoryObject{
		data:        append([]byte(nil), data...),
		contentType: contentType,
		modified:    m.now(),
	}
	return nil
}

// GenerateDownloadURL implements ObjectStorage with a memory:// URL
func (m *MemoryObjectStorage) GenerateDownloadURL(_ context.Context, storageKey string, expiresIn time.Duration) (string, time.Time, error) {
	if storageKey == "" {
		return "", time.Time{}, errors.New("storage key is required")
	}
	expiresAt := m.now().Add(expiresIn)
	return fmt.Sprintf("memory://%s/%s?expires=%d", m.bucket, storageKey, expiresAt.Unix()), expiresAt, nil
}

// Bucket implements ObjectStorage
func (m *MemoryObjectStorage) Bucket() string {
	return m.bucket
}

// Object returns a stored object's bytes
func (m *MemoryObjectStorage) Object(storageKey string) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	obj, ok := m.objects[storageKey]
	return obj.data, ok
}

var _ ObjectStorage = (*MemoryObjectStorage)(nil)
