package storage

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/tourops/backend/internal/infrastructure/config"
)

func TestNewS3ObjectStorage_Validation(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *config.StorageConfig
		wantErr string
	}{
		{name: "nil config", cfg: nil, wantErr: "configuration is required"},
		{name: "missing bucket", cfg: &config.StorageConfig{AccessKey: "k", SecretKey: "s"}, wantErr: "bucket is required"},
		{name: "missing access key", cfg: &config.StorageConfig{Bucket: "b", SecretKey: "s"}, wantErr: "access key is required"},
		{name: "missing secret key", cfg: &config.StorageConfig{Bucket: "b", AccessKey: "k"}, wantErr: "secret key is required"},
		{name: "bad endpoint", cfg: &config.StorageConfig{Bucket: "b", AccessKey: "k", SecretKey: "s", Endpoint: "http://"}, wantErr: "invalid storage endpoint"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewS3ObjectStorage(tt.cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}

	t.Run("valid config applies defaults", func(t *testing.T) {
		s, err := NewS3ObjectStorage(&config.StorageConfig{
			Bucket:    "transfer-proofs",
			AccessKey: "k",
			SecretKey: "s",
		}, WithLogger(zaptest.NewLogger(t)))
		require.NoError(t, err)
		assert.Equal(t, "transfer-proofs", s.Bucket())
		assert.Equal(t, 15*time.Minute, s.presignExpiration)
	})

	t.Run("presign option overrides config", func(t *testing.T) {
		s, err := NewS3ObjectStorage(&config.StorageConfig{
			Bucket: "b", AccessKey: "k", SecretKey: "s", PresignExpiration: time.Minute,
		}, WithPresignExpiration(time.Hour))
		require.NoError(t, err)
		assert.Equal(t, time.Hour, s.presignExpiration)
	})
}

func TestNormalizeEndpoint(t *testing.T) {
	tests := []struct {
		in     string
		useSSL bool
		want   string
	}{
		{"", false, "http://localhost:9000"},
		{"minio:9000", false, "http://minio:9000"},
		{"minio:9000", true, "https://minio:9000"},
		{"https://s3.amazonaws.com", false, "https://s3.amazonaws.com"},
	}
	for _, tt := range tests {
		got, err := normalizeEndpoint(tt.in, tt.useSSL)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}

// fakeS3 answers path-style HEAD and PUT requests for a single bucket.
type fakeS3 struct {
	mu      sync.Mutex
	bucket  string
	objects map[string]fakeObject
}

type fakeObject struct {
	body        []byte
	contentType string
}

func newFakeS3(t *testing.T, bucket string) (*fakeS3, *httptest.Server) {
	t.Helper()
	f := &fakeS3{bucket: bucket, objects: map[string]fakeObject{}}
	srv := httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(srv.Close)
	return f, srv
}

func (f *fakeS3) serve(w http.ResponseWriter, r *http.Request) {
	key, ok := strings.CutPrefix(r.URL.Path, "/"+f.bucket+"/")
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	switch r.Method {
	case http.MethodHead:
		obj, found := f.objects[key]
		if !found {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", obj.contentType)
		w.Header().Set("Content-Length", strconv.Itoa(len(obj.body)))
		w.Header().Set("ETag", `"abc123"`)
		w.Header().Set("Last-Modified", time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC).Format(http.TimeFormat))
		w.WriteHeader(http.StatusOK)
	case http.MethodPut:
		body, _ := io.ReadAll(r.Body)
		f.objects[key] = fakeObject{body: body, contentType: r.Header.Get("Content-Type")}
		w.Header().Set("ETag", `"abc123"`)
		w.WriteHeader(http.StatusOK)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func newFakeBackedStorage(t *testing.T) (*S3ObjectStorage, *fakeS3) {
	t.Helper()
	fake, srv := newFakeS3(t, "proofs")
	s, err := NewS3ObjectStorage(&config.StorageConfig{
		Bucket:       "proofs",
		AccessKey:    "k",
		SecretKey:    "s",
		Endpoint:     srv.URL,
		UsePathStyle: true,
	})
	require.NoError(t, err)
	return s, fake
}

func TestS3ObjectStorage_StatAndUpload(t *testing.T) {
	s, fake := newFakeBackedStorage(t)
	ctx := context.Background()

	_, err := s.Stat(ctx, "transfers/missing.pdf")
	assert.ErrorIs(t, err, ErrObjectNotFound)

	fake.objects["transfers/2026-05/proof.pdf"] = fakeObject{body: []byte("%PDF-1.7"), contentType: "application/pdf"}

	info, err := s.Stat(ctx, "transfers/2026-05/proof.pdf")
	require.NoError(t, err)
	assert.Equal(t, int64(8), info.Size)
	assert.Equal(t, "application/pdf", info.ContentType)
	assert.Equal(t, "abc123", info.ETag)
	assert.False(t, info.LastModified.IsZero())

	require.NoError(t, s.Upload(ctx, "receipts/REC-000002.pdf", []byte("%PDF-1.7 receipt"), "application/pdf"))
	fake.mu.Lock()
	stored, ok := fake.objects["receipts/REC-000002.pdf"]
	fake.mu.Unlock()
	require.True(t, ok)
	assert.Equal(t, "application/pdf", stored.contentType)
}

func TestS3ObjectStorage_EmptyKey(t *testing.T) {
	s, _ := newFakeBackedStorage(t)
	ctx := context.Background()

	_, err := s.Stat(ctx, "")
	assert.Error(t, err)
	assert.Error(t, s.Upload(ctx, "", nil, "application/pdf"))
	_, _, err = s.GenerateDownloadURL(ctx, "", time.Minute)
	assert.Error(t, err)
}

func TestS3ObjectStorage_GenerateDownloadURL(t *testing.T) {
	s, _ := newFakeBackedStorage(t)

	url, expiresAt, err := s.GenerateDownloadURL(context.Background(), "receipts/REC-000001.pdf", 0)
	require.NoError(t, err)
	assert.Contains(t, url, "/proofs/receipts/REC-000001.pdf")
	assert.Contains(t, url, "X-Amz-Signature=")
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), expiresAt, 5*time.Second)
}
