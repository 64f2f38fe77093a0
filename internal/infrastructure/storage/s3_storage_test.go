package storage

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/avocado/teamhub/internal/domain/course"
	"github.com/avocado/teamhub/internal/domain/shared"
	"github.com/avocado/teamhub/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func validConfig(endpoint string) config.StorageConfig {
	return config.StorageConfig{
		Bucket:       "assignments",
		AccessKey:    "minio",
		SecretKey:    "minio-secret",
		Endpoint:     endpoint,
		UsePathStyle: true,
	}
}

func TestNewS3FileStore_RequiresCredentials(t *testing.T) {
	_, err := NewS3FileStore(config.StorageConfig{AccessKey: "minio"}, nil)
	assert.EqualError(t, err, "object storage needs storage.bucket, storage.secret_key")

	store, err := NewS3FileStore(validConfig(""), zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, "assignments", store.Bucket())
	assert.Equal(t, defaultPresignTTL, store.presignTTL)
}

func TestEndpointURL(t *testing.T) {
	tests := []struct {
		endpoint string
		ssl      bool
		want     string
	}{
		{"", false, "http://localhost:9000"},
		{"minio:9000", false, "http://minio:9000"},
		{"minio:9000", true, "https://minio:9000"},
		{"https://s3.ap-southeast-2.amazonaws.com", false, "https://s3.ap-southeast-2.amazonaws.com"},
		{"http://minio:9000", true, "http://minio:9000"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, endpointURL(tt.endpoint, tt.ssl), tt.endpoint)
	}
}

func TestS3FileStore_EmptyKey(t *testing.T) {
	store, err := NewS3FileStore(validConfig(""), nil)
	require.NoError(t, err)
	ctx := context.Background()

	assert.ErrorIs(t, store.Upload(ctx, "", "application/pdf", strings.NewReader("x"), 1), errEmptyKey)
	assert.ErrorIs(t, store.Delete(ctx, ""), errEmptyKey)
	_, err = store.Exists(ctx, "")
	assert.ErrorIs(t, err, errEmptyKey)
	_, _, err = store.PresignDownload(ctx, "")
	assert.ErrorIs(t, err, errEmptyKey)
}

// fakeS3 answers the path-style requests the store makes
type fakeS3 struct {
	mu       sync.Mutex
	buckets  map[string]bool
	objects  map[string][]byte
	requests []string
}

func newFakeS3() *fakeS3 {
	return &fakeS3{buckets: map[string]bool{}, objects: map[string][]byte{}}
}

func (f *fakeS3) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	path := strings.TrimSuffix(r.URL.Path, "/")
	f.requests = append(f.requests, r.Method+" "+path)

	bucket, key, _ := strings.Cut(strings.TrimPrefix(path, "/"), "/")
	if key == "" {
		switch r.Method {
		case http.MethodHead:
			if !f.buckets[bucket] {
				w.WriteHeader(http.StatusNotFound)
				return
			}
		case http.MethodPut:
			f.buckets[bucket] = true
		}
		w.WriteHeader(http.StatusOK)
		return
	}

	switch r.Method {
	case http.MethodPut:
		body, _ := io.ReadAll(r.Body)
		f.objects[path] = body
		w.Header().Set("ETag", `"etag"`)
		w.WriteHeader(http.StatusOK)
	case http.MethodHead:
		if _, ok := f.objects[path]; !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusOK)
	case http.MethodDelete:
		delete(f.objects, path)
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusNotImplemented)
	}
}

func (f *fakeS3) snapshot() ([]string, map[string][]byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	objects := make(map[string][]byte, len(f.objects))
	for k, v := range f.objects {
		objects[k] = v
	}
	return append([]string(nil), f.requests...), objects
}

func TestS3FileStore_EnsureBucket(t *testing.T) {
	fake := newFakeS3()
	srv := httptest.NewServer(fake)
	defer srv.Close()

	store, err := NewS3FileStore(validConfig(srv.URL), nil)
	require.NoError(t, err)
	ctx := context.Background()

	assert.Error(t, store.Ping(ctx), "the bucket does not exist yet")
	require.NoError(t, store.EnsureBucket(ctx))
	require.NoError(t, store.EnsureBucket(ctx))
	assert.NoError(t, store.Ping(ctx))

	requests, _ := fake.snapshot()
	assert.Equal(t, []string{
		"HEAD /assignments",
		"HEAD /assignments",
		"PUT /assignments",
		"HEAD /assignments",
		"HEAD /assignments",
	}, requests)
}

func TestS3FileStore_UploadExistsDelete(t *testing.T) {
	fake := newFakeS3()
	srv := httptest.NewServer(fake)
	defer srv.Close()

	store, err := NewS3FileStore(validConfig(srv.URL), nil)
	require.NoError(t, err)
	ctx := context.Background()

	key, err := course.AssignmentObjectKey("COMP9900", "spec.pdf")
	require.NoError(t, err)

	exists, err := store.Exists(ctx, key)
	require.NoError(t, err)
	assert.False(t, exists)

	// a reader that cannot seek is buffered before signing
	body := io.MultiReader(strings.NewReader("%PDF-1.4 "), strings.NewReader("body"))
	require.NoError(t, store.Upload(ctx, key, "application/pdf", body, -1))

	_, objects := fake.snapshot()
	assert.Contains(t, string(objects["/assignments/COMP9900/spec.pdf"]), "%PDF-1.4 body")

	exists, err = store.Exists(ctx, key)
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, store.Delete(ctx, key))
	requests, objects := fake.snapshot()
	assert.Empty(t, objects)
	assert.Equal(t, "DELETE /assignments/COMP9900/spec.pdf", requests[len(requests)-1])
}

func TestS3FileStore_PresignDownload(t *testing.T) {
	cfg := validConfig("http://localhost:9000")
	cfg.PresignExpiration = 10 * time.Minute
	store, err := NewS3FileStore(cfg, nil)
	require.NoError(t, err)

	url, expiresAt, err := store.PresignDownload(context.Background(), "COMP9900/spec.pdf")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "http://localhost:9000/assignments/COMP9900/spec.pdf?"), url)
	assert.Contains(t, url, "X-Amz-Expires=600")
	assert.Contains(t, url, "X-Amz-Signature")
	assert.WithinDuration(t, time.Now().Add(10*time.Minute), expiresAt, 5*time.Second)
}

func TestDisabledFileStore(t *testing.T) {
	var store DisabledFileStore
	ctx := context.Background()

	assert.ErrorIs(t, store.Upload(ctx, "k", "application/pdf", strings.NewReader(""), 0), shared.ErrStorageUnavailable)
	assert.ErrorIs(t, store.Delete(ctx, "k"), shared.ErrStorageUnavailable)
	_, _, err := store.PresignDownload(ctx, "k")
	assert.ErrorIs(t, err, shared.ErrStorageUnavailable)
}
