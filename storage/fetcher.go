package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"EchoFM/config"
)

// MediaFetcher resolves an opaque audio URI into a readable byte stream for
// the decoder. Format validation is the decoder's job; a fetcher only moves
// bytes.
type MediaFetcher interface {
	Fetch(ctx context.Context, uri string) (io.ReadCloser, error)
}

// FileFetcher reads local files, optionally rooted at a base directory.
type FileFetcher struct {
	baseDir string
}

// NewFileFetcher creates a FileFetcher. An empty baseDir resolves URIs as
// given.
func NewFileFetcher(baseDir string) *FileFetcher {
	return &FileFetcher{baseDir: baseDir}
}

func (f *FileFetcher) Fetch(ctx context.Context, uri string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path := strings.TrimPrefix(uri, "file://")
	if f.baseDir != "" {
		path = filepath.Join(f.baseDir, path)
	}
	rc, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	return rc, nil
}

// MinioFetcher resolves URIs of the form minio://bucket/object (or bare
// object keys against the default bucket) from object storage.
type MinioFetcher struct {
	client *minio.Client
	bucket string
}

// NewMinioFetcher connects a MinIO client from config and verifies the
// default bucket exists.
func NewMinioFetcher(cfg *config.Config) (*MinioFetcher, error) {
	client, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessKey, cfg.MinioSecretKey, ""),
		Secure: cfg.MinioUseSSL,
		Region: cfg.MinioRegion,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	exists, err := client.BucketExists(ctx, cfg.MinioBucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket %s: %w", cfg.MinioBucket, err)
	}
	if !exists {
		return nil, fmt.Errorf("bucket %s does not exist", cfg.MinioBucket)
	}

	return &MinioFetcher{client: client, bucket: cfg.MinioBucket}, nil
}

func (f *MinioFetcher) Fetch(ctx context.Context, uri string) (io.ReadCloser, error) {
	bucket := f.bucket
	object := uri
	if rest, ok := strings.CutPrefix(uri, "minio://"); ok {
		parts := strings.SplitN(rest, "/", 2)
		if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
			return nil, fmt.Errorf("malformed minio uri: %s", uri)
		}
		bucket, object = parts[0], parts[1]
	}
	obj, err := f.client.GetObject(ctx, bucket, object, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to get object %s/%s: %w", bucket, object, err)
	}
	return obj, nil
}

// MemFetcher serves byte blobs registered under URIs. Used by tests and the
// offline simulator.
type MemFetcher struct {
	mu    sync.Mutex
	blobs map[string][]byte
}

// NewMemFetcher creates an empty MemFetcher.
func NewMemFetcher() *MemFetcher {
	return &MemFetcher{blobs: make(map[string][]byte)}
}

// Put registers a blob under uri.
func (f *MemFetcher) Put(uri string, data []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.blobs[uri] = data
}

func (f *MemFetcher) Fetch(ctx context.Context, uri string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	data, ok := f.blobs[uri]
	f.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("no blob for uri %s: %w", uri, ErrNotFound)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}
