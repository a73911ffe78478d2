package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinioOptions configures a MinioStore.
type MinioOptions struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	// BaseURL is the public base for object URLs. When empty, URLs are built
	// from the endpoint and bucket.
	BaseURL string
}

// MinioStore persists assets in an S3-compatible object store.
type MinioStore struct {
	client  *minio.Client
	bucket  string
	baseURL string
}

// NewMinioStore connects to the object storage endpoint and ensures the
// target bucket exists.
func NewMinioStore(ctx context.Context, opts MinioOptions) (*MinioStore, error) {
	if strings.TrimSpace(opts.Endpoint) == "" {
		return nil, errors.New("storage: minio endpoint is required")
	}
	cli, err := minio.New(opts.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(opts.AccessKey, opts.SecretKey, ""),
		Secure: opts.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("storage: minio client: %w", err)
	}

	exists, err := cli.BucketExists(ctx, opts.Bucket)
	if err != nil {
		return nil, fmt.Errorf("storage: check bucket: %w", err)
	}
	if !exists {
		if err := cli.MakeBucket(ctx, opts.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("storage: make bucket: %w", err)
		}
	}

	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		scheme := "http"
		if opts.UseSSL {
			scheme = "https"
		}
		baseURL = fmt.Sprintf("%s://%s/%s", scheme, opts.Endpoint, opts.Bucket)
	}

	return &MinioStore{client: cli, bucket: opts.Bucket, baseURL: baseURL}, nil
}

// Put writes the object under key and returns its public URL.
func (m *MinioStore) Put(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	cleanKey, err := sanitizeKey(key)
	if err != nil {
		return "", err
	}
	_, err = m.client.PutObject(ctx, m.bucket, cleanKey, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return "", fmt.Errorf("storage: put object: %w", err)
	}
	return m.URL(cleanKey), nil
}

// PutFile uploads a local file into the bucket.
func (m *MinioStore) PutFile(ctx context.Context, key, path, contentType string) (string, error) {
	cleanKey, err := sanitizeKey(key)
	if err != nil {
		return "", err
	}
	_, err = m.client.FPutObject(ctx, m.bucket, cleanKey, path,
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return "", fmt.Errorf("storage: put file: %w", err)
	}
	return m.URL(cleanKey), nil
}

// URL resolves the public URL for a stored key.
func (m *MinioStore) URL(key string) string {
	return m.baseURL + "/" + strings.TrimLeft(key, "/")
}

var _ Store = (*MinioStore)(nil)
