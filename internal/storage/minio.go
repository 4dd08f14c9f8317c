package storage

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinioStore implements ObjectStore for MinIO/S3 compatible storage. The
// bucket is expected to allow anonymous reads.
type MinioStore struct {
	client  *minio.Client
	bucket  string
	baseURL string
}

// NewMinioStore connects to MinIO and ensures the bucket exists.
func NewMinioStore(ctx context.Context, endpoint, accessKey, secretKey, bucket string, useSSL bool, publicBaseURL string) (*MinioStore, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("init minio client: %w", err)
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket: %w", err)
		}
	}
	if publicBaseURL == "" {
		scheme := "http"
		if useSSL {
			scheme = "https"
		}
		publicBaseURL = scheme + "://" + endpoint
	}
	return &MinioStore{client: client, bucket: bucket, baseURL: strings.TrimRight(publicBaseURL, "/")}, nil
}

func (m *MinioStore) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error) {
	_, err := m.client.PutObject(ctx, m.bucket, key, r, size, minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return "", fmt.Errorf("put object: %w", err)
	}
	return m.baseURL + "/" + m.bucket + "/" + key, nil
}

func (m *MinioStore) Delete(ctx context.Context, key string) error {
	if err := m.client.RemoveObject(ctx, m.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("delete object: %w", err)
	}
	return nil
}

func (m *MinioStore) Close() error { return nil }
