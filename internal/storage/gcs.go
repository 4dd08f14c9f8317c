package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
	"google.golang.org/api/option"
)

// GCSStore writes objects with a Firebase download token so the returned
// URL is readable without signing.
type GCSStore struct {
	client *storage.Client
	bucket string
}

func NewGCSStore(ctx context.Context, bucket, credentialsFile string) (*GCSStore, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("init gcs client: %w", err)
	}
	return &GCSStore{client: client, bucket: bucket}, nil
}

func (s *GCSStore) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error) {
	token := uuid.NewString()
	w := s.client.Bucket(s.bucket).Object(key).NewWriter(ctx)
	w.ContentType = contentType
	w.Metadata = map[string]string{
		"firebaseStorageDownloadTokens": token,
	}
	if _, err := io.Copy(w, r); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("write object: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("close object: %w", err)
	}
	return DownloadURL(s.bucket, key, token), nil
}

func (s *GCSStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Bucket(s.bucket).Object(key).Delete(ctx); err != nil {
		return fmt.Errorf("delete object: %w", err)
	}
	return nil
}

func (s *GCSStore) Close() error {
	return s.client.Close()
}

func DownloadURL(bucket, key, token string) string {
	return fmt.Sprintf("https://firebasestorage.googleapis.com/v0/b/%s/o/%s?alt=media&token=%s",
		bucket, url.PathEscape(key), token)
}
