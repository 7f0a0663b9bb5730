// Package storage uploads wine photos to object storage.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

var ErrStorageDisabled = errors.New("object storage is not configured")

// ImageStore accepts a blob and a path and returns a public URL.
type ImageStore interface {
	Upload(ctx context.Context, path, contentType string, r io.Reader) (string, error)
}

func WinePhotoPath(wineID string) string {
	return fmt.Sprintf("wines/%s/photo.jpg", wineID)
}

type GCSImageStore struct {
	client        *storage.Client
	bucket        string
	publicBaseURL string
}

// NewGCSImageStore uses credentialsFile when set and application default
// credentials otherwise.
func NewGCSImageStore(ctx context.Context, bucket, credentialsFile, publicBaseURL string) (*GCSImageStore, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCS storage client: %w", err)
	}

	return &GCSImageStore{
		client:        client,
		bucket:        bucket,
		publicBaseURL: strings.TrimSuffix(publicBaseURL, "/"),
	}, nil
}

func (s *GCSImageStore) Upload(ctx context.Context, path, contentType string, r io.Reader) (string, error) {
	writer := s.client.Bucket(s.bucket).Object(path).NewWriter(ctx)
	writer.ContentType = contentType
	writer.CacheControl = "public, max-age=86400"

	if _, err := io.Copy(writer, r); err != nil {
		_ = writer.Close()
		return "", fmt.Errorf("failed to upload %s: %w", path, err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("failed to close GCS writer for %s: %w", path, err)
	}

	return fmt.Sprintf("%s/%s/%s", s.publicBaseURL, s.bucket, path), nil
}

func (s *GCSImageStore) Close() error {
	return s.client.Close()
}

// NoopImageStore is used when no bucket is configured. Uploads fail so
// callers take their best-effort path.
type NoopImageStore struct{}

func (NoopImageStore) Upload(context.Context, string, string, io.Reader) (string, error) {
	return "", ErrStorageDisabled
}
