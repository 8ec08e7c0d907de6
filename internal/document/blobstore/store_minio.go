package blobstore

import (
	"context"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/estdev3690/digital-e-gram-panchayat/internal/platform/config"
)

// MinioStore keeps document bytes in a MinIO/S3 bucket. The locator is the
// object key within the configured bucket.
type MinioStore struct {
	client *minio.Client
	bucket string
}

// NewMinio creates a MinIO-backed blob store from the storage configuration.
func NewMinio(cfg config.StorageConfig) (*MinioStore, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("init minio: %w", err)
	}
	return &MinioStore{client: client, bucket: cfg.Bucket}, nil
}

// EnsureBucket makes sure the document bucket exists before first use.
func (s *MinioStore) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("check bucket %s: %w", s.bucket, err)
	}
	if !exists {
		if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("make bucket %s: %w", s.bucket, err)
		}
	}
	return nil
}

func (s *MinioStore) Put(ctx context.Context, key string, content io.Reader, size int64, contentType string) (string, error) {
	opts := minio.PutObjectOptions{ContentType: contentType}
	if _, err := s.client.PutObject(ctx, s.bucket, key, content, size, opts); err != nil {
		return "", fmt.Errorf("store document %s: %w", key, err)
	}
	return key, nil
}

func (s *MinioStore) Delete(ctx context.Context, locator string) error {
	if err := s.client.RemoveObject(ctx, s.bucket, locator, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("delete document %s: %w", locator, err)
	}
	return nil
}
