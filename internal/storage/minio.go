// Package storage — объектное хранилище для изображений (фото
// пользователей, обложки туров).
package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"natours/internal/logs"
)

// ImageStore кладёт изображение и возвращает публичный URL объекта.
type ImageStore interface {
	Upload(ctx context.Context, objectKey string, r io.Reader, size int64, contentType string) (string, error)
}

type Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// MinioStore реализует ImageStore поверх MinIO/S3.
type MinioStore struct {
	client *minio.Client
	bucket string
	useSSL bool
}

func NewMinio(cfg Config) (*MinioStore, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("minio client: %w", err)
	}

	ctx := context.Background()
	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("minio bucket check %q: %w", cfg.Bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("minio bucket create %q: %w", cfg.Bucket, err)
		}
		logs.Logger.Infof("storage: bucket %q created", cfg.Bucket)
	}

	return &MinioStore{client: client, bucket: cfg.Bucket, useSSL: cfg.UseSSL}, nil
}

func (s *MinioStore) Upload(ctx context.Context, objectKey string, r io.Reader, size int64, contentType string) (string, error) {
	_, err := s.client.PutObject(ctx, s.bucket, objectKey, r, size,
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return "", fmt.Errorf("minio put %q: %w", objectKey, err)
	}
	scheme := "http"
	if s.useSSL {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/%s/%s", scheme, s.client.EndpointURL().Host, s.bucket, objectKey), nil
}
