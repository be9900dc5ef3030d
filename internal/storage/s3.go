package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"
)

// S3Options configures an S3 compatible bucket
type S3Options struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// S3Storage implements Storage on any S3 compatible service
type S3Storage struct {
	client *minio.Client
	bucket string
	logger *zap.Logger
}

// NewS3Storage connects to the endpoint and creates the bucket when missing
func NewS3Storage(ctx context.Context, opts S3Options, logger *zap.Logger) (*S3Storage, error) {
	client, err := minio.New(opts.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(opts.AccessKey, opts.SecretKey, ""),
		Secure: opts.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create s3 client: %w", err)
	}

	exists, err := client.BucketExists(ctx, opts.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, opts.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create bucket: %w", err)
		}
	}

	logger.Info("S3 storage initialized",
		zap.String("endpoint", opts.Endpoint),
		zap.String("bucket", opts.Bucket),
	)

	return &S3Storage{client: client, bucket: opts.Bucket, logger: logger}, nil
}

// Upload streams data into a new object. The size is unknown, so the client
// uses multipart upload.
func (s *S3Storage) Upload(ctx context.Context, folder, filename, contentType string, data io.Reader) (string, int64, error) {
	key := objectKey(folder, filename)

	info, err := s.client.PutObject(ctx, s.bucket, key, data, -1, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", 0, fmt.Errorf("failed to upload object: %w", err)
	}

	s.logger.Info("file uploaded to S3",
		zap.String("key", key),
		zap.String("bucket", s.bucket),
		zap.String("contentType", contentType),
		zap.Int64("size", info.Size),
	)
	return key, info.Size, nil
}

// Download streams an object
func (s *S3Storage) Download(ctx context.Context, key string) (io.ReadCloser, error) {
	// GetObject is lazy; Stat surfaces a missing key before streaming starts
	if _, err := s.client.StatObject(ctx, s.bucket, key, minio.StatObjectOptions{}); err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, fmt.Errorf("%w: %s", ErrObjectNotFound, key)
		}
		return nil, fmt.Errorf("failed to stat object: %w", err)
	}

	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to download object: %w", err)
	}
	return obj, nil
}

// Delete removes an object. S3 treats missing keys as deleted.
func (s *S3Storage) Delete(ctx context.Context, key string) error {
	if err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to delete object: %w", err)
	}
	s.logger.Info("file deleted from S3", zap.String("key", key), zap.String("bucket", s.bucket))
	return nil
}
