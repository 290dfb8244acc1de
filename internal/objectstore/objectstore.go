// Package objectstore uploads media files to an S3-compatible bucket,
// keyed by their content hash (spec section 4.4), adapted from the
// teacher's MinIO-backed storage layer.
package objectstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

var (
	ErrAccessDenied = errors.New("object store: access denied")
	ErrNetworkError = errors.New("object store: network error")
)

type Config struct {
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
	UseSSL          bool
}

// Store uploads media content addressed by hash and skips re-uploading
// content already present.
type Store struct {
	client *minio.Client
	bucket string
}

func New(ctx context.Context, cfg Config) (*Store, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create object store client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket existence: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket %q: %w", cfg.Bucket, err)
		}
	}

	return &Store{client: client, bucket: cfg.Bucket}, nil
}

// Put uploads content under its hash, skipping the upload entirely when an
// object with that key already exists — media content is immutable once
// hashed, so a repeat run across overlapping exports never re-uploads.
func (s *Store) Put(ctx context.Context, hash, mimeType string, content []byte) error {
	_, err := s.client.StatObject(ctx, s.bucket, hash, minio.StatObjectOptions{})
	if err == nil {
		return nil
	}

	reader := bytes.NewReader(content)
	_, err = s.client.PutObject(ctx, s.bucket, hash, reader, int64(len(content)), minio.PutObjectOptions{
		ContentType: mimeType,
	})
	if err != nil {
		return classifyError(err)
	}
	return nil
}

func classifyError(err error) error {
	resp := minio.ToErrorResponse(err)
	switch resp.Code {
	case "AccessDenied":
		return fmt.Errorf("%w: %s", ErrAccessDenied, resp.Message)
	case "":
		return fmt.Errorf("%w: %s", ErrNetworkError, err)
	default:
		return err
	}
}
