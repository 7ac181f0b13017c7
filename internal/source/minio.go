package source

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

const filenameMetaKey = "Filename"

// MinioStore keeps source files in an S3-compatible bucket, one object per
// document id.
type MinioStore struct {
	client *minio.Client
	bucket string
}

type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

func NewMinioStore(ctx context.Context, cfg MinioConfig) (*MinioStore, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket %s: %w", cfg.Bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket %s: %w", cfg.Bucket, err)
		}
	}

	return &MinioStore{client: client, bucket: cfg.Bucket}, nil
}

func (s *MinioStore) Put(ctx context.Context, documentID string, file File) error {
	_, err := s.client.PutObject(ctx, s.bucket, documentID,
		bytes.NewReader(file.Data), int64(len(file.Data)),
		minio.PutObjectOptions{
			ContentType:  "application/pdf",
			UserMetadata: map[string]string{filenameMetaKey: file.Name},
		})
	if err != nil {
		return fmt.Errorf("put source %s: %w", documentID, err)
	}
	return nil
}

func (s *MinioStore) Get(ctx context.Context, documentID string) (File, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, documentID, minio.GetObjectOptions{})
	if err != nil {
		return File{}, fmt.Errorf("get source %s: %w", documentID, err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		resp := minio.ToErrorResponse(err)
		if resp.Code == "NoSuchKey" {
			return File{}, ErrNotFound
		}
		return File{}, fmt.Errorf("read source %s: %w", documentID, err)
	}

	stat, err := obj.Stat()
	if err != nil {
		return File{}, fmt.Errorf("stat source %s: %w", documentID, err)
	}

	return File{Name: stat.UserMetadata[filenameMetaKey], Data: data}, nil
}

func (s *MinioStore) Delete(ctx context.Context, documentID string) error {
	if err := s.client.RemoveObject(ctx, s.bucket, documentID, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("delete source %s: %w", documentID, err)
	}
	return nil
}
