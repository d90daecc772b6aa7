package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/chrispoponi/contractflowai-web-sub001/config"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Object is a downloaded storage object.
type Object struct {
	Data        []byte
	ContentType string
}

// ObjectStorage is the slice of object storage the parser needs.
type ObjectStorage interface {
	Download(ctx context.Context, key string) (*Object, error)
	Upload(ctx context.Context, key string, data []byte, contentType string) error
}

type MinioService struct {
	client *minio.Client
	bucket string
	config *config.MinioConfig
}

var _ ObjectStorage = (*MinioService)(nil)

func NewMinioService(cfg *config.MinioConfig) (*MinioService, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	return &MinioService{
		client: client,
		bucket: cfg.Bucket,
		config: cfg,
	}, nil
}

// EnsureBucket creates the bucket if it doesn't exist
func (s *MinioService) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket: %w", err)
	}

	if !exists {
		err = s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{})
		if err != nil {
			return fmt.Errorf("failed to create bucket: %w", err)
		}
	}

	return nil
}

// Download fetches an object and its declared content type.
func (s *MinioService) Download(ctx context.Context, key string) (*Object, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to get object %s: %w", key, err)
	}
	defer obj.Close()

	// GetObject is lazy; Stat surfaces NoSuchKey before we read.
	info, err := obj.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat object %s: %w", key, err)
	}

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, fmt.Errorf("failed to read object %s: %w", key, err)
	}

	return &Object{
		Data:        data,
		ContentType: ResolveContentType(key, info.ContentType, data),
	}, nil
}

// Upload writes data to key, replacing any existing object.
func (s *MinioService) Upload(ctx context.Context, key string, data []byte, contentType string) error {
	_, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("failed to upload file: %w", err)
	}

	return nil
}

// GetPresignedURL generates a presigned URL for the object with expiration
func (s *MinioService) GetPresignedURL(ctx context.Context, objectName string) (string, error) {
	expiry := time.Duration(s.config.ExpireMinutes) * time.Minute
	url, err := s.client.PresignedGetObject(ctx, s.bucket, objectName, expiry, nil)
	if err != nil {
		return "", fmt.Errorf("failed to generate presigned URL: %w", err)
	}

	return url.String(), nil
}

// ResolveContentType trusts a declared type unless it is empty or the generic
// octet-stream, then falls back to sniffing and finally the file extension.
func ResolveContentType(key, declared string, data []byte) string {
	declared = strings.TrimSpace(declared)
	if declared != "" && declared != "application/octet-stream" && declared != "binary/octet-stream" {
		return declared
	}

	if len(data) > 0 {
		if sniffed := http.DetectContentType(data); sniffed != "application/octet-stream" && !strings.HasPrefix(sniffed, "text/plain") {
			return sniffed
		}
	}

	switch strings.ToLower(path.Ext(key)) {
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".docx":
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	default:
		return "application/pdf"
	}
}
