package storage

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

const (
	defaultPresignTTL = 15 * time.Minute
	defaultRegion     = "us-east-1"
)

var (
	ErrEmptyObjectKey      = errors.New("empty object key")
	ErrInvalidObjectKey    = errors.New("invalid object key")
	ErrURLGenerationFailed = errors.New("failed to generate presigned URL")
	ErrBucketUnavailable   = errors.New("storage bucket unavailable")
)

// Presigner issues time-limited read URLs for stored objects.
type Presigner interface {
	PresignGet(ctx context.Context, objectKey string) (string, error)
}

type MinIOConfig struct {
	Endpoint   string
	AccessKey  string
	SecretKey  string
	Bucket     string
	Region     string
	UseSSL     bool
	PresignTTL time.Duration
}

// MinIOStore reads product images from an S3-compatible bucket. The region
// is fixed up front, so presigning never touches the network; bucket
// availability is left to Ping.
type MinIOStore struct {
	client     *minio.Client
	bucketName string
	ttl        time.Duration
}

func NewMinIOStore(cfg MinIOConfig) (*MinIOStore, error) {
	region := strings.TrimSpace(cfg.Region)
	if region == "" {
		region = defaultRegion
	}
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: region,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}
	ttl := cfg.PresignTTL
	if ttl <= 0 {
		ttl = defaultPresignTTL
	}
	return &MinIOStore{client: client, bucketName: cfg.Bucket, ttl: ttl}, nil
}

// Ping checks that the bucket exists.
func (s *MinIOStore) Ping(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucketName)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBucketUnavailable, err)
	}
	if !exists {
		return fmt.Errorf("%w: bucket %q does not exist", ErrBucketUnavailable, s.bucketName)
	}
	return nil
}

func (s *MinIOStore) PresignGet(ctx context.Context, objectKey string) (string, error) {
	key, err := CleanObjectKey(objectKey)
	if err != nil {
		return "", err
	}
	u, err := s.client.PresignedGetObject(ctx, s.bucketName, key, s.ttl, url.Values{})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrURLGenerationFailed, err)
	}
	return u.String(), nil
}

// CleanObjectKey normalizes a stored image reference into a bucket key.
func CleanObjectKey(objectKey string) (string, error) {
	key := strings.TrimSpace(objectKey)
	if key == "" {
		return "", ErrEmptyObjectKey
	}
	if strings.Contains(key, "..") {
		return "", ErrInvalidObjectKey
	}
	key = strings.TrimPrefix(path.Clean("/"+key), "/")
	if key == "" {
		return "", ErrInvalidObjectKey
	}
	return key, nil
}
