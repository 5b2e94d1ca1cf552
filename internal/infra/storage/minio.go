package storage

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/0Calories/kotoba-plus/internal/domain/lexicon"
)

// Store archives raw provider payloads in a MinIO/S3 bucket
type Store struct {
	client     *minio.Client
	bucketName string
	region     string
	now        func() time.Time
}

// New buat koneksi MinIO
func New(ctx context.Context, endpoint, region, bucket, accessKey, secretKey string, useSSL bool) (*Store, error) {
	cli, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
		Region: region,
	})
	if err != nil {
		return nil, err
	}

	// pastikan bucket ada
	exists, err := cli.BucketExists(ctx, bucket)
	if err != nil {
		return nil, err
	}
	if !exists {
		if err := cli.MakeBucket(ctx, bucket, minio.MakeBucketOptions{Region: region}); err != nil {
			return nil, err
		}
	}

	return &Store{client: cli, bucketName: bucket, region: region, now: time.Now}, nil
}

// Archive implements lexicon.PayloadArchive. key is the object name without extension.
func (s *Store) Archive(ctx context.Context, key string, payload lexicon.RawPayload) (string, error) {
	name, contentType := objectName(key, payload)
	body := []byte(payload)
	_, err := s.client.PutObject(ctx, s.bucketName, name, bytes.NewReader(body), int64(len(body)), minio.PutObjectOptions{
		ContentType: contentType,
		UserMetadata: map[string]string{
			"archived-at": s.now().UTC().Format(time.RFC3339),
		},
	})
	if err != nil {
		return "", fmt.Errorf("put %s: %w", name, err)
	}

	// private bucket: callers get the object path, not a presigned URL
	return fmt.Sprintf("%s://%s/%s/%s", s.scheme(), s.client.EndpointURL().Host, s.bucketName, name), nil
}

// Check implements middleware.HealthChecker
func (s *Store) Check(ctx context.Context) error {
	ok, err := s.client.BucketExists(ctx, s.bucketName)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("bucket %s missing", s.bucketName)
	}
	return nil
}

func (s *Store) scheme() string {
	if s.client.EndpointURL().Scheme != "" {
		return s.client.EndpointURL().Scheme
	}
	return "http"
}

// objectName picks the extension from what the payload looks like
func objectName(key string, payload lexicon.RawPayload) (string, string) {
	key = strings.Trim(key, "/")
	trimmed := strings.TrimSpace(string(payload))
	if strings.HasPrefix(trimmed, "{") && strings.HasSuffix(trimmed, "}") {
		return key + ".json", "application/json"
	}
	return key + ".txt", "text/plain; charset=utf-8"
}
