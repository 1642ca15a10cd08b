package photostore

import (
	"context"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinIO stores photos in an S3 compatible bucket
type MinIO struct {
	client  *minio.Client
	bucket  string
	baseURL string
}

// NewMinIO connects, checks the bucket and creates it when missing
func NewMinIO(endpoint, accessKey, secretKey, bucket string, secure bool) (*MinIO, error) {
	endpoint = strings.TrimPrefix(strings.TrimPrefix(endpoint, "http://"), "https://")
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: secure,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize MinIO client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MinIO server: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("error creating bucket %s: %w", bucket, err)
		}
		log.Printf("[PHOTO] created bucket %s", bucket)
	}

	scheme := "http"
	if secure {
		scheme = "https"
	}
	return &MinIO{client: client, bucket: bucket, baseURL: fmt.Sprintf("%s://%s/%s", scheme, endpoint, bucket)}, nil
}

func (m *MinIO) Save(ctx context.Context, name string, r io.Reader, size int64, contentType string) (string, error) {
	if size <= 0 {
		size = -1
	}
	_, err := m.client.PutObject(ctx, m.bucket, name, r, size, minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return "", fmt.Errorf("failed to upload %s to bucket %s: %w", name, m.bucket, err)
	}
	return m.baseURL + "/" + name, nil
}

func (m *MinIO) Delete(ctx context.Context, name string) error {
	return m.client.RemoveObject(ctx, m.bucket, name, minio.RemoveObjectOptions{})
}
