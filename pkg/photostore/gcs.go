package photostore

import (
	"context"
	"fmt"
	"io"

	"cloud.google.com/go/storage"
)

// GCS stores photos in a Google Cloud Storage bucket
type GCS struct {
	client *storage.Client
	bucket string
}

// NewGCS uses the ambient Google credentials
func NewGCS(ctx context.Context, bucket string) (*GCS, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCS client: %w", err)
	}
	return &GCS{client: client, bucket: bucket}, nil
}

func (g *GCS) Save(ctx context.Context, name string, r io.Reader, _ int64, contentType string) (string, error) {
	w := g.client.Bucket(g.bucket).Object(name).NewWriter(ctx)
	w.ContentType = contentType
	if _, err := io.Copy(w, r); err != nil {
		w.Close()
		return "", fmt.Errorf("failed to upload %s: %w", name, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("failed to finalize %s: %w", name, err)
	}
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", g.bucket, name), nil
}

func (g *GCS) Delete(ctx context.Context, name string) error {
	err := g.client.Bucket(g.bucket).Object(name).Delete(ctx)
	if err == storage.ErrObjectNotExist {
		return nil
	}
	return err
}

func (g *GCS) Close() error {
	return g.client.Close()
}
