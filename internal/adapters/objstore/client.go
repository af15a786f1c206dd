// Package objstore fetches published recommendation artifacts from an
// S3-compatible object store.
package objstore

import (
	"context"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// DefaultEndpoint is the object store the offline pipeline publishes to.
const DefaultEndpoint = "storage.yandexcloud.net"

// Fetcher retrieves one object by key.
type Fetcher interface {
	Fetch(ctx context.Context, key string) ([]byte, error)
}

// Client implements Fetcher against an S3-compatible endpoint.
type Client struct {
	mc       *minio.Client
	endpoint string
	bucket   string
	region   string
	secure   bool
}

// New creates a client for a bucket. Credentials are signed with AWS
// signature v4, matching what the publishing pipeline uses.
func New(bucket, accessKey, secretKey string, opts ...Option) (*Client, error) {
	c := &Client{
		endpoint: DefaultEndpoint,
		bucket:   bucket,
		secure:   true,
	}
	for _, opt := range opts {
		opt(c)
	}

	mc, err := minio.New(c.endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: c.secure,
		Region: c.region,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrClient, c.endpoint, err)
	}
	c.mc = mc
	return c, nil
}

// Fetch downloads the object at key and returns its full content.
func (c *Client) Fetch(ctx context.Context, key string) ([]byte, error) {
	obj, err := c.mc.GetObject(ctx, c.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("%w: s3://%s/%s: %w", ErrFetch, c.bucket, key, err)
	}
	defer func() { _ = obj.Close() }()

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, fmt.Errorf("%w: s3://%s/%s: %w", ErrFetch, c.bucket, key, err)
	}
	return data, nil
}

// Bucket returns the configured bucket name.
func (c *Client) Bucket() string {
	return c.bucket
}
