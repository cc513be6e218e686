package s3

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/admin/tg-bots/organic-shop/internal/domain"
	"github.com/admin/tg-bots/organic-shop/internal/ports/storage"
	"github.com/minio/minio-go/v7"
)

// Client картинки товаров в бакете MinIO/S3
type Client struct {
	client *minio.Client
	bucket string
	log    *slog.Logger
}

func NewClient(client *minio.Client, bucket string, log *slog.Logger) storage.IMediaStorage {
	return &Client{
		client: client,
		bucket: bucket,
		log:    log,
	}
}

func (c *Client) Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error {
	info, err := c.client.PutObject(ctx, c.bucket, key, body, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("failed to put object %s: %w", key, err)
	}
	c.log.Debug("media object stored", "key", key, "size", info.Size)
	return nil
}

// Open StatObject до GetObject, чтобы отсутствие объекта было видно сразу
func (c *Client) Open(ctx context.Context, key string) (*storage.Object, error) {
	stat, err := c.client.StatObject(ctx, c.bucket, key, minio.StatObjectOptions{})
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, fmt.Errorf("media %s: %w", key, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to stat object %s: %w", key, err)
	}

	object, err := c.client.GetObject(ctx, c.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to get object %s: %w", key, err)
	}

	return &storage.Object{
		Body:        object,
		Size:        stat.Size,
		ContentType: stat.ContentType,
	}, nil
}

func (c *Client) Remove(ctx context.Context, key string) error {
	if err := c.client.RemoveObject(ctx, c.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to remove object %s: %w", key, err)
	}
	return nil
}
