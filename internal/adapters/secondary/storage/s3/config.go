package s3

import (
	"context"
	"fmt"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

type Config struct {
	Host         string `envconfig:"HOST"` // localhost:9000; пусто - хранилище медиа выключено
	AccessKey    string `envconfig:"ACCESS_KEY"`
	SecretKey    string `envconfig:"SECRET_KEY"`
	Bucket       string `envconfig:"BUCKET" default:"products"`
	UseSSL       bool   `envconfig:"USE_SSL" default:"false"`
	CreateBucket bool   `envconfig:"CREATE_BUCKET" default:"true"`
}

func (c *Config) Enabled() bool {
	return c != nil && c.Host != ""
}

// NewClient клиент MinIO; бакет создаётся, если его нет и CreateBucket включён
func (c *Config) NewClient(ctx context.Context) (*minio.Client, error) {
	client, err := minio.New(c.Host, &minio.Options{
		Creds:  credentials.NewStaticV4(c.AccessKey, c.SecretKey, ""),
		Secure: c.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	exists, err := client.BucketExists(ctx, c.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket existence: %w", err)
	}
	if exists {
		return client, nil
	}
	if !c.CreateBucket {
		return nil, fmt.Errorf("bucket %s does not exist", c.Bucket)
	}
	if err := client.MakeBucket(ctx, c.Bucket, minio.MakeBucketOptions{}); err != nil {
		return nil, fmt.Errorf("failed to create bucket %s: %w", c.Bucket, err)
	}

	return client, nil
}
