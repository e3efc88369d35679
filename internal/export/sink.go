// AngelaMos | 2026
// sink.go

package export

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/carterperez-dev/roadassist-api/internal/account"
	"github.com/carterperez-dev/roadassist-api/internal/config"
)

// Sink archives export snapshots to object storage.
type Sink struct {
	client *minio.Client
	bucket string
	region string
}

func NewSink(cfg config.ObjectStoreConfig) (*Sink, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("object store client: %w", err)
	}

	return &Sink{
		client: client,
		bucket: cfg.ExportBucket,
		region: cfg.Region,
	}, nil
}

// EnsureBucket creates the export bucket on first run.
func (s *Sink) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("check export bucket: %w", err)
	}
	if exists {
		return nil
	}

	err = s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{
		Region: s.region,
	})
	if err != nil {
		return fmt.Errorf("create export bucket: %w", err)
	}
	return nil
}

// Ping verifies the bucket is reachable; the health endpoint calls this.
func (s *Sink) Ping(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("object store unreachable: %w", err)
	}
	if !exists {
		return fmt.Errorf("export bucket %s missing", s.bucket)
	}
	return nil
}

// Archive encodes the snapshot and uploads it, returning the object key.
// Keys are date-partitioned so the bucket browses chronologically.
func (s *Sink) Archive(
	ctx context.Context,
	category string,
	format Format,
	accounts []account.Account,
) (string, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, format, accounts); err != nil {
		return "", err
	}

	now := time.Now().UTC()
	key := fmt.Sprintf("%s/%s/%s.%s",
		now.Format("2006/01/02"),
		category,
		now.Format("150405"),
		format.Extension(),
	)

	_, err := s.client.PutObject(
		ctx,
		s.bucket,
		key,
		&buf,
		int64(buf.Len()),
		minio.PutObjectOptions{ContentType: format.ContentType()},
	)
	if err != nil {
		return "", fmt.Errorf("upload export archive: %w", err)
	}

	return key, nil
}
