// =============================================================================
// B2B-WC Converter - S3 Mirror
// =============================================================================
//
// Optionally mirrors downloaded assets to S3-compatible object storage, so
// the media library can be bulk-imported from a bucket instead of shipping
// the download directory around. Disabled unless configured.
//
// =============================================================================

package assets

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/kvanta42/b2b-wc-converter/internal/config"
)

// Uploader mirrors local files into an S3 bucket.
type Uploader struct {
	client *minio.Client
	bucket string
	prefix string
}

// NewUploader connects to the configured endpoint and verifies the bucket
// exists. Returns an error rather than creating buckets; provisioning is an
// ops concern, not this tool's.
func NewUploader(ctx context.Context, cfg config.S3Config) (*Uploader, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create s3 client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket %q: %w", cfg.Bucket, err)
	}
	if !exists {
		return nil, fmt.Errorf("bucket %q does not exist", cfg.Bucket)
	}

	return &Uploader{
		client: client,
		bucket: cfg.Bucket,
		prefix: strings.Trim(cfg.Prefix, "/"),
	}, nil
}

// Upload puts the local file into the bucket under <prefix>/<objectName>.
func (u *Uploader) Upload(ctx context.Context, localPath, objectName string) error {
	key := objectName
	if u.prefix != "" {
		key = u.prefix + "/" + objectName
	}

	_, err := u.client.FPutObject(ctx, u.bucket, key, localPath, minio.PutObjectOptions{
		ContentType: contentTypeFor(objectName),
	})
	if err != nil {
		return fmt.Errorf("failed to upload %q: %w", key, err)
	}
	return nil
}

func contentTypeFor(name string) string {
	switch strings.ToLower(path.Ext(name)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".webp":
		return "image/webp"
	case ".gif":
		return "image/gif"
	case ".pdf":
		return "application/pdf"
	default:
		return "application/octet-stream"
	}
}
