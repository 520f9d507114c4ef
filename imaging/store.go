package imaging

import (
	"context"
	"fmt"
	"path"

	"github.com/google/uuid"
	"github.com/raushankrgupta/product-page-generator/models"
)

// ImageStore turns a finished image into the reference kept in ImageResult.EnhancedURL
type ImageStore interface {
	Save(ctx context.Context, img models.InlineImage) (string, error)
}

// DataURLStore keeps images inline as data: URLs
type DataURLStore struct{}

func (DataURLStore) Save(_ context.Context, img models.InlineImage) (string, error) {
	return img.DataURL(), nil
}

// ObjectUploader is the part of utils.S3Uploader the S3 store needs
type ObjectUploader interface {
	Upload(ctx context.Context, data []byte, objectKey, contentType string) (string, error)
	PresignedURL(ctx context.Context, objectKey string) (string, error)
}

// S3Store uploads images to a bucket and references them by presigned URL
type S3Store struct {
	uploader ObjectUploader
	prefix   string
}

func NewS3Store(uploader ObjectUploader, prefix string) *S3Store {
	return &S3Store{uploader: uploader, prefix: prefix}
}

var extensions = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

func (s *S3Store) Save(ctx context.Context, img models.InlineImage) (string, error) {
	ext := extensions[NormalizeMediaType(img.MIMEType)]
	if ext == "" {
		ext = ".bin"
	}
	objectKey := path.Join(s.prefix, uuid.NewString()+ext)

	key, err := s.uploader.Upload(ctx, img.Data, objectKey, img.MIMEType)
	if err != nil {
		return "", err
	}
	url, err := s.uploader.PresignedURL(ctx, key)
	if err != nil {
		return "", fmt.Errorf("failed to presign %s: %w", key, err)
	}
	return url, nil
}
