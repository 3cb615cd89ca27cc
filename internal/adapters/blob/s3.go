package blob

import (
	"bytes"
	"context"
	"fmt"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// Uploader is the subset of manager.Uploader used by S3Store.
type Uploader interface {
	Upload(ctx context.Context, input *s3.PutObjectInput, opts ...func(*manager.Uploader)) (*manager.UploadOutput, error)
}

// S3Store uploads objects to s3://<bucket>/<prefix>/<name>.
type S3Store struct {
	bucket   string
	prefix   string
	uploader Uploader
}

// NewS3Store loads AWS configuration from the environment (AWS_REGION, AWS_PROFILE, ...).
func NewS3Store(ctx context.Context, bucket, prefix string) (*S3Store, error) {
	if bucket == "" {
		return nil, fmt.Errorf("bucket required")
	}
	cfg, err := awsConfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return NewS3StoreWithUploader(bucket, prefix, manager.NewUploader(s3.NewFromConfig(cfg))), nil
}

// NewS3StoreWithUploader builds an S3Store around an existing uploader.
func NewS3StoreWithUploader(bucket, prefix string, up Uploader) *S3Store {
	return &S3Store{bucket: bucket, prefix: prefix, uploader: up}
}

// Put implements Store. The returned location is the object URL reported by S3.
func (s *S3Store) Put(ctx context.Context, name string, data []byte, contentType string) (string, error) {
	if err := validName(name); err != nil {
		return "", err
	}
	key := path.Join(s.prefix, name)
	out, err := s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:               aws.String(s.bucket),
		Key:                  aws.String(key),
		Body:                 bytes.NewReader(data),
		ContentType:          aws.String(contentType),
		ServerSideEncryption: s3types.ServerSideEncryptionAes256,
	})
	if err != nil {
		return "", fmt.Errorf("s3 upload failed: %w", err)
	}
	if out != nil && out.Location != "" {
		return out.Location, nil
	}
	return fmt.Sprintf("s3://%s/%s", s.bucket, key), nil
}
