package archive

import (
	"bytes"
	"context"
	"fmt"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/sightline/sightline/internal/config"
	"github.com/sightline/sightline/pkg/logger"
)

// S3API is the subset of the S3 client snapshot storage uses.
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Store writes snapshots to an S3 bucket.
type S3Store struct {
	logger logger.Logger
	client S3API
	bucket string
	prefix string
}

// NewS3Store creates a bucket-backed snapshot store using the ambient
// AWS credential chain.
func NewS3Store(ctx context.Context, cfg config.S3Config, log logger.Logger) (*S3Store, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("archive bucket is required")
	}

	var opts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("loading aws config: %w", err)
	}

	return NewS3StoreWithClient(s3.NewFromConfig(awsCfg), cfg.Bucket, cfg.Prefix, log), nil
}

// NewS3StoreWithClient creates a store around an existing client.
func NewS3StoreWithClient(client S3API, bucket, prefix string, log logger.Logger) *S3Store {
	return &S3Store{
		logger: log,
		client: client,
		bucket: bucket,
		prefix: prefix,
	}
}

// Store uploads one snapshot as <prefix>/<key>.html.
func (s *S3Store) Store(ctx context.Context, key string, html []byte) error {
	if err := validateKey(key); err != nil {
		return err
	}

	objectKey := path.Join(s.prefix, key+".html")
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(objectKey),
		Body:        bytes.NewReader(html),
		ContentType: aws.String("text/html; charset=utf-8"),
	})
	if err != nil {
		return fmt.Errorf("uploading snapshot to s3://%s/%s: %w", s.bucket, objectKey, err)
	}

	s.logger.Debug("Snapshot uploaded", "bucket", s.bucket, "key", objectKey, "bytes", len(html))
	return nil
}
