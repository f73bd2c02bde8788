package storage

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/mrrifat/anydownloader/internal/config"
	"github.com/mrrifat/anydownloader/internal/observability/types"
)

// S3Store implements ObjectStore against any S3-compatible endpoint
// (Backblaze B2 in the original deployment). The client is constructed once
// and is safe for concurrent reuse.
type S3Store struct {
	client    *s3.Client
	presigner *s3.PresignClient
	bucket    string
	logger    types.Logger
	metrics   types.Metrics
}

// NewS3Store creates a new S3-compatible storage client from the resolved
// configuration. Credentials are static (key id + application key); the
// custom endpoint forces path-style addressing, which B2 and most
// S3-compatible stores require.
func NewS3Store(cfg config.StorageConfig, logger types.Logger, metrics types.Metrics) (*S3Store, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.KeyID, cfg.ApplicationKey, ""),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to build AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	logger.Info(context.Background(), "S3 client initialized", types.Fields{
		"bucket":   cfg.Bucket,
		"endpoint": cfg.Endpoint,
	})

	return &S3Store{
		client:    client,
		presigner: s3.NewPresignClient(client),
		bucket:    cfg.Bucket,
		logger:    logger,
		metrics:   metrics,
	}, nil
}

// Put stores an object in the configured bucket.
func (s *S3Store) Put(ctx context.Context, key string, body io.Reader, contentType string, size int64) error {
	start := time.Now()

	input := &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   body,
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}
	if size > 0 {
		input.ContentLength = aws.Int64(size)
	}

	if _, err := s.client.PutObject(ctx, input); err != nil {
		s.metrics.RecordError("s3_put", "s3_error")
		s.logger.Error(ctx, "Failed to put object", err, types.Fields{
			"bucket": s.bucket,
			"key":    key,
		})
		return fmt.Errorf("failed to put object %q: %w", key, err)
	}

	duration := time.Since(start)
	s.logger.Info(ctx, "Object stored", types.Fields{
		"bucket":      s.bucket,
		"key":         key,
		"size_bytes":  size,
		"duration_ms": duration.Milliseconds(),
	})
	s.metrics.RecordSuccess("s3_put")
	s.metrics.RecordDuration("s3_put", duration.Seconds())

	return nil
}

// PresignGet returns a signed GET URL valid for the given expiry.
func (s *S3Store) PresignGet(ctx context.Context, key string, expires time.Duration) (string, error) {
	req, err := s.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(expires))
	if err != nil {
		s.metrics.RecordError("s3_presign", "s3_error")
		s.logger.Error(ctx, "Failed to presign object", err, types.Fields{
			"bucket": s.bucket,
			"key":    key,
		})
		return "", fmt.Errorf("failed to presign object %q: %w", key, err)
	}

	s.metrics.RecordSuccess("s3_presign")
	return req.URL, nil
}
