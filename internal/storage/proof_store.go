// Package storage keeps proof-of-delivery photos on S3-compatible object
// storage (Cloudflare R2 in production). Settlements store only the
// object key; the photos themselves never pass through the database.
package storage

import (
	"context"
	"fmt"
	"io"
	"time"

	"distro-backend/internal/config"
	"distro-backend/internal/timeutil"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type ProofStore struct {
	client *s3.Client
	bucket string
}

// NewProofStore connects to the configured bucket. Returns nil when
// storage is disabled; callers treat a nil store as "uploads rejected".
func NewProofStore(ctx context.Context, cfg *config.Config) (*ProofStore, error) {
	if !cfg.Storage.Enabled {
		return nil, nil
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Storage.Region),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.Storage.AccessKey, cfg.Storage.SecretKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load storage credentials: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.Storage.Endpoint)
	})

	return &ProofStore{client: client, bucket: cfg.Storage.Bucket}, nil
}

// Upload stores one proof photo and returns its object key.
func (s *ProofStore) Upload(ctx context.Context, deliveryID int, contentType string, body io.Reader) (string, error) {
	now := timeutil.Now()
	key := fmt.Sprintf("proofs/%s/delivery-%d-%d", now.Format("2006/01"), deliveryID, now.UnixMilli())

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload proof for delivery %d: %w", deliveryID, err)
	}
	return key, nil
}
