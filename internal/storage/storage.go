// Package storage archives generated files to an S3-compatible bucket.
package storage

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/stakeback/cashback-backend/internal/config"
)

// Archiver stores an object and returns its location.
type Archiver interface {
	Put(ctx context.Context, key, contentType string, body []byte) (string, error)
}

// New returns an S3 archiver when EXPORT_BUCKET is set and a no-op
// archiver otherwise.
func New(ctx context.Context, cfg *config.Config) (Archiver, error) {
	if cfg.ExportBucket == "" {
		return Nop{}, nil
	}

	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.S3Region),
	}
	if cfg.S3AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.S3AccessKeyID, cfg.S3SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load S3 config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3Endpoint)
			o.UsePathStyle = true
		}
	})
	return &S3Archiver{client: client, bucket: cfg.ExportBucket}, nil
}

type S3Archiver struct {
	client *s3.Client
	bucket string
}

func (a *S3Archiver) Put(ctx context.Context, key, contentType string, body []byte) (string, error) {
	_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to bucket: %w", err)
	}
	return fmt.Sprintf("s3://%s/%s", a.bucket, key), nil
}

// Nop discards objects.
type Nop struct{}

func (Nop) Put(_ context.Context, key, _ string, body []byte) (string, error) {
	slog.Debug("archive disabled, object discarded", "key", key, "bytes", len(body))
	return "", nil
}

// Memory keeps objects in memory.
type Memory struct {
	mu      sync.Mutex
	Objects map[string][]byte
}

func (m *Memory) Put(_ context.Context, key, _ string, body []byte) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Objects == nil {
		m.Objects = make(map[string][]byte)
	}
	m.Objects[key] = append([]byte(nil), body...)
	return "memory://" + key, nil
}

func (m *Memory) Get(key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.Objects[key]
	return b, ok
}
