// AngelaMos | 2026
// r2.go

// Package storage wraps the S3-compatible object store (Cloudflare R2) that
// holds bundle metadata and the downloadable files themselves.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/angelamos/scoreshop/internal/config"
	"github.com/angelamos/scoreshop/internal/core"
)

const opTimeout = 10 * time.Second

// ObjectStore is the capability the pipeline depends on: fetch a small
// object, and mint a time-boxed signed URL for one.
type ObjectStore interface {
	GetObject(ctx context.Context, key string) ([]byte, error)
	PresignGetObject(
		ctx context.Context,
		key string,
		expires time.Duration,
	) (string, error)
}

type R2Store struct {
	client  *s3.Client
	presign *s3.PresignClient
	bucket  string
}

func NewR2Store(
	ctx context.Context,
	cfg config.StorageConfig,
) (*R2Store, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion("auto"),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(
				cfg.AccessKey,
				cfg.SecretKey,
				"",
			),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("load storage config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.ResolvedEndpoint())
	})

	return &R2Store{
		client:  client,
		presign: s3.NewPresignClient(client),
		bucket:  cfg.Bucket,
	}, nil
}

func (s *R2Store) GetObject(ctx context.Context, key string) ([]byte, error) {
	opCtx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	out, err := s.client.GetObject(opCtx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var noSuchKey *types.NoSuchKey
		if errors.As(err, &noSuchKey) {
			return nil, fmt.Errorf("get object %q: %w", key, core.ErrNotFound)
		}
		return nil, fmt.Errorf("get object %q: %w", key, err)
	}
	defer out.Body.Close() //nolint:errcheck // read-only body

	body, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("read object %q: %w", key, err)
	}

	return body, nil
}

// PresignGetObject signs a GET for exactly one key. The URL is generated
// fresh on every call and never recorded.
func (s *R2Store) PresignGetObject(
	ctx context.Context,
	key string,
	expires time.Duration,
) (string, error) {
	opCtx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	req, err := s.presign.PresignGetObject(opCtx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, func(po *s3.PresignOptions) {
		po.Expires = expires
	})
	if err != nil {
		return "", fmt.Errorf("presign object %q: %w", key, err)
	}

	return req.URL, nil
}
