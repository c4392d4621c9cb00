// Package speechstore archives synthesized speech clips in S3-compatible storage.
package speechstore

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/yanqian/breatheeasy/internal/domain/speech"
)

// R2Archive stores clips in Cloudflare R2 (or any S3 endpoint) via minio.
type R2Archive struct {
	client *minio.Client
	bucket string
	logger *slog.Logger

	bucketOnce sync.Once
	bucketErr  error
}

// NewR2Archive constructs the archive adapter.
func NewR2Archive(endpoint, accessKey, secretKey, bucket, region string, logger *slog.Logger) (*R2Archive, error) {
	if logger == nil {
		logger = slog.Default()
	}
	cleanEndpoint := sanitizeEndpoint(endpoint)
	useSSL := !strings.HasPrefix(strings.ToLower(strings.TrimSpace(endpoint)), "http://")
	client, err := minio.New(cleanEndpoint, &minio.Options{
		Creds:        credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure:       useSSL,
		Region:       region,
		BucketLookup: minio.BucketLookupPath,
	})
	if err != nil {
		return nil, fmt.Errorf("init r2 client: %w", err)
	}
	return &R2Archive{client: client, bucket: bucket, logger: logger.With("component", "speechstore.r2")}, nil
}

func (s *R2Archive) ensureBucket(ctx context.Context) error {
	s.bucketOnce.Do(func() {
		exists, err := s.client.BucketExists(ctx, s.bucket)
		if err == nil && exists {
			return
		}
		err = s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{})
		if err != nil && minio.ToErrorResponse(err).Code != "BucketAlreadyOwnedByYou" {
			s.bucketErr = err
			return
		}
		s.logger.Info("speech bucket created", "bucket", s.bucket)
	})
	return s.bucketErr
}

// Put implements speech.Archive.
func (s *R2Archive) Put(ctx context.Context, key string, data []byte, contentType string) error {
	if err := s.ensureBucket(ctx); err != nil {
		return err
	}
	_, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType:      contentType,
		DisableMultipart: len(data) < 5*1024*1024, // small uploads as single part
	})
	return err
}

var _ speech.Archive = (*R2Archive)(nil)

// sanitizeEndpoint removes schemes and paths to satisfy minio.New expectations.
func sanitizeEndpoint(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return raw
	}
	raw = strings.TrimPrefix(strings.TrimPrefix(raw, "https://"), "http://")
	if host, _, found := strings.Cut(raw, "/"); found {
		raw = host
	}
	return raw
}
