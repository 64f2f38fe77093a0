// Package storage keeps assignment files in S3-compatible object storage.
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/avocado/teamhub/internal/domain/course"
	infraconfig "github.com/avocado/teamhub/internal/infrastructure/config"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"go.uber.org/zap"
)

const (
	defaultEndpoint   = "http://localhost:9000"
	defaultRegion     = "us-east-1"
	defaultPresignTTL = 15 * time.Minute
)

var errEmptyKey = errors.New("object key is empty")

// S3FileStore is the course.FileStore backed by a bucket on AWS S3 or MinIO
type S3FileStore struct {
	client     *s3.Client
	presigner  *s3.PresignClient
	bucket     string
	presignTTL time.Duration
	log        *zap.Logger
}

var _ course.FileStore = (*S3FileStore)(nil)

// NewS3FileStore builds a client for cfg. It does not contact the server;
// call EnsureBucket for that.
func NewS3FileStore(cfg infraconfig.StorageConfig, log *zap.Logger) (*S3FileStore, error) {
	var missing []string
	for _, f := range [][2]string{{"bucket", cfg.Bucket}, {"access_key", cfg.AccessKey}, {"secret_key", cfg.SecretKey}} {
		if f[1] == "" {
			missing = append(missing, "storage."+f[0])
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("object storage needs %s", strings.Join(missing, ", "))
	}
	if log == nil {
		log = zap.NewNop()
	}

	region := cfg.Region
	if region == "" {
		region = defaultRegion
	}
	awsCfg, err := config.LoadDefaultConfig(context.Background(),
		config.WithRegion(region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpointURL(cfg.Endpoint, cfg.UseSSL))
		o.UsePathStyle = cfg.UsePathStyle
	})

	ttl := cfg.PresignExpiration
	if ttl <= 0 {
		ttl = defaultPresignTTL
	}
	return &S3FileStore{
		client:     client,
		presigner:  s3.NewPresignClient(client),
		bucket:     cfg.Bucket,
		presignTTL: ttl,
		log:        log.Named("storage"),
	}, nil
}

// endpointURL adds the scheme MinIO-style host:port endpoints leave out
func endpointURL(endpoint string, useSSL bool) string {
	switch {
	case endpoint == "":
		return defaultEndpoint
	case strings.HasPrefix(endpoint, "http://"), strings.HasPrefix(endpoint, "https://"):
		return endpoint
	case useSSL:
		return "https://" + endpoint
	default:
		return "http://" + endpoint
	}
}

func (s *S3FileStore) Bucket() string { return s.bucket }

// Ping checks that the bucket is reachable with the configured credentials
func (s *S3FileStore) Ping(ctx context.Context) error {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(s.bucket)})
	return err
}

// EnsureBucket creates the bucket on first start
func (s *S3FileStore) EnsureBucket(ctx context.Context) error {
	err := s.Ping(ctx)
	if err == nil {
		return nil
	}
	if !isNotFound(err) {
		return fmt.Errorf("head bucket %s: %w", s.bucket, err)
	}

	_, err = s.client.CreateBucket(ctx, &s3.CreateBucketInput{Bucket: aws.String(s.bucket)})
	var owned *types.BucketAlreadyOwnedByYou
	if err != nil && !errors.As(err, &owned) {
		return fmt.Errorf("create bucket %s: %w", s.bucket, err)
	}
	s.log.Info("Created assignment bucket", zap.String("bucket", s.bucket))
	return nil
}

// Upload stores body under key. A reader that cannot seek is read into
// memory first because request signing needs to rewind the body.
func (s *S3FileStore) Upload(ctx context.Context, key, contentType string, body io.Reader, size int64) error {
	if key == "" {
		return errEmptyKey
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	rs, ok := body.(io.ReadSeeker)
	if !ok {
		data, err := io.ReadAll(body)
		if err != nil {
			return fmt.Errorf("read upload: %w", err)
		}
		rs, size = bytes.NewReader(data), int64(len(data))
	}

	input := &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        rs,
		ContentType: aws.String(contentType),
	}
	if size > 0 {
		input.ContentLength = aws.Int64(size)
	}
	if _, err := s.client.PutObject(ctx, input); err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}

	s.log.Info("Stored assignment file", zap.String("key", key), zap.Int64("size", size))
	return nil
}

// Delete removes key. S3 reports success for keys that do not exist.
func (s *S3FileStore) Delete(ctx context.Context, key string) error {
	if key == "" {
		return errEmptyKey
	}
	if _, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

// Exists reports whether key is stored
func (s *S3FileStore) Exists(ctx context.Context, key string) (bool, error) {
	if key == "" {
		return false, errEmptyKey
	}
	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	switch {
	case err == nil:
		return true, nil
	case isNotFound(err):
		return false, nil
	default:
		return false, fmt.Errorf("head %s: %w", key, err)
	}
}

// PresignDownload returns a GET URL for key that expires after the
// configured TTL.
func (s *S3FileStore) PresignDownload(ctx context.Context, key string) (string, time.Time, error) {
	if key == "" {
		return "", time.Time{}, errEmptyKey
	}
	expiresAt := time.Now().Add(s.presignTTL)
	req, err := s.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(s.presignTTL))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("presign %s: %w", key, err)
	}
	return req.URL, expiresAt, nil
}

// isNotFound matches the typed errors and the bare 404 codes HEAD requests
// come back with, since a HEAD response has no body to carry a typed error.
func isNotFound(err error) bool {
	var (
		notFound *types.NotFound
		noBucket *types.NoSuchBucket
		noKey    *types.NoSuchKey
		apiErr   smithy.APIError
	)
	if errors.As(err, &notFound) || errors.As(err, &noBucket) || errors.As(err, &noKey) {
		return true
	}
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NotFound", "NoSuchBucket", "NoSuchKey":
			return true
		}
	}
	return false
}
