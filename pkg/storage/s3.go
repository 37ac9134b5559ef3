// Package storage provides the S3 client used when the organizer routes
// meeting recordings into a bucket instead of Drive.
package storage

import (
	"context"
	"fmt"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"
)

// VideoExtensions are the object suffixes treated as recordings.
var VideoExtensions = map[string]bool{
	".mp4":  true,
	".m4a":  true,
	".mkv":  true,
	".webm": true,
}

// S3Config holds S3 client configuration.
type S3Config struct {
	Region               string
	AccessKeyID          string
	SecretAccessKey      string
	RecordingsBucket     string
	PresignExpireMinutes int
	Timeout              time.Duration // per-call bound; 0 means 15s
}

// Object is one recording object in the bucket.
type Object struct {
	Key          string
	Size         int64
	LastModified time.Time
}

// S3 lists recording objects and issues pre-signed download URLs.
type S3 struct {
	client *s3.Client
	cfg    S3Config
	logger *zap.Logger
}

// NewS3 creates an S3 client. Static credentials from config win; otherwise
// the default credential chain applies.
func NewS3(ctx context.Context, cfg S3Config, logger *zap.Logger) (*S3, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithHTTPClient(&http.Client{Timeout: timeout}),
	}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID, cfg.SecretAccessKey, "",
		)))
	} else {
		logger.Warn("S3 client using default credential chain")
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	logger.Info("S3 recording store configured",
		zap.String("region", cfg.Region), zap.String("bucket", cfg.RecordingsBucket))
	return &S3{client: s3.NewFromConfig(awsCfg), cfg: cfg, logger: logger}, nil
}

// ListRecordings returns video objects modified after since, up to limit,
// paging through the bucket as needed.
func (s *S3) ListRecordings(ctx context.Context, since time.Time, limit int) ([]Object, error) {
	var objects []Object
	var continuation *string
	for {
		out, err := s.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
			Bucket:            aws.String(s.cfg.RecordingsBucket),
			ContinuationToken: continuation,
		})
		if err != nil {
			return nil, fmt.Errorf("list objects: %w", err)
		}
		for _, obj := range out.Contents {
			if obj.Key == nil || obj.LastModified == nil || obj.LastModified.Before(since) {
				continue
			}
			if !VideoExtensions[strings.ToLower(path.Ext(*obj.Key))] {
				continue
			}
			objects = append(objects, Object{
				Key:          *obj.Key,
				Size:         aws.ToInt64(obj.Size),
				LastModified: *obj.LastModified,
			})
			if len(objects) >= limit {
				return objects, nil
			}
		}
		if !aws.ToBool(out.IsTruncated) {
			return objects, nil
		}
		continuation = out.NextContinuationToken
	}
}

// GeneratePresignedDownloadURL returns a pre-signed GET URL for an object.
func (s *S3) GeneratePresignedDownloadURL(ctx context.Context, key string) (string, error) {
	presignClient := s3.NewPresignClient(s.client)
	req, err := presignClient.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.cfg.RecordingsBucket),
		Key:    aws.String(key),
	}, func(opts *s3.PresignOptions) {
		opts.Expires = s.PresignExpire()
	})
	if err != nil {
		return "", fmt.Errorf("presign get: %w", err)
	}
	return req.URL, nil
}

// PresignExpire returns the configured presign duration.
func (s *S3) PresignExpire() time.Duration {
	if s.cfg.PresignExpireMinutes <= 0 {
		return time.Hour
	}
	return time.Duration(s.cfg.PresignExpireMinutes) * time.Minute
}
