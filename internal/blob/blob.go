// Package blob stores uploaded attachments (flyers, design briefs) in
// S3-compatible object storage. The store itself is external; this is only
// the consuming client.
package blob

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// s3Client is the slice of the S3 API the uploader needs, as an interface
// for testability.
type s3Client interface {
	PutObject(ctx context.Context, input *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Config holds S3-compatible storage configuration.
type Config struct {
	Endpoint  string
	Bucket    string
	Region    string
	AccessKey string
	SecretKey string
}

// Uploader writes attachments to the configured bucket.
type Uploader struct {
	cfg    Config
	client s3Client
}

func NewUploader(cfg Config) *Uploader {
	u := &Uploader{cfg: cfg}
	if cfg.Bucket != "" && cfg.AccessKey != "" && cfg.SecretKey != "" {
		u.client = newS3Client(cfg)
	}
	return u
}

func newS3Client(cfg Config) *s3.Client {
	opts := s3.Options{
		Region:       cfg.Region,
		Credentials:  credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		UsePathStyle: true,
	}
	if cfg.Endpoint != "" {
		opts.BaseEndpoint = aws.String(cfg.Endpoint)
	}
	return s3.New(opts)
}

// Configured returns true when an S3 client could be built from the config.
func (u *Uploader) Configured() bool {
	return u.client != nil
}

// Upload stores the attachment under a date-partitioned, collision-free key
// and returns its public URL.
func (u *Uploader) Upload(ctx context.Context, filename, contentType string, body io.Reader, size int64) (string, error) {
	if !u.Configured() {
		return "", fmt.Errorf("blob storage not configured")
	}

	key := fmt.Sprintf("attachments/%s/%s%s",
		time.Now().UTC().Format("2006/01"),
		uuid.NewString(),
		sanitizeExt(filename),
	)

	_, err := u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(u.cfg.Bucket),
		Key:           aws.String(key),
		Body:          body,
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(size),
	})
	if err != nil {
		return "", fmt.Errorf("put object: %w", err)
	}

	return u.objectURL(key), nil
}

func (u *Uploader) objectURL(key string) string {
	if u.cfg.Endpoint != "" {
		return fmt.Sprintf("%s/%s/%s", strings.TrimRight(u.cfg.Endpoint, "/"), u.cfg.Bucket, key)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", u.cfg.Bucket, u.cfg.Region, key)
}

func sanitizeExt(filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	switch ext {
	case ".pdf", ".png", ".jpg", ".jpeg", ".gif", ".svg", ".docx":
		return ext
	}
	return ""
}
