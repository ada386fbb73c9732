package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	pkglogger "github.com/pairusuo/blog-backend/pkg/logger"
)

// S3Storage stores objects in an S3-compatible bucket (AWS S3, Cloudflare R2, MinIO)
type S3Storage struct {
	client   *s3.Client
	bucket   string
	cdnURL   string // optional public base URL (e.g. https://r2-cdn.example.com)
	basePath string // prefix for all objects (e.g. "blog/")
}

var _ Storage = (*S3Storage)(nil)

// S3Config holds S3-compatible storage configuration
type S3Config struct {
	Endpoint        string `yaml:"endpoint"` // e.g. https://<account>.r2.cloudflarestorage.com
	AccountID       string `yaml:"account_id"`
	Region          string `yaml:"region"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
	Bucket          string `yaml:"bucket"`
	CDNURL          string `yaml:"public_base_url"`
	BasePath        string `yaml:"base_path"`
	ForcePathStyle  bool   `yaml:"force_path_style"` // true for MinIO/R2
}

// Configured reports whether credentials and a bucket are present
func (c S3Config) Configured() bool {
	return c.Bucket != "" && c.AccessKeyID != "" && c.SecretAccessKey != "" &&
		(c.Endpoint != "" || c.AccountID != "" || c.Region != "")
}

// R2 fills in the Cloudflare R2 endpoint and region conventions
func (c S3Config) R2() S3Config {
	if c.Endpoint == "" && c.AccountID != "" {
		c.Endpoint = fmt.Sprintf("https://%s.r2.cloudflarestorage.com", c.AccountID)
	}
	if c.Region == "" {
		c.Region = "auto"
	}
	c.ForcePathStyle = true
	return c
}

// NewS3Storage creates a new S3-compatible storage backend
func NewS3Storage(cfg S3Config) (*S3Storage, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("storage: s3 bucket is required")
	}
	if cfg.Region == "" {
		cfg.Region = "us-east-1"
	}

	opts := func(o *s3.Options) {
		o.Region = cfg.Region
		o.Credentials = credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.ForcePathStyle
	}

	client := s3.New(s3.Options{}, opts)

	pkglogger.GetLogger().Info().
		Str("bucket", cfg.Bucket).
		Str("endpoint", cfg.Endpoint).
		Str("base_path", cfg.BasePath).
		Msg("S3 storage client initialized")

	return &S3Storage{
		client:   client,
		bucket:   cfg.Bucket,
		cdnURL:   strings.TrimRight(cfg.CDNURL, "/"),
		basePath: normalizeBasePath(cfg.BasePath),
	}, nil
}

func normalizeBasePath(p string) string {
	p = strings.Trim(p, "/")
	if p == "" {
		return ""
	}
	return p + "/"
}

func (c *S3Storage) fullKey(key string) (string, error) {
	clean, err := CleanKey(key)
	if err != nil {
		return "", err
	}
	return c.basePath + clean, nil
}

// List returns every key under prefix, following continuation tokens
func (c *S3Storage) List(ctx context.Context, prefix string) ([]string, error) {
	paginator := s3.NewListObjectsV2Paginator(c.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(c.bucket),
		Prefix: aws.String(c.basePath + strings.TrimLeft(prefix, "/")),
	})

	keys := make([]string, 0)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("s3 list failed: %w", err)
		}
		for _, obj := range page.Contents {
			keys = append(keys, strings.TrimPrefix(aws.ToString(obj.Key), c.basePath))
		}
	}
	return keys, nil
}

// Read downloads an object, ok=false when it does not exist
func (c *S3Storage) Read(ctx context.Context, key string) ([]byte, bool, error) {
	fullKey, err := c.fullKey(key)
	if err != nil {
		return nil, false, err
	}

	out, err := c.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(fullKey),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("s3 get failed: %w", err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, false, fmt.Errorf("s3 read body failed: %w", err)
	}
	return data, true, nil
}

// Write uploads data with a content type derived from the key
func (c *S3Storage) Write(ctx context.Context, key string, data []byte) error {
	fullKey, err := c.fullKey(key)
	if err != nil {
		return err
	}

	input := &s3.PutObjectInput{
		Bucket:        aws.String(c.bucket),
		Key:           aws.String(fullKey),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String(ContentType(key)),
	}

	if _, err := c.client.PutObject(ctx, input); err != nil {
		return fmt.Errorf("s3 upload failed: %w", err)
	}
	return nil
}

// Exists issues a HEAD request for key
func (c *S3Storage) Exists(ctx context.Context, key string) (bool, error) {
	fullKey, err := c.fullKey(key)
	if err != nil {
		return false, err
	}

	_, err = c.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(fullKey),
	})
	if err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("s3 head failed: %w", err)
	}
	return true, nil
}

// Delete removes an object from storage
func (c *S3Storage) Delete(ctx context.Context, key string) error {
	fullKey, err := c.fullKey(key)
	if err != nil {
		return err
	}

	input := &s3.DeleteObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(fullKey),
	}

	if _, err := c.client.DeleteObject(ctx, input); err != nil {
		return fmt.Errorf("s3 delete failed: %w", err)
	}
	return nil
}

// PublicURL returns the CDN URL for key, or "" when no public base is configured
func (c *S3Storage) PublicURL(key string) string {
	if c.cdnURL == "" {
		return ""
	}
	fullKey := c.basePath + strings.TrimLeft(key, "/")
	segments := strings.Split(fullKey, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return c.cdnURL + "/" + strings.Join(segments, "/")
}

func isNotFound(err error) bool {
	var nsk *types.NoSuchKey
	if errors.As(err, &nsk) {
		return true
	}
	var nf *types.NotFound
	if errors.As(err, &nf) {
		return true
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NotFound", "404":
			return true
		}
	}
	return false
}
