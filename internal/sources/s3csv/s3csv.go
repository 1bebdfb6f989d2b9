// Package s3csv reads the finance export from an S3 compatible bucket.
package s3csv

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"findash/internal/core"
	"findash/internal/sources"
)

var ErrInvalidURL = errors.New("invalid s3 url")

// ObjectGetter is the subset of the S3 client used here.
type ObjectGetter interface {
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// Options configures the S3 client.
type Options struct {
	Region    string
	Endpoint  string // custom endpoint such as MinIO; enables path-style addressing
	AccessKey string
	SecretKey string
}

// Source reads one object.
type Source struct {
	client ObjectGetter
	bucket string
	key    string
}

var _ sources.Reader = (*Source)(nil)

// IsS3URL reports whether path points at S3.
func IsS3URL(path string) bool {
	return strings.HasPrefix(path, "s3://")
}

// ParseURL splits s3://bucket/key.
func ParseURL(raw string) (bucket, key string, err error) {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme != "s3" || u.Host == "" {
		return "", "", fmt.Errorf("%w: %q", ErrInvalidURL, raw)
	}
	key = strings.TrimPrefix(u.Path, "/")
	if key == "" {
		return "", "", fmt.Errorf("%w: %q has no object key", ErrInvalidURL, raw)
	}
	return u.Host, key, nil
}

// New builds a Source for rawURL with a client from the default AWS config
// chain. Static credentials override the chain when both are set.
func New(ctx context.Context, rawURL string, opts Options) (*Source, error) {
	bucket, key, err := ParseURL(rawURL)
	if err != nil {
		return nil, err
	}

	loadOpts := []func(*config.LoadOptions) error{config.WithRegion(opts.Region)}
	if opts.AccessKey != "" && opts.SecretKey != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKey, opts.SecretKey, ""),
		))
	}
	cfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
			o.UsePathStyle = true
		}
	})
	return NewWithClient(client, bucket, key), nil
}

// NewWithClient builds a Source over an existing client.
func NewWithClient(client ObjectGetter, bucket, key string) *Source {
	return &Source{client: client, bucket: bucket, key: key}
}

func (s *Source) Name() string { return "s3" }

func (s *Source) Transactions(ctx context.Context) ([]core.Transaction, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key),
	})
	if err != nil {
		return nil, fmt.Errorf("get s3://%s/%s: %w", s.bucket, s.key, err)
	}
	defer out.Body.Close()

	txs, err := sources.ReadCSV(out.Body)
	if err != nil {
		return nil, fmt.Errorf("s3://%s/%s: %w", s.bucket, s.key, err)
	}
	return txs, nil
}
