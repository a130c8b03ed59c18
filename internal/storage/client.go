package storage

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awscreds "github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/ashik5757/Minio-Private-Bucket/internal/config"
	"github.com/ashik5757/Minio-Private-Bucket/internal/httpx"
	"github.com/ashik5757/Minio-Private-Bucket/internal/logging"
)

// Client wraps the AWS S3 client for a single bucket. Path-style
// addressing is used whenever a custom endpoint is configured, which is
// what MinIO expects.
//
// Thread-safe: all operations are safe for concurrent use.
type Client struct {
	client *s3.Client
	bucket string
	retry  httpx.Config
	log    *logging.Logger
}

// NewClient creates a store client from service configuration.
//
// The client:
//   - Authenticates with the configured static credentials
//   - Shares one pooled HTTP client across all operations
//   - Wraps every call in the classification-driven retry executor
func NewClient(ctx context.Context, cfg *config.Config, logger *logging.Logger) (*Client, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("bucket name is required")
	}

	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithHTTPClient(httpx.NewTransferClient()),
	}
	if cfg.AccessKey != "" || cfg.SecretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			awscreds.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
		// The SDK's own retryer is left at defaults; transient errors
		// that escape it are handled by the retry executor so listing
		// and fetch share one policy.
	})

	return &Client{
		client: client,
		bucket: cfg.Bucket,
		retry: httpx.Config{
			MaxRetries:   cfg.MaxRetries,
			InitialDelay: cfg.RetryInitialDelay,
			MaxDelay:     cfg.RetryMaxDelay,
			OnRetry: func(attempt int, err error, errType httpx.ErrorType) {
				logger.Warn().
					Int("attempt", attempt).
					Str("class", httpx.ErrorTypeName(errType)).
					Err(err).
					Msg("retrying object store operation")
			},
		},
		log: logger,
	}, nil
}

// Bucket returns the bucket this client is bound to.
func (c *Client) Bucket() string {
	return c.bucket
}

// listPage fetches one page of the listing, retrying transient errors.
func (c *Client) listPage(ctx context.Context, prefix string, token *string) (*s3.ListObjectsV2Output, error) {
	var out *s3.ListObjectsV2Output
	err := httpx.ExecuteWithRetry(ctx, c.retry, func() error {
		resp, err := c.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
			Bucket:            aws.String(c.bucket),
			Prefix:            aws.String(prefix),
			ContinuationToken: token,
		})
		out = resp
		return err
	})
	return out, err
}

// ListFolder implements Lister. It follows continuation tokens until the
// listing is exhausted, skips zero-byte directory markers and strips the
// prefix from each key.
func (c *Client) ListFolder(ctx context.Context, prefix string) (*Listing, error) {
	prefix = NormalizePrefix(prefix)
	start := time.Now()

	listing := &Listing{Prefix: prefix}
	var token *string
	pages := 0

	for {
		pages++
		out, err := c.listPage(ctx, prefix, token)
		if err != nil {
			return nil, &EnumerationError{Prefix: prefix, Err: err}
		}

		for _, obj := range out.Contents {
			key := aws.ToString(obj.Key)
			size := aws.ToInt64(obj.Size)

			// Skip the folder marker itself and nested markers:
			// zero-byte keys ending with the delimiter.
			if key == prefix || (size == 0 && strings.HasSuffix(key, "/")) {
				continue
			}

			name := strings.TrimPrefix(key, prefix)
			if name == "" {
				continue
			}

			listing.Objects = append(listing.Objects, Object{
				Key:  key,
				Name: name,
				Size: size,
			})
			listing.TotalBytes += size
		}

		if !aws.ToBool(out.IsTruncated) {
			break
		}
		token = out.NextContinuationToken
	}

	c.log.Debug().
		Str("prefix", prefix).
		Int("pages", pages).
		Int("objects", listing.Count()).
		Int64("bytes", listing.TotalBytes).
		Dur("took", time.Since(start)).
		Msg("folder enumerated")

	return listing, nil
}

// FetchObject implements Fetcher. The open itself is retried; the caller
// streams the body and must close it.
func (c *Client) FetchObject(ctx context.Context, key string) (io.ReadCloser, int64, error) {
	var resp *s3.GetObjectOutput
	err := httpx.ExecuteWithRetry(ctx, c.retry, func() error {
		r, err := c.client.GetObject(ctx, &s3.GetObjectInput{
			Bucket: aws.String(c.bucket),
			Key:    aws.String(key),
		})
		resp = r
		return err
	})
	if err != nil {
		return nil, 0, err
	}
	return resp.Body, aws.ToInt64(resp.ContentLength), nil
}

// HeadObject returns an object's size without opening its body.
func (c *Client) HeadObject(ctx context.Context, key string) (int64, error) {
	var resp *s3.HeadObjectOutput
	err := httpx.ExecuteWithRetry(ctx, c.retry, func() error {
		r, err := c.client.HeadObject(ctx, &s3.HeadObjectInput{
			Bucket: aws.String(c.bucket),
			Key:    aws.String(key),
		})
		resp = r
		return err
	})
	if err != nil {
		return 0, err
	}
	return aws.ToInt64(resp.ContentLength), nil
}
