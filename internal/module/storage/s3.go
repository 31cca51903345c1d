package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// Config holds object storage configuration.
type Config struct {
	Endpoint        string
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
	UploadURLTTL    time.Duration
	DownloadURLTTL  time.Duration
}

// Client wraps the S3 client for video storage operations.
type Client struct {
	client    *s3.Client
	presigner *s3.PresignClient
	bucket    string

	uploadTTL   time.Duration
	downloadTTL time.Duration
}

// NewClient creates a new storage client.
func NewClient(cfg *Config) (*Client, error) {
	if cfg.AccessKeyID == "" || cfg.SecretAccessKey == "" || cfg.Bucket == "" {
		return nil, errors.New("incomplete storage configuration")
	}

	creds := credentials.NewStaticCredentialsProvider(
		cfg.AccessKeyID,
		cfg.SecretAccessKey,
		"",
	)

	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithCredentialsProvider(creds),
		awsconfig.WithRegion(region),
	)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true // S3-compatible stores require path-style URLs
		}
	})

	uploadTTL := cfg.UploadURLTTL
	if uploadTTL == 0 {
		uploadTTL = 15 * time.Minute
	}
	downloadTTL := cfg.DownloadURLTTL
	if downloadTTL == 0 {
		downloadTTL = 24 * time.Hour
	}

	return &Client{
		client:      client,
		presigner:   s3.NewPresignClient(client),
		bucket:      cfg.Bucket,
		uploadTTL:   uploadTTL,
		downloadTTL: downloadTTL,
	}, nil
}

// PresignedURL represents a presigned URL response.
type PresignedURL struct {
	URL       string
	Method    string
	ExpiresAt time.Time
}

// PresignUpload generates a presigned URL for uploading a video.
func (c *Client) PresignUpload(ctx context.Context, key, contentType string) (*PresignedURL, error) {
	input := &s3.PutObjectInput{
		Bucket:      aws.String(c.bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}

	req, err := c.presigner.PresignPutObject(ctx, input, func(opts *s3.PresignOptions) {
		opts.Expires = c.uploadTTL
	})
	if err != nil {
		return nil, fmt.Errorf("presign put: %w", err)
	}

	return &PresignedURL{
		URL:       req.URL,
		Method:    req.Method,
		ExpiresAt: time.Now().Add(c.uploadTTL),
	}, nil
}

// PresignDownload generates a presigned URL for downloading a video.
func (c *Client) PresignDownload(ctx context.Context, key string) (*PresignedURL, error) {
	input := &s3.GetObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	}

	req, err := c.presigner.PresignGetObject(ctx, input, func(opts *s3.PresignOptions) {
		opts.Expires = c.downloadTTL
	})
	if err != nil {
		return nil, fmt.Errorf("presign get: %w", err)
	}

	return &PresignedURL{
		URL:       req.URL,
		Method:    req.Method,
		ExpiresAt: time.Now().Add(c.downloadTTL),
	}, nil
}

// ObjectExists reports whether the object with the given key is in the bucket.
func (c *Client) ObjectExists(ctx context.Context, key string) (bool, error) {
	_, err := c.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var notFound *types.NotFound
		if errors.As(err, &notFound) {
			return false, nil
		}
		return false, fmt.Errorf("head object: %w", err)
	}
	return true, nil
}
