package objectclient

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	cfg "github.com/mediora-ai/mediora/internal/config"
	"github.com/mediora-ai/mediora/internal/core"
)

// S3Client implements core.ObjectClient against AWS S3. Job source paths
// are opaque locators interpreted as keys in the configured bucket.
type S3Client struct {
	client     *s3.Client
	downloader *manager.Downloader
	bucket     string
}

var _ core.ObjectClient = (*S3Client)(nil)

func NewS3Client(ctx context.Context, cfg *cfg.Config) (*S3Client, error) {
	if cfg.AwsAccessKey == "" || cfg.AwsSecretKey == "" {
		return nil, fmt.Errorf("AWS credentials not set")
	}
	if cfg.AwsRegion == "" {
		return nil, fmt.Errorf("AWS_REGION not set")
	}
	if cfg.BucketName == "" {
		return nil, fmt.Errorf("S3 bucket name not set")
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(
		ctx,
		awsconfig.WithRegion(cfg.AwsRegion),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AwsAccessKey, cfg.AwsSecretKey, ""),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg)
	slog.Info("connected to AWS S3", "bucket", cfg.BucketName, "region", cfg.AwsRegion)

	return &S3Client{
		client:     client,
		downloader: manager.NewDownloader(client),
		bucket:     cfg.BucketName,
	}, nil
}

// Download fetches the full object into memory.
func (c *S3Client) Download(ctx context.Context, key string) ([]byte, error) {
	ctxGet, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	buf := manager.NewWriteAtBuffer(nil)
	_, err := c.downloader.Download(ctxGet, buf, &s3.GetObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("s3 download failed: %w", err)
	}
	return buf.Bytes(), nil
}

// Exists reports whether the object is present without fetching it.
func (c *S3Client) Exists(ctx context.Context, key string) (bool, error) {
	_, err := c.head(ctx, key)
	if err != nil {
		var notFound *types.NotFound
		if errors.As(err, &notFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Metadata returns the object's size and content type.
func (c *S3Client) Metadata(ctx context.Context, key string) (*core.ObjectInfo, error) {
	out, err := c.head(ctx, key)
	if err != nil {
		return nil, err
	}
	info := &core.ObjectInfo{}
	if out.ContentLength != nil {
		info.Size = *out.ContentLength
	}
	if out.ContentType != nil {
		info.ContentType = *out.ContentType
	}
	return info, nil
}

func (c *S3Client) head(ctx context.Context, key string) (*s3.HeadObjectOutput, error) {
	ctxHead, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	out, err := c.client.HeadObject(ctxHead, &s3.HeadObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("s3 head failed: %w", err)
	}
	return out, nil
}
