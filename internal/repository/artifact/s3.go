package artifact

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"causalUplift/domain"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

type S3Config struct {
	Bucket          string
	Region          string
	Endpoint        string // MinIO or other compatible endpoint
	Prefix          string
	AccessKeyID     string // falls back to the default credential chain
	SecretAccessKey string
	PathStyle       bool
}

// S3Store writes artifacts as objects in a single bucket. Put overwrites.
type S3Store struct {
	client *s3.Client
	bucket string
	prefix string
}

func NewS3Store(ctx context.Context, cfg S3Config) (*S3Store, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 bucket required")
	}
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}

	loadOpts := []func(*config.LoadOptions) error{config.WithRegion(region)}
	if cfg.AccessKeyID != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.PathStyle
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})

	return NewS3StoreWithClient(client, cfg.Bucket, cfg.Prefix), nil
}

// NewS3StoreWithClient wraps an already configured client.
func NewS3StoreWithClient(client *s3.Client, bucket, prefix string) *S3Store {
	return &S3Store{client: client, bucket: bucket, prefix: prefix}
}

func (s *S3Store) objectKey(key string) (string, error) {
	k, err := cleanKey(key)
	if err != nil {
		return "", err
	}
	if s.prefix == "" {
		return k, nil
	}
	return s.prefix + "/" + k, nil
}

func (s *S3Store) location(objectKey string) string {
	return "s3://" + s.bucket + "/" + objectKey
}

func (s *S3Store) Put(ctx context.Context, key string, r io.Reader, contentType string) (domain.Artifact, error) {
	objKey, err := s.objectKey(key)
	if err != nil {
		return domain.Artifact{}, err
	}
	body, err := io.ReadAll(r)
	if err != nil {
		return domain.Artifact{}, err
	}

	input := &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(objKey),
		Body:          bytes.NewReader(body),
		ContentLength: aws.Int64(int64(len(body))),
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}
	if _, err := s.client.PutObject(ctx, input); err != nil {
		return domain.Artifact{}, fmt.Errorf("put object %s: %w", objKey, err)
	}

	return domain.Artifact{
		Key:         key,
		Location:    s.location(objKey),
		ContentType: contentType,
		Size:        int64(len(body)),
		WrittenAt:   time.Now().UTC(),
	}, nil
}

func (s *S3Store) Get(ctx context.Context, key string) (domain.Artifact, io.ReadCloser, error) {
	objKey, err := s.objectKey(key)
	if err != nil {
		return domain.Artifact{}, nil, err
	}
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{Bucket: aws.String(s.bucket), Key: aws.String(objKey)})
	if err != nil {
		var noKey *types.NoSuchKey
		if errors.As(err, &noKey) {
			return domain.Artifact{}, nil, fmt.Errorf("%w: %s", domain.ErrArtifactNotFound, key)
		}
		return domain.Artifact{}, nil, fmt.Errorf("get object %s: %w", objKey, err)
	}

	info := domain.Artifact{
		Key:         key,
		Location:    s.location(objKey),
		ContentType: aws.ToString(out.ContentType),
		Size:        aws.ToInt64(out.ContentLength),
		WrittenAt:   aws.ToTime(out.LastModified),
	}
	return info, out.Body, nil
}
