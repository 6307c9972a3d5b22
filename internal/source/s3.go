package source

import (
	"bytes"
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// S3Store reads and writes objects with the S3 transfer manager.
type S3Store struct {
	downloader *manager.Downloader
	uploader   *manager.Uploader
}

// NewS3Store loads credentials the usual way (environment, shared config,
// instance role). An empty region defers to the environment.
func NewS3Store(ctx context.Context, region string) (*S3Store, error) {
	var opts []func(*awsConfig.LoadOptions) error
	if region != "" {
		opts = append(opts, awsConfig.WithRegion(region))
	}
	cfg, err := awsConfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return NewS3StoreFromClient(s3.NewFromConfig(cfg)), nil
}

func NewS3StoreFromClient(client *s3.Client) *S3Store {
	return &S3Store{
		downloader: manager.NewDownloader(client),
		uploader:   manager.NewUploader(client),
	}
}

func (s *S3Store) Get(ctx context.Context, bucket, key string) ([]byte, error) {
	buf := manager.NewWriteAtBuffer(nil)
	n, err := s.downloader.Download(ctx, buf, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("s3 download failed: %w", err)
	}
	if n > MaxDocumentSize {
		return nil, fmt.Errorf("s3 object exceeds %d bytes", MaxDocumentSize)
	}
	return buf.Bytes(), nil
}

func (s *S3Store) Put(ctx context.Context, bucket, key, contentType string, body []byte) error {
	_, err := s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:               aws.String(bucket),
		Key:                  aws.String(key),
		Body:                 bytes.NewReader(body),
		ContentType:          aws.String(contentType),
		ServerSideEncryption: s3types.ServerSideEncryptionAes256,
	})
	if err != nil {
		return fmt.Errorf("s3 upload failed: %w", err)
	}
	return nil
}
