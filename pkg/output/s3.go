package output

import (
	"bytes"
	"context"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"

	"github.com/df07/go-pathtracer/pkg/core"
)

// DefaultUploadTimeout bounds a single upload when S3Config.UploadTimeout is zero
const DefaultUploadTimeout = 30 * time.Second

// S3Config holds the object storage settings
type S3Config struct {
	AccessKey     string
	SecretKey     string
	Endpoint      string
	Region        string
	Bucket        string
	Prefix        string // Prepended to every object key
	UploadTimeout time.Duration
}

// Enabled reports whether enough settings are present to publish
func (c S3Config) Enabled() bool {
	return c.Bucket != "" && c.Region != ""
}

// objectPutter is the part of the S3 client used for publishing
type objectPutter interface {
	PutObjectWithContext(ctx aws.Context, input *s3.PutObjectInput, opts ...request.Option) (*s3.PutObjectOutput, error)
}

// S3Publisher uploads rendered files to an S3-compatible bucket
type S3Publisher struct {
	config S3Config
	client objectPutter
	logger core.Logger
}

// NewS3Publisher creates a publisher with static credentials and path-style addressing
func NewS3Publisher(config S3Config, logger core.Logger) (*S3Publisher, error) {
	awsConfig := &aws.Config{
		Credentials:      credentials.NewStaticCredentials(config.AccessKey, config.SecretKey, ""),
		Region:           aws.String(config.Region),
		S3ForcePathStyle: aws.Bool(true),
	}
	if config.Endpoint != "" {
		awsConfig.Endpoint = aws.String(config.Endpoint)
	}

	sess, err := session.NewSession(awsConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create S3 session: %w", err)
	}
	return newS3Publisher(config, s3.New(sess), logger), nil
}

func newS3Publisher(config S3Config, client objectPutter, logger core.Logger) *S3Publisher {
	if config.UploadTimeout <= 0 {
		config.UploadTimeout = DefaultUploadTimeout
	}
	return &S3Publisher{config: config, client: client, logger: logger}
}

// Publish uploads the file at path under key, returning the full object key
func (p *S3Publisher) Publish(ctx context.Context, key, path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}

	ctx, cancel := context.WithTimeout(ctx, p.config.UploadTimeout)
	defer cancel()

	objectKey := p.config.Prefix + key
	contentType := mime.TypeByExtension(filepath.Ext(path))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	size := int64(len(data))
	_, err = p.client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(p.config.Bucket),
		Key:           aws.String(objectKey),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(size),
		ContentType:   aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", objectKey, err)
	}

	if p.logger != nil {
		p.logger.Printf("Uploaded %s to S3 (%d bytes)\n", objectKey, size)
	}
	return objectKey, nil
}
