// utils/s3.go - S3-compatible object storage for uploads
package utils

import (
	"bytes"
	"context"
	"fmt"
	"mime"
	"os"
	"path"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ObjectStorage stores ID documents and solution attachments in an
// S3-compatible bucket (AWS S3 or Cloudflare R2).
type ObjectStorage struct {
	client *s3.Client
	bucket string
}

// NewObjectStorageFromEnv returns nil when the bucket is not
// configured; callers treat a nil store as "uploads disabled".
func NewObjectStorageFromEnv() (*ObjectStorage, error) {
	bucket := os.Getenv("S3_BUCKET_NAME")
	accessKey := os.Getenv("S3_ACCESS_KEY_ID")
	secretKey := os.Getenv("S3_SECRET_ACCESS_KEY")
	if bucket == "" || accessKey == "" || secretKey == "" {
		return nil, nil
	}

	region := os.Getenv("S3_REGION")
	if region == "" {
		region = "auto"
	}

	cfg, err := config.LoadDefaultConfig(context.Background(),
		config.WithRegion(region),
		config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(accessKey, secretKey, ""),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load S3 config: %w", err)
	}

	endpoint := os.Getenv("S3_ENDPOINT")
	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	})

	return &ObjectStorage{client: client, bucket: bucket}, nil
}

// Upload stores data under objectName. The content type falls back to
// the file extension, then to octet-stream.
func (st *ObjectStorage) Upload(objectName string, data []byte, contentType string) error {
	if contentType == "" {
		contentType = mime.TypeByExtension(path.Ext(objectName))
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	_, err := st.client.PutObject(context.Background(), &s3.PutObjectInput{
		Bucket:      aws.String(st.bucket),
		Key:         aws.String(objectName),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("object upload failed: %w", err)
	}
	return nil
}

// SignedURL returns a presigned GET URL for the object.
func (st *ObjectStorage) SignedURL(objectName string, expiry time.Duration) (string, error) {
	presigner := s3.NewPresignClient(st.client)
	presigned, err := presigner.PresignGetObject(context.Background(),
		&s3.GetObjectInput{
			Bucket: aws.String(st.bucket),
			Key:    aws.String(objectName),
		},
		func(po *s3.PresignOptions) {
			po.Expires = expiry
		},
	)
	if err != nil {
		return "", fmt.Errorf("failed to presign URL: %w", err)
	}
	return presigned.URL, nil
}

// Delete removes an object from the bucket.
func (st *ObjectStorage) Delete(objectName string) error {
	_, err := st.client.DeleteObject(context.Background(), &s3.DeleteObjectInput{
		Bucket: aws.String(st.bucket),
		Key:    aws.String(objectName),
	})
	if err != nil {
		return fmt.Errorf("object delete failed: %w", err)
	}
	return nil
}
