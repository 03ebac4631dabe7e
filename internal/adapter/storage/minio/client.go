// internal/adapter/storage/minio/client.go
package minio

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/uuid"

	appconfig "github.com/GoArmGo/ArtGallery/internal/config"
	"github.com/GoArmGo/ArtGallery/internal/domain"
)

// keyPrefix — каталог в бакете, куда складываются изображения произведений
const keyPrefix = "art-pieces/"

// Client представляет собой клиент для взаимодействия с MinIO (S3-совместимым хранилищем).
// Реализует ports.MediaStore
type Client struct {
	s3Client   *s3.Client
	uploader   *manager.Uploader
	bucketName string
	region     string
	publicBase string
	logger     *slog.Logger
}

// NewMinioClient создает и инициализирует новый MinIO Client, используя переданную конфигурацию.
func NewMinioClient(ctx context.Context, cfg *appconfig.Config, logger *slog.Logger) (*Client, error) {
	if cfg.Minio.AccessKeyID == "" || cfg.Minio.SecretAccessKey == "" || cfg.Minio.BucketName == "" || cfg.Minio.Endpoint == "" {
		return nil, fmt.Errorf("MinIO credentials (MINIO_ACCESS_KEY_ID, MINIO_SECRET_ACCESS_KEY, MINIO_BUCKET_NAME, MINIO_ENDPOINT) must be set in environment variables")
	}

	cfgAws, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Minio.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.Minio.AccessKeyID, cfg.Minio.SecretAccessKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config for MinIO: %w", err)
	}

	endpoint := cfg.MinioEndpointURL()
	s3Client := s3.NewFromConfig(cfgAws, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpoint)
		o.UsePathStyle = true
	})

	return &Client{
		s3Client:   s3Client,
		uploader:   manager.NewUploader(s3Client),
		bucketName: cfg.Minio.BucketName,
		region:     cfg.Minio.Region,
		publicBase: strings.TrimRight(cfg.MinioPublicBaseURL(), "/"),
		logger:     logger,
	}, nil
}

// EnsureBucket проверяет существование бакета и создаёт его при необходимости
func (c *Client) EnsureBucket(ctx context.Context) error {
	headCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := c.s3Client.HeadBucket(headCtx, &s3.HeadBucketInput{
		Bucket: aws.String(c.bucketName),
	})
	if err == nil {
		c.logger.Info("bucket already exists", "bucket", c.bucketName)
		return nil
	}

	c.logger.Warn("bucket not found, creating", "bucket", c.bucketName)

	input := &s3.CreateBucketInput{Bucket: aws.String(c.bucketName)}
	// us-east-1 не принимает явный LocationConstraint
	if c.region != "" && c.region != "us-east-1" {
		input.CreateBucketConfiguration = &types.CreateBucketConfiguration{
			LocationConstraint: types.BucketLocationConstraint(c.region),
		}
	}
	if _, err := c.s3Client.CreateBucket(ctx, input); err != nil {
		var owned *types.BucketAlreadyOwnedByYou
		if !errors.As(err, &owned) {
			return fmt.Errorf("failed to create bucket '%s': %w", c.bucketName, err)
		}
	}

	// Ждем пока бакет станет доступен
	waiter := s3.NewBucketExistsWaiter(c.s3Client)
	if err := waiter.Wait(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(c.bucketName),
	}, 30*time.Second); err != nil {
		return fmt.Errorf("failed waiting for bucket '%s' to be created: %w", c.bucketName, err)
	}

	c.logger.Info("bucket created", "bucket", c.bucketName)
	return nil
}

// Upload загружает файл в бакет через multipart uploader и возвращает публичный URL объекта
func (c *Client) Upload(ctx context.Context, file domain.Upload) (string, error) {
	start := time.Now()

	objectKey := ObjectKey(file.Filename)
	contentType := file.ContentType
	if contentType == "" {
		contentType = mime.TypeByExtension(path.Ext(objectKey))
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	_, err := c.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(c.bucketName),
		Key:         aws.String(objectKey),
		Body:        file.Body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload file %s to bucket %s using multipart upload: %w", objectKey, c.bucketName, err)
	}

	c.logger.Info("file uploaded to minio",
		"bucket", c.bucketName,
		"key", objectKey,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return c.PublicURL(objectKey), nil
}

// Delete удаляет объект по его публичному URL
func (c *Client) Delete(ctx context.Context, publicURL string) error {
	objectKey, err := c.ObjectKeyFromURL(publicURL)
	if err != nil {
		return err
	}

	_, err = c.s3Client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(c.bucketName),
		Key:    aws.String(objectKey),
	})
	if err != nil {
		return fmt.Errorf("failed to delete file %s from bucket %s: %w", objectKey, c.bucketName, err)
	}

	c.logger.Info("file deleted from minio", "bucket", c.bucketName, "key", objectKey)
	return nil
}

// PublicURL строит URL объекта: <public_base>/<bucket>/<key>
func (c *Client) PublicURL(objectKey string) string {
	return fmt.Sprintf("%s/%s/%s", c.publicBase, c.bucketName, objectKey)
}

// ObjectKeyFromURL обратен PublicURL. Для чужих URL возвращает domain.ErrForeignURL
func (c *Client) ObjectKeyFromURL(publicURL string) (string, error) {
	prefix := fmt.Sprintf("%s/%s/", c.publicBase, c.bucketName)
	if !strings.HasPrefix(publicURL, prefix) || len(publicURL) == len(prefix) {
		return "", fmt.Errorf("%q: %w", publicURL, domain.ErrForeignURL)
	}
	return strings.TrimPrefix(publicURL, prefix), nil
}

// ObjectKey генерирует уникальный ключ объекта, сохраняя расширение исходного файла
func ObjectKey(filename string) string {
	return keyPrefix + uuid.NewString() + strings.ToLower(path.Ext(filename))
}
