package storage

import (
	"context"
	"fmt"
	"io"
	"time"

	"hbcplayer/config"
	"hbcplayer/logger"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

var minioClient *minio.Client

// InitMinio initializes the MinIO client and makes sure the preview
// bucket exists.
func InitMinio(cfg *config.Config) error {
	logger.Info("Connecting to MinIO",
		logger.String("endpoint", cfg.MinioEndpoint),
		logger.String("bucket", cfg.MinioBucket))

	client, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessKey, cfg.MinioSecretKey, ""),
		Secure: cfg.MinioUseSSL,
		Region: cfg.MinioRegion,
	})
	if err != nil {
		return fmt.Errorf("failed to create MinIO client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	exists, err := client.BucketExists(ctx, cfg.MinioBucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket: %w", err)
	}
	if !exists {
		err = client.MakeBucket(ctx, cfg.MinioBucket, minio.MakeBucketOptions{
			Region: cfg.MinioRegion,
		})
		if err != nil {
			return fmt.Errorf("failed to create bucket %s: %w", cfg.MinioBucket, err)
		}
		logger.Info("Created MinIO bucket", logger.String("bucket", cfg.MinioBucket))
	}

	minioClient = client
	return nil
}

// GetMinioClient returns the initialized MinIO client, or nil.
func GetMinioClient() *minio.Client {
	return minioClient
}

// OpenPreview opens the preview audio object for streaming.
func OpenPreview(ctx context.Context, bucket, objectKey string) (io.ReadCloser, error) {
	if minioClient == nil {
		return nil, fmt.Errorf("MinIO client not initialized")
	}

	object, err := minioClient.GetObject(ctx, bucket, objectKey, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to open preview object %s: %w", objectKey, err)
	}
	return object, nil
}

// PutPreview uploads a preview audio object.
func PutPreview(ctx context.Context, bucket, objectKey string, reader io.Reader, size int64) error {
	if minioClient == nil {
		return fmt.Errorf("MinIO client not initialized")
	}

	_, err := minioClient.PutObject(ctx, bucket, objectKey, reader, size, minio.PutObjectOptions{
		ContentType: "audio/mpeg",
	})
	if err != nil {
		return fmt.Errorf("failed to upload preview object %s: %w", objectKey, err)
	}
	return nil
}
