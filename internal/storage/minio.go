// Package storage 实验图库的对象存储访问层（MinIO/S3兼容）。
package storage

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/vlabhub/labchat-go/internal/config"
)

// MinIOService 对象存储服务：存放实验电路图、装置图等静态资源
type MinIOService struct {
	client *minio.Client
	bucket string
}

// NewMinIOService 创建MinIO服务实例
func NewMinIOService(cfg config.ObjectStorageConfig) (*MinIOService, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("minio endpoint not configured")
	}
	if cfg.Bucket == "" {
		cfg.Bucket = "lab-assets"
	}

	// minio.New 只接受host:port，不带协议前缀
	endpoint := strings.TrimPrefix(cfg.Endpoint, "http://")
	endpoint = strings.TrimPrefix(endpoint, "https://")

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	return &MinIOService{
		client: client,
		bucket: cfg.Bucket,
	}, nil
}

// EnsureBucket 确保bucket存在，启动时调用
func (s *MinIOService) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket: %w", err)
	}
	if exists {
		return nil
	}

	err = s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{})
	if err != nil {
		errStr := err.Error()
		if strings.Contains(errStr, "BucketAlreadyExists") ||
			strings.Contains(errStr, "BucketAlreadyOwnedByYou") {
			return nil
		}
		return fmt.Errorf("failed to create bucket %s: %w", s.bucket, err)
	}
	return nil
}

// PresignedImageURL 为实验图生成限时GET链接，返回给前端内嵌在markdown回答里
func (s *MinIOService) PresignedImageURL(ctx context.Context, objectKey string, expiry time.Duration) (string, error) {
	if objectKey == "" {
		return "", fmt.Errorf("object key is empty")
	}
	if expiry <= 0 {
		expiry = 15 * time.Minute
	}

	u, err := s.client.PresignedGetObject(ctx, s.bucket, objectKey, expiry, url.Values{})
	if err != nil {
		return "", fmt.Errorf("failed to presign %s: %w", objectKey, err)
	}
	return u.String(), nil
}

// Ready 检查客户端是否可用
func (s *MinIOService) Ready() bool {
	return s != nil && s.client != nil
}
