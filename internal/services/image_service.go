package services

import (
	"context"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/vlabhub/labchat-go/internal/logger"
	"github.com/vlabhub/labchat-go/internal/models"
	"github.com/vlabhub/labchat-go/internal/retrieval"
	"github.com/vlabhub/labchat-go/internal/storage"
)

// ImageFinder 根据问题文本找出相关实验图并解析为可访问URL
type ImageFinder interface {
	Find(ctx context.Context, question string) ([]ImageRef, error)
}

// ImageService 从图库表匹配实验图，并通过MinIO生成限时链接
type ImageService struct {
	db     *gorm.DB
	minio  *storage.MinIOService
	expiry time.Duration
}

// NewImageService 创建实验图服务
func NewImageService(db *gorm.DB, minioService *storage.MinIOService) *ImageService {
	return &ImageService{
		db:     db,
		minio:  minioService,
		expiry: 15 * time.Minute,
	}
}

// Find 关键词匹配图库并为命中的图生成presigned URL
func (s *ImageService) Find(ctx context.Context, question string) ([]ImageRef, error) {
	if s.db == nil || s.minio == nil || !s.minio.Ready() {
		return nil, nil
	}

	var images []models.LabImage
	if err := s.db.WithContext(ctx).Find(&images).Error; err != nil {
		return nil, err
	}

	matched := retrieval.MatchImages(question, images)
	refs := make([]ImageRef, 0, len(matched))
	for _, img := range matched {
		url, err := s.minio.PresignedImageURL(ctx, img.ObjectKey, s.expiry)
		if err != nil {
			logger.Warn("failed to presign lab image",
				zap.String("object_key", img.ObjectKey), zap.Error(err))
			continue
		}
		refs = append(refs, ImageRef{Caption: img.Caption, URL: url})
	}
	return refs, nil
}
