package service

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"leaf-care-go/internal/model"
	"leaf-care-go/pkg/log"
)

// ImageStore 保存上传的图片并生成访问地址。
type ImageStore interface {
	Put(ctx context.Context, objectName string, r io.Reader, size int64, contentType string) error
	URL(ctx context.Context, objectName string) (string, error)
}

// ImageUpload 描述一次图片上传。
type ImageUpload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// ImageService 保存植物照片并返回分析结果。
type ImageService interface {
	Analyze(ctx context.Context, userID uint, upload ImageUpload) (*model.ImageAnalysis, error)
}

type imageService struct {
	store ImageStore
}

// NewImageService 创建图片服务。store 为 nil 时图片不落盘，image_url 为空。
func NewImageService(store ImageStore) ImageService {
	return &imageService{store: store}
}

// Analyze 目前返回固定的示例分析结果，尚未接入真实的识别模型。
func (s *imageService) Analyze(ctx context.Context, userID uint, upload ImageUpload) (*model.ImageAnalysis, error) {
	if !strings.HasPrefix(upload.ContentType, "image/") {
		return nil, ErrInvalidImage
	}

	analysis := &model.ImageAnalysis{
		Health: "良好",
		Issues: []string{"叶片轻微发黄", "可能缺水"},
		Recommendations: []string{
			"适量增加浇水频率",
			"检查土壤湿度",
			"确保充足散射光照",
		},
	}
	if s.store == nil {
		return analysis, nil
	}

	objectName := fmt.Sprintf("uploads/%s%s", uuid.NewString(), strings.ToLower(filepath.Ext(upload.Filename)))
	if err := s.store.Put(ctx, objectName, upload.Body, upload.Size, upload.ContentType); err != nil {
		return nil, fmt.Errorf("图片处理失败: %w", err)
	}
	url, err := s.store.URL(ctx, objectName)
	if err != nil {
		return nil, fmt.Errorf("图片处理失败: %w", err)
	}
	log.Infof("用户 %d 上传图片: %s", userID, objectName)
	analysis.ImageURL = url
	return analysis, nil
}
