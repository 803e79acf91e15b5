// Package storage 提供了与对象存储服务（如 MinIO）交互的功能。
package storage

import (
	"context"
	"io"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"leaf-care-go/internal/config"
	"leaf-care-go/pkg/log"
)

// MinioClient 是一个全局的 MinIO 客户端实例。
var MinioClient *minio.Client

// InitMinIO 初始化 MinIO 客户端并确保指定的存储桶存在。
func InitMinIO(cfg config.MinIOConfig) error {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	exists, err := client.BucketExists(ctx, cfg.BucketName)
	if err != nil {
		return err
	}
	if !exists {
		log.Infof("存储桶 '%s' 不存在，正在创建...", cfg.BucketName)
		if err := client.MakeBucket(ctx, cfg.BucketName, minio.MakeBucketOptions{}); err != nil {
			return err
		}
		log.Infof("存储桶 '%s' 创建成功", cfg.BucketName)
	}

	MinioClient = client
	log.Info("MinIO 客户端初始化成功")
	return nil
}

// ImageStore 将植物图片保存在一个存储桶中，通过预签名 URL 对外访问。
type ImageStore struct {
	client *minio.Client
	bucket string
	expiry time.Duration
}

func NewImageStore(client *minio.Client, cfg config.MinIOConfig) *ImageStore {
	hours := cfg.URLExpireHours
	if hours <= 0 {
		hours = 24
	}
	return &ImageStore{client: client, bucket: cfg.BucketName, expiry: time.Duration(hours) * time.Hour}
}

// Put 上传对象，size 为 -1 时按流式分片上传。
func (s *ImageStore) Put(ctx context.Context, objectName string, r io.Reader, size int64, contentType string) error {
	_, err := s.client.PutObject(ctx, s.bucket, objectName, r, size, minio.PutObjectOptions{ContentType: contentType})
	return err
}

// URL generates a presigned URL for a given object.
func (s *ImageStore) URL(ctx context.Context, objectName string) (string, error) {
	presignedURL, err := s.client.PresignedGetObject(ctx, s.bucket, objectName, s.expiry, nil)
	if err != nil {
		log.Errorf("Error generating presigned URL: %s", err)
		return "", err
	}
	return presignedURL.String(), nil
}
