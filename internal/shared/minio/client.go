// Package objstore 封装 MinIO 对象存储客户端
//
// 用于在对象存储中保留已安装 CApp 的副本（carbonapps/{file}）。
package objstore

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"path"

	"github.com/gabriel-vasile/mimetype"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"capp-admin/internal/config"
)

// KeyPrefix CApp 副本的对象键前缀
const KeyPrefix = "carbonapps/"

// CarContentType CApp 文件的 MIME 类型
const CarContentType = "application/zip"

const octetStream = "application/octet-stream"

// Client MinIO 客户端封装
type Client struct {
	mc     *minio.Client
	bucket string
}

// NewClient 创建 MinIO 客户端
func NewClient(cfg config.MinIOConfig) (*Client, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("minio endpoint is required")
	}
	if cfg.AccessKey == "" || cfg.SecretKey == "" {
		return nil, fmt.Errorf("minio access_key and secret_key are required")
	}

	mc, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	bucket := cfg.Bucket
	if bucket == "" {
		bucket = "carbonapps"
	}

	return &Client{mc: mc, bucket: bucket}, nil
}

// Bucket 返回 bucket 名称
func (c *Client) Bucket() string {
	return c.bucket
}

// EnsureBucket 确保 bucket 存在
func (c *Client) EnsureBucket(ctx context.Context) error {
	exists, err := c.mc.BucketExists(ctx, c.bucket)
	if err != nil {
		return fmt.Errorf("check bucket: %w", err)
	}
	if !exists {
		if err := c.mc.MakeBucket(ctx, c.bucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("create bucket: %w", err)
		}
		log.Printf("[minio] Created bucket: %s", c.bucket)
	}
	return nil
}

// Upload 上传对象
func (c *Client) Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error {
	if contentType == "" {
		contentType = octetStream
	}
	_, err := c.mc.PutObject(ctx, c.bucket, key, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("upload %s: %w", key, err)
	}
	return nil
}

// Delete 删除对象
func (c *Client) Delete(ctx context.Context, key string) error {
	if err := c.mc.RemoveObject(ctx, c.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

// ObjectKey 返回 CApp 文件对应的对象键
func ObjectKey(fileName string) string {
	return KeyPrefix + path.Base(fileName)
}

// ContentType 根据内容嗅探 CApp 副本的 MIME 类型
//
// CApp 是 zip 包（含 jar 等 zip 派生格式），其余内容按二进制流保存。
func ContentType(data []byte) string {
	for m := mimetype.Detect(data); m != nil; m = m.Parent() {
		if m.Is(CarContentType) {
			return CarContentType
		}
	}
	return octetStream
}

// StorePackage 保存 CApp 副本
func (c *Client) StorePackage(ctx context.Context, fileName string, data []byte) error {
	return c.Upload(ctx, ObjectKey(fileName), bytes.NewReader(data), int64(len(data)), ContentType(data))
}

// RemovePackage 删除 CApp 副本
func (c *Client) RemovePackage(ctx context.Context, fileName string) error {
	return c.Delete(ctx, ObjectKey(fileName))
}
