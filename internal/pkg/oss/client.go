package oss

import (
	"bytes"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"

	"github.com/qs3c/predict_admin_server/config"
	"github.com/qs3c/predict_admin_server/internal/model"
)

// 对象目录
const (
	FolderMedia    = "media"
	FolderAIImages = "ai-images"
)

type Client struct {
	bucket     *oss.Bucket
	endpoint   string
	bucketName string
	cdnDomain  string
}

func NewClient(cfg *config.OSSConfig) (*Client, error) {
	client, err := oss.New(cfg.Endpoint, cfg.AccessKeyID, cfg.AccessKeySecret)
	if err != nil {
		return nil, fmt.Errorf("failed to create OSS client: %w", err)
	}

	bucket, err := client.Bucket(cfg.BucketName)
	if err != nil {
		return nil, fmt.Errorf("failed to get bucket: %w", err)
	}

	return &Client{
		bucket:     bucket,
		endpoint:   client.Config.Endpoint,
		bucketName: cfg.BucketName,
		cdnDomain:  cfg.CDNDomain,
	}, nil
}

// UploadFile 上传对象并返回公开 URL
func (c *Client) UploadFile(objectKey string, data []byte, contentType string) (string, error) {
	err := c.bucket.PutObject(objectKey, bytes.NewReader(data), oss.ContentType(contentType))
	if err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", objectKey, err)
	}

	return c.GetURL(objectKey), nil
}

// Delete 删除对象
func (c *Client) Delete(objectKey string) error {
	if err := c.bucket.DeleteObject(objectKey); err != nil {
		return fmt.Errorf("failed to delete object: %w", err)
	}
	return nil
}

// GetURL 获取文件访问 URL
func (c *Client) GetURL(objectKey string) string {
	return PublicURL(c.cdnDomain, c.bucketName, c.endpoint, objectKey)
}

// PublicURL CDN 优先，否则使用 bucket 子域名
func PublicURL(cdnDomain, bucketName, endpoint, objectKey string) string {
	if cdnDomain != "" {
		return fmt.Sprintf("https://%s/%s", cdnDomain, objectKey)
	}
	endpoint = strings.TrimPrefix(strings.TrimPrefix(endpoint, "https://"), "http://")
	return fmt.Sprintf("https://%s.%s/%s", bucketName, endpoint, objectKey)
}

// ObjectKey 生成 <folder>/<yyyy>/<mm>/<id><ext>
func ObjectKey(folder, ext string, now time.Time) string {
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	now = now.UTC()
	return path.Join(folder, fmt.Sprintf("%04d", now.Year()), fmt.Sprintf("%02d", int(now.Month())), model.NewID()+strings.ToLower(ext))
}

// ExtensionFor 根据 MIME 推断扩展名
func ExtensionFor(contentType string) string {
	switch strings.ToLower(strings.TrimSpace(strings.Split(contentType, ";")[0])) {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	case "video/mp4":
		return ".mp4"
	case "video/webm":
		return ".webm"
	default:
		return ""
	}
}
