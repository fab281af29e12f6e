package minio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"DateServer/config"
	"DateServer/pkg/logger"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// 上传校验错误，service 层据此映射业务错误码
var (
	ErrFileTooLarge     = errors.New("file too large")
	ErrFileTypeNotAllow = errors.New("file type not allowed")
	ErrExtensionForged  = errors.New("file extension does not match content")
)

var global *MinIOClient

// MinIOClient MinIO 客户端封装
type MinIOClient struct {
	client *minio.Client
	config config.MinIOConfig
}

// Client 返回全局 MinIO 客户端（未初始化时为 nil）
func Client() *MinIOClient {
	return global
}

// ReplaceGlobal 设置全局 MinIO 客户端
func ReplaceGlobal(c *MinIOClient) {
	global = c
}

// Build 基于配置创建 MinIO 客户端，并确保 Bucket 存在
func Build(cfg config.MinIOConfig) (*MinIOClient, error) {
	// 1. 验证必填配置
	if strings.TrimSpace(cfg.Endpoint) == "" {
		return nil, errors.New("minio endpoint is empty")
	}
	if strings.TrimSpace(cfg.AccessKeyID) == "" || strings.TrimSpace(cfg.SecretAccessKey) == "" {
		return nil, errors.New("minio credentials are empty")
	}
	if strings.TrimSpace(cfg.BucketName) == "" {
		return nil, errors.New("minio bucketName is empty")
	}

	// 2. 创建 MinIO 客户端
	minioClient, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
		Transport: &http.Transport{
			MaxIdleConns:        cfg.MaxIdleConns,
			MaxIdleConnsPerHost: cfg.MaxIdleConnsPerHost,
			IdleConnTimeout:     cfg.IdleConnTimeout,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	// 3. 确保 Bucket 存在
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	exists, err := minioClient.BucketExists(ctx, cfg.BucketName)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket exists: %w", err)
	}
	if !exists {
		if err := minioClient.MakeBucket(ctx, cfg.BucketName, minio.MakeBucketOptions{Region: cfg.Location}); err != nil {
			return nil, fmt.Errorf("failed to create bucket: %w", err)
		}
		logger.Info(ctx, "MinIO Bucket 创建成功",
			logger.String("bucket", cfg.BucketName),
			logger.String("location", cfg.Location),
		)

		// 海报需要被前端直接访问，设置公开读
		if cfg.PublicRead {
			if err := minioClient.SetBucketPolicy(ctx, cfg.BucketName, publicReadPolicy(cfg.BucketName)); err != nil {
				logger.Warn(ctx, "设置 Bucket 公开策略失败",
					logger.String("bucket", cfg.BucketName),
					logger.ErrorField("error", err),
				)
			}
		}
	}

	return &MinIOClient{client: minioClient, config: cfg}, nil
}

// UploadOptions 上传选项
type UploadOptions struct {
	PathPrefix  string            // 路径前缀，如 "posters/"
	FileName    string            // 原始文件名，用于扩展名校验与保留后缀
	ContentType string            // 客户端声明的类型，为空时按内容检测
	Metadata    map[string]string // 自定义元数据
}

// UploadResult 上传结果
type UploadResult struct {
	ObjectName  string // 对象完整路径，如 posters/uuid.jpg
	Size        int64
	ETag        string
	URL         string // 外部访问地址
	ContentType string
}

// Upload 校验文件大小与真实类型后上传
func (c *MinIOClient) Upload(ctx context.Context, reader io.Reader, fileSize int64, opts UploadOptions) (*UploadResult, error) {
	// 1. 验证文件大小
	if c.config.MaxFileSize > 0 && fileSize > c.config.MaxFileSize {
		return nil, fmt.Errorf("%w: %d bytes (max %d)", ErrFileTooLarge, fileSize, c.config.MaxFileSize)
	}

	// 2. 读取前 512 字节检测真实 MIME 类型
	head := make([]byte, 512)
	n, err := io.ReadFull(reader, head)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return nil, fmt.Errorf("读取文件内容失败: %w", err)
	}
	head = head[:n]
	detected := http.DetectContentType(head)

	contentType, err := resolveContentType(opts.ContentType, detected, opts.FileName, c.config.AllowedTypes)
	if err != nil {
		logger.Warn(ctx, "上传文件类型校验失败",
			logger.String("declared", opts.ContentType),
			logger.String("detected", detected),
			logger.String("file_name", opts.FileName),
			logger.ErrorField("error", err),
		)
		return nil, err
	}

	objectName := buildObjectName(opts.PathPrefix, opts.FileName, uuid.New().String())

	// 3. 上传（已读取的头部 + 剩余内容）
	uploadCtx := ctx
	if c.config.UploadTimeout > 0 {
		var cancel context.CancelFunc
		uploadCtx, cancel = context.WithTimeout(ctx, c.config.UploadTimeout)
		defer cancel()
	}

	info, err := c.client.PutObject(uploadCtx, c.config.BucketName, objectName,
		io.MultiReader(bytes.NewReader(head), reader), fileSize,
		minio.PutObjectOptions{ContentType: contentType, UserMetadata: opts.Metadata},
	)
	if err != nil {
		logger.Error(ctx, "MinIO 上传失败",
			logger.String("object", objectName),
			logger.Int64("size", fileSize),
			logger.ErrorField("error", err),
		)
		return nil, fmt.Errorf("上传失败: %w", err)
	}

	url := publicURL(c.config.BaseURL, c.config.BucketName, objectName)
	logger.Info(ctx, "MinIO 上传成功",
		logger.String("object", objectName),
		logger.String("url", url),
		logger.Int64("size", info.Size),
	)

	return &UploadResult{
		ObjectName:  objectName,
		Size:        info.Size,
		ETag:        info.ETag,
		URL:         url,
		ContentType: contentType,
	}, nil
}

// Delete 删除对象
func (c *MinIOClient) Delete(ctx context.Context, objectName string) error {
	if err := c.client.RemoveObject(ctx, c.config.BucketName, objectName, minio.RemoveObjectOptions{}); err != nil {
		logger.Error(ctx, "MinIO 删除失败",
			logger.String("object", objectName),
			logger.ErrorField("error", err),
		)
		return fmt.Errorf("删除失败: %w", err)
	}
	return nil
}

// ObjectNameFromURL 从外部访问地址反解对象名，非本 Bucket 地址返回 false
func (c *MinIOClient) ObjectNameFromURL(url string) (string, bool) {
	prefix := strings.TrimSuffix(c.config.BaseURL, "/") + "/" + c.config.BucketName + "/"
	if !strings.HasPrefix(url, prefix) {
		return "", false
	}
	return strings.TrimPrefix(url, prefix), true
}

// ==================== 辅助方法 ====================

func publicReadPolicy(bucket string) string {
	return fmt.Sprintf(`{
	"Version": "2012-10-17",
	"Statement": [{
		"Effect": "Allow",
		"Principal": {"AWS": ["*"]},
		"Action": ["s3:GetObject"],
		"Resource": ["arn:aws:s3:::%s/*"]
	}]
}`, bucket)
}

// buildObjectName 生成对象名：{prefix}/{id}{原始扩展名}
func buildObjectName(prefix, fileName, id string) string {
	name := id + strings.ToLower(filepath.Ext(fileName))
	if prefix = strings.Trim(prefix, "/"); prefix != "" {
		return prefix + "/" + name
	}
	return name
}

// publicURL 拼接外部访问地址
func publicURL(baseURL, bucket, objectName string) string {
	return fmt.Sprintf("%s/%s/%s", strings.TrimSuffix(baseURL, "/"), bucket, strings.TrimPrefix(objectName, "/"))
}

// resolveContentType 以检测结果为准确定最终类型，并校验白名单与扩展名
func resolveContentType(declared, detected, fileName string, allowed []string) (string, error) {
	contentType := detected
	if declared != "" && isContentTypeMatch(declared, detected) {
		contentType = declared
	}
	if len(allowed) > 0 && !containsFold(allowed, contentType) {
		return "", fmt.Errorf("%w: %s", ErrFileTypeNotAllow, detected)
	}
	if fileName != "" && !extensionMatches(fileName, detected) {
		return "", fmt.Errorf("%w: %s", ErrExtensionForged, detected)
	}
	return contentType, nil
}

// isContentTypeMatch image/jpg 与 image/jpeg 视为相同，其余要求完全一致
func isContentTypeMatch(declared, detected string) bool {
	declared = strings.ToLower(strings.TrimSpace(declared))
	detected = strings.ToLower(strings.TrimSpace(detected))
	if declared == detected {
		return true
	}
	isJPEG := func(s string) bool { return s == "image/jpg" || s == "image/jpeg" }
	return isJPEG(declared) && isJPEG(detected)
}

// extensionMatches 防止非图片文件改后缀伪装
func extensionMatches(fileName, detected string) bool {
	validExtensions := map[string][]string{
		"image/jpeg": {".jpg", ".jpeg"},
		"image/png":  {".png"},
		"image/gif":  {".gif"},
		"image/webp": {".webp"},
	}
	exts, ok := validExtensions[strings.ToLower(detected)]
	if !ok {
		return true
	}
	ext := strings.ToLower(filepath.Ext(fileName))
	for _, e := range exts {
		if ext == e {
			return true
		}
	}
	return false
}

func containsFold(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}
