package service

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/qs3c/predict_admin_server/config"
	"github.com/qs3c/predict_admin_server/internal/model"
	"github.com/qs3c/predict_admin_server/internal/model/dto"
	"github.com/qs3c/predict_admin_server/internal/pkg/oss"
	"github.com/qs3c/predict_admin_server/internal/pkg/pubsub"
	"github.com/qs3c/predict_admin_server/internal/repository"
)

var (
	ErrMediaNotFound        = errors.New("媒体不存在")
	ErrFileTooLarge         = errors.New("文件过大")
	ErrUnsupportedMediaType = errors.New("不支持的文件类型")
	ErrEmptyFile            = errors.New("文件为空")
	ErrStorageNotConfigured = errors.New("未配置对象存储")
)

type MediaService struct {
	repo      *repository.MediaRepository
	objects   ObjectStore
	cfg       *config.Config
	publisher *pubsub.Publisher
	log       *zap.Logger
	now       func() time.Time
}

// NewMediaService store 为 nil 时只能登记外部 URL
func NewMediaService(
	repo *repository.MediaRepository,
	store ObjectStore,
	cfg *config.Config,
	publisher *pubsub.Publisher,
	log *zap.Logger,
) *MediaService {
	return &MediaService{
		repo:      repo,
		objects:   store,
		cfg:       cfg,
		publisher: publisher,
		log:       orNop(log),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Upload 校验类型与大小后上传到媒体目录
func (s *MediaService) Upload(ctx context.Context, filename, contentType string, data []byte) (*model.MediaItem, error) {
	if len(data) == 0 {
		return nil, ErrEmptyFile
	}
	if limit := s.cfg.Upload.MaxSize; limit > 0 && int64(len(data)) > limit {
		return nil, ErrFileTooLarge
	}
	if !s.allowed(contentType) {
		return nil, ErrUnsupportedMediaType
	}

	ext := oss.ExtensionFor(contentType)
	if ext == "" {
		ext = strings.ToLower(filepath.Ext(filename))
	}
	return s.put(ctx, oss.FolderMedia, ext, contentType, data)
}

// StoreGenerated 保存 AI 生成的图片
func (s *MediaService) StoreGenerated(ctx context.Context, contentType string, data []byte) (*model.MediaItem, error) {
	if len(data) == 0 {
		return nil, ErrEmptyFile
	}
	return s.put(ctx, oss.FolderAIImages, oss.ExtensionFor(contentType), contentType, data)
}

// Register 登记外部 URL，不经过对象存储
func (s *MediaService) Register(ctx context.Context, req *dto.RegisterMediaRequest) (*model.MediaItem, error) {
	if !s.allowed(req.Type) {
		return nil, ErrUnsupportedMediaType
	}

	item := &model.MediaItem{URL: req.URL, Type: req.Type}
	if err := s.repo.Create(item); err != nil {
		return nil, err
	}

	publishChange(ctx, s.publisher, s.log, pubsub.CollectionMedia, pubsub.OpCreate, item.ID)
	return item, nil
}

func (s *MediaService) List(page, pageSize int, typePrefix string) ([]*model.MediaItem, int64, error) {
	return s.repo.List(page, pageSize, typePrefix)
}

// Delete 删除记录；对象删除失败只记录日志
func (s *MediaService) Delete(ctx context.Context, id string) error {
	item, err := s.repo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrMediaNotFound
		}
		return err
	}

	if item.ObjectKey != "" && s.objects != nil {
		if err := s.objects.Delete(item.ObjectKey); err != nil {
			s.log.Warn("delete media object failed", zap.String("key", item.ObjectKey), zap.Error(err))
		}
	}

	if err := s.repo.Delete(id); err != nil {
		return err
	}

	publishChange(ctx, s.publisher, s.log, pubsub.CollectionMedia, pubsub.OpDelete, id)
	return nil
}

func (s *MediaService) put(ctx context.Context, folder, ext, contentType string, data []byte) (*model.MediaItem, error) {
	if s.objects == nil {
		return nil, ErrStorageNotConfigured
	}

	key := oss.ObjectKey(folder, ext, s.now())
	url, err := s.objects.UploadFile(key, data, contentType)
	if err != nil {
		return nil, err
	}

	item := &model.MediaItem{
		URL:       url,
		Type:      contentType,
		ObjectKey: key,
		Size:      int64(len(data)),
	}
	if err := s.repo.Create(item); err != nil {
		// 记录写入失败时清理已上传的对象
		if delErr := s.objects.Delete(key); delErr != nil {
			s.log.Warn("cleanup uploaded object failed", zap.String("key", key), zap.Error(delErr))
		}
		return nil, err
	}

	publishChange(ctx, s.publisher, s.log, pubsub.CollectionMedia, pubsub.OpCreate, item.ID)
	return item, nil
}

func (s *MediaService) allowed(contentType string) bool {
	contentType = strings.ToLower(strings.TrimSpace(contentType))
	if contentType == "" {
		return false
	}
	types := s.cfg.Upload.AllowedTypes
	if len(types) == 0 {
		types = []string{"image/", "video/"}
	}
	for _, prefix := range types {
		if strings.HasPrefix(contentType, prefix) {
			return true
		}
	}
	return false
}
