package repository

import (
	"gorm.io/gorm"

	"github.com/qs3c/predict_admin_server/internal/model"
)

type MediaRepository struct {
	db *gorm.DB
}

func NewMediaRepository(db *gorm.DB) *MediaRepository {
	return &MediaRepository{db: db}
}

func (r *MediaRepository) Create(item *model.MediaItem) error {
	return r.db.Create(item).Error
}

func (r *MediaRepository) GetByID(id string) (*model.MediaItem, error) {
	var item model.MediaItem
	err := r.db.Where("id = ?", id).First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// List 分页，typePrefix 例如 "image/"
func (r *MediaRepository) List(page, pageSize int, typePrefix string) ([]*model.MediaItem, int64, error) {
	var items []*model.MediaItem
	var total int64

	query := r.db.Model(&model.MediaItem{})
	if typePrefix != "" {
		query = query.Where("type LIKE ?", typePrefix+"%")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	if err := query.Order("created_at DESC").Offset(offset).Limit(pageSize).Find(&items).Error; err != nil {
		return nil, 0, err
	}

	return items, total, nil
}

func (r *MediaRepository) ListAll() ([]*model.MediaItem, error) {
	var items []*model.MediaItem
	err := r.db.Order("created_at DESC").Find(&items).Error
	return items, err
}

func (r *MediaRepository) Delete(id string) error {
	return r.db.Where("id = ?", id).Delete(&model.MediaItem{}).Error
}
