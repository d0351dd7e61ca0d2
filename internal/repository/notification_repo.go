package repository

import (
	"gorm.io/gorm"

	"github.com/qs3c/predict_admin_server/internal/model"
)

type NotificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

func (r *NotificationRepository) Create(n *model.Notification) error {
	return r.db.Create(n).Error
}

func (r *NotificationRepository) GetByID(id string) (*model.Notification, error) {
	var n model.Notification
	err := r.db.Where("id = ?", id).First(&n).Error
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func (r *NotificationRepository) List(page, pageSize int) ([]*model.Notification, int64, error) {
	var items []*model.Notification
	var total int64

	query := r.db.Model(&model.Notification{})
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	if err := query.Order("created_at DESC").Offset(offset).Limit(pageSize).Find(&items).Error; err != nil {
		return nil, 0, err
	}

	return items, total, nil
}

func (r *NotificationRepository) ListAll() ([]*model.Notification, error) {
	var items []*model.Notification
	err := r.db.Order("created_at DESC").Find(&items).Error
	return items, err
}

func (r *NotificationRepository) Update(n *model.Notification) error {
	return r.db.Save(n).Error
}

func (r *NotificationRepository) UpdateFields(id string, fields map[string]interface{}) error {
	return r.db.Model(&model.Notification{}).Where("id = ?", id).Updates(fields).Error
}
