package repository

import (
	"sort"
	"time"

	"gorm.io/gorm"

	"github.com/qs3c/predict_admin_server/internal/model"
)

type MaintenanceEventRepository struct {
	db *gorm.DB
}

func NewMaintenanceEventRepository(db *gorm.DB) *MaintenanceEventRepository {
	return &MaintenanceEventRepository{db: db}
}

func (r *MaintenanceEventRepository) Create(event *model.MaintenanceEvent) error {
	return r.db.Create(event).Error
}

func (r *MaintenanceEventRepository) GetByID(id string) (*model.MaintenanceEvent, error) {
	var event model.MaintenanceEvent
	err := r.db.Where("id = ?", id).First(&event).Error
	if err != nil {
		return nil, err
	}
	return &event, nil
}

// List 最新的在前，limit<=0 表示不限
func (r *MaintenanceEventRepository) List(limit int) ([]*model.MaintenanceEvent, error) {
	var events []*model.MaintenanceEvent
	if err := r.db.Find(&events).Error; err != nil {
		return nil, err
	}
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Date.After(events[j].Date)
	})
	if limit > 0 && len(events) > limit {
		events = events[:limit]
	}
	return events, nil
}

// ListRecentOrOpen since 之后的事件，以及所有未解决的事件
func (r *MaintenanceEventRepository) ListRecentOrOpen(since time.Time) ([]*model.MaintenanceEvent, error) {
	all, err := r.List(0)
	if err != nil {
		return nil, err
	}
	events := make([]*model.MaintenanceEvent, 0, len(all))
	for _, e := range all {
		if !e.Date.Before(since) || e.Status != model.EventStatusResolved {
			events = append(events, e)
		}
	}
	return events, nil
}

func (r *MaintenanceEventRepository) Update(event *model.MaintenanceEvent) error {
	return r.db.Save(event).Error
}

func (r *MaintenanceEventRepository) Delete(id string) error {
	return r.db.Where("id = ?", id).Delete(&model.MaintenanceEvent{}).Error
}
