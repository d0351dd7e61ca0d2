package repository

import (
	"sort"

	"gorm.io/gorm"

	"github.com/qs3c/predict_admin_server/internal/model"
)

type ApplicationRepository struct {
	db *gorm.DB
}

func NewApplicationRepository(db *gorm.DB) *ApplicationRepository {
	return &ApplicationRepository{db: db}
}

func (r *ApplicationRepository) Create(app *model.Application) error {
	return r.db.Create(app).Error
}

func (r *ApplicationRepository) GetByID(id string) (*model.Application, error) {
	var app model.Application
	err := r.db.Where("id = ?", id).First(&app).Error
	if err != nil {
		return nil, err
	}
	return &app, nil
}

// List 按名称排序
func (r *ApplicationRepository) List() ([]*model.Application, error) {
	var apps []*model.Application
	err := r.db.Order("name ASC").Find(&apps).Error
	return apps, err
}

// ListInMaintenance 当前处于维护中的应用
func (r *ApplicationRepository) ListInMaintenance() ([]*model.Application, error) {
	var apps []*model.Application
	err := r.db.Where("status = ?", true).Order("name ASC").Find(&apps).Error
	return apps, err
}

func (r *ApplicationRepository) Update(app *model.Application) error {
	return r.db.Save(app).Error
}

// UpdateStatus 在同一事务中更新状态并追加历史记录
func (r *ApplicationRepository) UpdateStatus(app *model.Application, entry *model.AppStatusHistory) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(app).Error; err != nil {
			return err
		}
		return tx.Create(entry).Error
	})
}

// Delete 删除应用及其历史记录与套餐
func (r *ApplicationRepository) Delete(id string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("app_id = ?", id).Delete(&model.AppStatusHistory{}).Error; err != nil {
			return err
		}
		if err := tx.Where("app_id = ?", id).Delete(&model.PricingPlan{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&model.Application{}).Error
	})
}

type StatusHistoryRepository struct {
	db *gorm.DB
}

func NewStatusHistoryRepository(db *gorm.DB) *StatusHistoryRepository {
	return &StatusHistoryRepository{db: db}
}

func (r *StatusHistoryRepository) Create(entry *model.AppStatusHistory) error {
	return r.db.Create(entry).Error
}

// ListByApp 按时间升序
func (r *StatusHistoryRepository) ListByApp(appID string) ([]*model.AppStatusHistory, error) {
	var entries []*model.AppStatusHistory
	if err := r.db.Where("app_id = ?", appID).Find(&entries).Error; err != nil {
		return nil, err
	}
	sortByTimestamp(entries)
	return entries, nil
}

// Latest 最近一条记录，没有记录时返回 gorm.ErrRecordNotFound
func (r *StatusHistoryRepository) Latest(appID string) (*model.AppStatusHistory, error) {
	entries, err := r.ListByApp(appID)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return entries[len(entries)-1], nil
}

// ListGroupedByApp 所有应用的历史，按应用分组、时间升序
func (r *StatusHistoryRepository) ListGroupedByApp() (map[string][]*model.AppStatusHistory, error) {
	var entries []*model.AppStatusHistory
	if err := r.db.Find(&entries).Error; err != nil {
		return nil, err
	}

	grouped := make(map[string][]*model.AppStatusHistory)
	for _, e := range entries {
		grouped[e.AppID] = append(grouped[e.AppID], e)
	}
	for _, list := range grouped {
		sortByTimestamp(list)
	}
	return grouped, nil
}

// 时间比较放在 Go 里做，不依赖各数据库的时间列排序语义
func sortByTimestamp(entries []*model.AppStatusHistory) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Timestamp.Before(entries[j].Timestamp)
	})
}
