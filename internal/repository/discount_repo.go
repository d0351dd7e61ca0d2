package repository

import (
	"gorm.io/gorm"

	"github.com/qs3c/predict_admin_server/internal/model"
)

type DiscountRepository struct {
	db *gorm.DB
}

func NewDiscountRepository(db *gorm.DB) *DiscountRepository {
	return &DiscountRepository{db: db}
}

func (r *DiscountRepository) Create(code *model.DiscountCode) error {
	return r.db.Create(code).Error
}

func (r *DiscountRepository) GetByID(id string) (*model.DiscountCode, error) {
	var code model.DiscountCode
	err := r.db.Where("id = ?", id).First(&code).Error
	if err != nil {
		return nil, err
	}
	return &code, nil
}

func (r *DiscountRepository) GetByCode(code string) (*model.DiscountCode, error) {
	var d model.DiscountCode
	err := r.db.Where("code = ?", code).First(&d).Error
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// ExistsByCode excludeID 非空时排除自身（更新场景）
func (r *DiscountRepository) ExistsByCode(code, excludeID string) (bool, error) {
	var count int64
	query := r.db.Model(&model.DiscountCode{}).Where("code = ?", code)
	if excludeID != "" {
		query = query.Where("id <> ?", excludeID)
	}
	err := query.Count(&count).Error
	return count > 0, err
}

// List 最新开始的在前
func (r *DiscountRepository) List() ([]*model.DiscountCode, error) {
	var codes []*model.DiscountCode
	err := r.db.Order("debut_date DESC").Find(&codes).Error
	return codes, err
}

func (r *DiscountRepository) Update(code *model.DiscountCode) error {
	return r.db.Save(code).Error
}

func (r *DiscountRepository) Delete(id string) error {
	return r.db.Where("id = ?", id).Delete(&model.DiscountCode{}).Error
}
