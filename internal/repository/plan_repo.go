package repository

import (
	"gorm.io/gorm"

	"github.com/qs3c/predict_admin_server/internal/model"
)

type PlanRepository struct {
	db *gorm.DB
}

func NewPlanRepository(db *gorm.DB) *PlanRepository {
	return &PlanRepository{db: db}
}

func (r *PlanRepository) Create(plan *model.PricingPlan) error {
	return r.db.Create(plan).Error
}

func (r *PlanRepository) GetByID(id string) (*model.PricingPlan, error) {
	var plan model.PricingPlan
	err := r.db.Where("id = ?", id).First(&plan).Error
	if err != nil {
		return nil, err
	}
	return &plan, nil
}

// ListByApp 按价格升序
func (r *PlanRepository) ListByApp(appID string) ([]*model.PricingPlan, error) {
	var plans []*model.PricingPlan
	err := r.db.Where("app_id = ?", appID).Order("price ASC").Find(&plans).Error
	return plans, err
}

func (r *PlanRepository) List() ([]*model.PricingPlan, error) {
	var plans []*model.PricingPlan
	err := r.db.Order("app_id ASC, price ASC").Find(&plans).Error
	return plans, err
}

func (r *PlanRepository) Update(plan *model.PricingPlan) error {
	return r.db.Save(plan).Error
}

func (r *PlanRepository) Delete(id string) error {
	return r.db.Where("id = ?", id).Delete(&model.PricingPlan{}).Error
}
