package repository

import (
	"gorm.io/gorm"

	"github.com/qs3c/predict_admin_server/internal/model"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(user *model.User) error {
	return r.db.Create(user).Error
}

func (r *UserRepository) GetByID(id string) (*model.User, error) {
	var user model.User
	err := r.db.Where("id = ?", id).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) GetByEmail(email string) (*model.User, error) {
	var user model.User
	err := r.db.Where("email = ?", email).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// List 分页，search 匹配邮箱或昵称
func (r *UserRepository) List(page, pageSize int, search string) ([]*model.User, int64, error) {
	var users []*model.User
	var total int64

	query := r.db.Model(&model.User{})
	if search != "" {
		like := "%" + search + "%"
		query = query.Where("email LIKE ? OR display_name LIKE ?", like, like)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	if err := query.Order("created_at DESC").Offset(offset).Limit(pageSize).Find(&users).Error; err != nil {
		return nil, 0, err
	}

	return users, total, nil
}

// ListAll 实时快照使用
func (r *UserRepository) ListAll() ([]*model.User, error) {
	var users []*model.User
	err := r.db.Order("created_at DESC").Find(&users).Error
	return users, err
}

func (r *UserRepository) Update(user *model.User) error {
	return r.db.Save(user).Error
}

// AddReferral 写入佣金流水并同步余额，二者在同一事务中
func (r *UserRepository) AddReferral(entry *model.ReferralEntry) (*model.User, error) {
	var user model.User
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", entry.UserID).First(&user).Error; err != nil {
			return err
		}
		if err := tx.Create(entry).Error; err != nil {
			return err
		}
		if err := tx.Model(&model.User{}).Where("id = ?", entry.UserID).
			Update("solde_referral", gorm.Expr("solde_referral + ?", entry.Amount)).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", entry.UserID).First(&user).Error
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// ListReferrals 最新的在前
func (r *UserRepository) ListReferrals(userID string) ([]*model.ReferralEntry, error) {
	var entries []*model.ReferralEntry
	err := r.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&entries).Error
	return entries, err
}

func (r *UserRepository) CreatePricing(p *model.UserPricing) error {
	return r.db.Create(p).Error
}

func (r *UserRepository) ListPricings(userID string) ([]*model.UserPricing, error) {
	var records []*model.UserPricing
	err := r.db.Where("user_id = ?", userID).Order("started_at DESC").Find(&records).Error
	return records, err
}
