package repository

import (
	"strings"

	"gorm.io/gorm"

	"github.com/qs3c/predict_admin_server/internal/model"
)

type AdminRepository struct {
	db *gorm.DB
}

func NewAdminRepository(db *gorm.DB) *AdminRepository {
	return &AdminRepository{db: db}
}

func (r *AdminRepository) Create(admin *model.Admin) error {
	return r.db.Create(admin).Error
}

func (r *AdminRepository) GetByID(id string) (*model.Admin, error) {
	var admin model.Admin
	err := r.db.Where("id = ?", id).First(&admin).Error
	if err != nil {
		return nil, err
	}
	return &admin, nil
}

func (r *AdminRepository) GetByEmail(email string) (*model.Admin, error) {
	var admin model.Admin
	err := r.db.Where("email = ?", strings.ToLower(email)).First(&admin).Error
	if err != nil {
		return nil, err
	}
	return &admin, nil
}

func (r *AdminRepository) GetByGithubLogin(login string) (*model.Admin, error) {
	var admin model.Admin
	err := r.db.Where("github_login = ?", strings.ToLower(login)).First(&admin).Error
	if err != nil {
		return nil, err
	}
	return &admin, nil
}

func (r *AdminRepository) ExistsByEmail(email string) (bool, error) {
	var count int64
	err := r.db.Model(&model.Admin{}).Where("email = ?", strings.ToLower(email)).Count(&count).Error
	return count > 0, err
}
