package repository

import (
	"examroom_backend/internal/model"

	"gorm.io/gorm"
)

type PackageRepository struct {
	DB *gorm.DB
}

func NewPackageRepository(db *gorm.DB) *PackageRepository {
	return &PackageRepository{DB: db}
}

func (r *PackageRepository) FindByID(id string) (*model.Package, error) {
	var p model.Package
	err := r.DB.Where("id = ?", id).First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PackageRepository) ListAll() ([]model.Package, error) {
	var ps []model.Package
	err := r.DB.Order("price asc").Find(&ps).Error
	return ps, err
}
