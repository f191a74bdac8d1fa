package repository

import (
	"motelaudit-backend/internal/report/domain"

	"gorm.io/gorm"
)

type MotelRepository interface {
	List() ([]domain.Motel, error)
}

type motelRepository struct {
	db *gorm.DB
}

func NewMotelRepository(db *gorm.DB) MotelRepository {
	return &motelRepository{db: db}
}

func (r *motelRepository) List() ([]domain.Motel, error) {
	var motels []domain.Motel
	if err := r.db.Order("motel_name ASC").Find(&motels).Error; err != nil {
		return nil, err
	}
	return motels, nil
}
