package repository

import (
	"motelaudit-backend/internal/report/domain"

	"gorm.io/gorm"
)

type IngestRunRepository interface {
	Save(run *domain.IngestRun) error
	ListRecent(limit int) ([]domain.IngestRun, error)
}

type ingestRunRepository struct {
	db *gorm.DB
}

func NewIngestRunRepository(db *gorm.DB) IngestRunRepository {
	return &ingestRunRepository{db: db}
}

func (r *ingestRunRepository) Save(run *domain.IngestRun) error {
	return r.db.Save(run).Error
}

func (r *ingestRunRepository) ListRecent(limit int) ([]domain.IngestRun, error) {
	if limit < 1 {
		limit = 20
	}
	var runs []domain.IngestRun
	if err := r.db.Order("started_at DESC").Limit(limit).Find(&runs).Error; err != nil {
		return nil, err
	}
	return runs, nil
}
