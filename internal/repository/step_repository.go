package repository

import (
	"context"

	"github.com/yukikurage/sprint-tracker-api/internal/models"
	"gorm.io/gorm"
)

// GormStepRepository is a GORM implementation of StepRepository
type GormStepRepository struct {
	db *gorm.DB
}

// NewStepRepository creates a new StepRepository
func NewStepRepository(db *gorm.DB) StepRepository {
	return &GormStepRepository{db: db}
}

// Create creates a new step
func (r *GormStepRepository) Create(ctx context.Context, step *models.Step) error {
	return r.db.WithContext(ctx).Create(step).Error
}

// List retrieves every step ordered by ID
func (r *GormStepRepository) List(ctx context.Context) ([]models.Step, error) {
	var steps []models.Step
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&steps).Error; err != nil {
		return nil, err
	}
	return steps, nil
}

// CountByIDs counts how many of the given step IDs exist
func (r *GormStepRepository) CountByIDs(ctx context.Context, ids []uint64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Step{}).Where("id IN ?", ids).Count(&count).Error
	return count, err
}
