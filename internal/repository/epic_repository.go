package repository

import (
	"context"

	"github.com/yukikurage/sprint-tracker-api/internal/database"
	"github.com/yukikurage/sprint-tracker-api/internal/models"
	"github.com/yukikurage/sprint-tracker-api/internal/utils"
	"gorm.io/gorm"
)

// GormEpicRepository is a GORM implementation of EpicRepository
type GormEpicRepository struct {
	db *gorm.DB
}

// NewEpicRepository creates a new EpicRepository
func NewEpicRepository(db *gorm.DB) EpicRepository {
	return &GormEpicRepository{db: db}
}

// Create creates a new epic
func (r *GormEpicRepository) Create(ctx context.Context, epic *models.Epic) error {
	return r.db.WithContext(ctx).Create(epic).Error
}

// FindByID finds an epic by ID
func (r *GormEpicRepository) FindByID(ctx context.Context, id uint64) (*models.Epic, error) {
	var epic models.Epic
	if err := r.db.WithContext(ctx).First(&epic, id).Error; err != nil {
		return nil, err
	}
	return &epic, nil
}

// ListByWorkspace retrieves the epics of a workspace with pagination
func (r *GormEpicRepository) ListByWorkspace(ctx context.Context, workspaceID uint64, page utils.PaginationParams) ([]models.Epic, int64, error) {
	var epics []models.Epic
	query := r.db.WithContext(ctx).Model(&models.Epic{}).Where("workspace_id = ?", workspaceID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := query.Order("id ASC").Scopes(database.Paginate(page)).Find(&epics).Error; err != nil {
		return nil, 0, err
	}
	return epics, total, nil
}

// Update updates an epic
func (r *GormEpicRepository) Update(ctx context.Context, epic *models.Epic) error {
	return r.db.WithContext(ctx).Save(epic).Error
}

// Delete soft deletes an epic
func (r *GormEpicRepository) Delete(ctx context.Context, id uint64) error {
	return r.db.WithContext(ctx).Delete(&models.Epic{}, id).Error
}
