package repository

import (
	"context"

	"github.com/yukikurage/sprint-tracker-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormSprintRepository is a GORM implementation of SprintRepository
type GormSprintRepository struct {
	db *gorm.DB
}

// NewSprintRepository creates a new SprintRepository
func NewSprintRepository(db *gorm.DB) SprintRepository {
	return &GormSprintRepository{db: db}
}

// Create creates a new sprint
func (r *GormSprintRepository) Create(ctx context.Context, sprint *models.Sprint) error {
	return r.db.WithContext(ctx).Create(sprint).Error
}

// FindByID finds a sprint by ID
func (r *GormSprintRepository) FindByID(ctx context.Context, id uint64) (*models.Sprint, error) {
	var sprint models.Sprint
	if err := r.db.WithContext(ctx).First(&sprint, id).Error; err != nil {
		return nil, err
	}
	return &sprint, nil
}

// FindByIDForUpdate finds a sprint by ID and holds a row lock on it until the
// surrounding transaction ends. Drivers without row locks ignore the clause.
func (r *GormSprintRepository) FindByIDForUpdate(ctx context.Context, id uint64) (*models.Sprint, error) {
	var sprint models.Sprint
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&sprint, id).Error
	if err != nil {
		return nil, err
	}
	return &sprint, nil
}

// ListByWorkspace retrieves sprints of a workspace, optionally restricted to one state.
// The state predicates mirror models.Sprint.State.
func (r *GormSprintRepository) ListByWorkspace(ctx context.Context, workspaceID uint64, state *models.SprintState) ([]models.Sprint, error) {
	query := r.db.WithContext(ctx).Where("workspace_id = ?", workspaceID)

	if state != nil {
		switch *state {
		case models.SprintClosed:
			query = query.Where("closed_at IS NOT NULL")
		case models.SprintActive:
			query = query.Where("closed_at IS NULL AND is_active = ?", true)
		case models.SprintPlanned:
			query = query.Where("closed_at IS NULL AND is_active = ?", false)
		}
	}

	var sprints []models.Sprint
	if err := query.Order("id ASC").Find(&sprints).Error; err != nil {
		return nil, err
	}
	return sprints, nil
}

// Update updates a sprint
func (r *GormSprintRepository) Update(ctx context.Context, sprint *models.Sprint) error {
	return r.db.WithContext(ctx).Save(sprint).Error
}

// DeleteByIDs hard deletes the given sprints. Tasks pointing at them are left in place.
func (r *GormSprintRepository) DeleteByIDs(ctx context.Context, ids []uint64) (int64, error) {
	result := r.db.WithContext(ctx).Where("id IN ?", ids).Delete(&models.Sprint{})
	return result.RowsAffected, result.Error
}
