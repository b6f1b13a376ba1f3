package repository

import (
	"context"
	"fmt"

	"github.com/yukikurage/sprint-tracker-api/internal/database"
	"github.com/yukikurage/sprint-tracker-api/internal/models"
	"github.com/yukikurage/sprint-tracker-api/internal/utils"
	"gorm.io/gorm"
)

// GormWorkspaceRepository is a GORM implementation of WorkspaceRepository
type GormWorkspaceRepository struct {
	db *gorm.DB
}

// NewWorkspaceRepository creates a new WorkspaceRepository
func NewWorkspaceRepository(db *gorm.DB) WorkspaceRepository {
	return &GormWorkspaceRepository{db: db}
}

// Create creates a workspace and its step bindings in a transaction
func (r *GormWorkspaceRepository) Create(ctx context.Context, ws *models.Workspace, steps []models.WorkspaceStep) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Steps").Create(ws).Error; err != nil {
			return err
		}
		return createSteps(tx, ws.ID, steps)
	})
}

// FindByID finds a workspace by ID with optional preloading
func (r *GormWorkspaceRepository) FindByID(ctx context.Context, id uint64, preload ...string) (*models.Workspace, error) {
	var ws models.Workspace
	query := r.db.WithContext(ctx)

	for _, p := range preload {
		if p == "Steps" {
			query = query.Preload("Steps", func(db *gorm.DB) *gorm.DB {
				return db.Order("step_order ASC")
			})
			continue
		}
		query = query.Preload(p)
	}

	if err := query.First(&ws, id).Error; err != nil {
		return nil, err
	}
	return &ws, nil
}

// List retrieves workspaces with pagination
func (r *GormWorkspaceRepository) List(ctx context.Context, page utils.PaginationParams) ([]models.Workspace, int64, error) {
	var workspaces []models.Workspace
	query := r.db.WithContext(ctx).Model(&models.Workspace{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := query.Order("id ASC").Scopes(database.Paginate(page)).Find(&workspaces).Error; err != nil {
		return nil, 0, err
	}
	return workspaces, total, nil
}

// UpdateDetails updates the user-editable columns of a workspace
func (r *GormWorkspaceRepository) UpdateDetails(ctx context.Context, ws *models.Workspace) error {
	return r.db.WithContext(ctx).
		Model(ws).
		Select("name", "prefix", "methodology", "team_id").
		Updates(ws).Error
}

// ReplaceSteps deletes every step binding of the workspace and recreates them.
// Callers must run it inside a transaction so readers never see an empty workflow.
func (r *GormWorkspaceRepository) ReplaceSteps(ctx context.Context, workspaceID uint64, steps []models.WorkspaceStep) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("workspace_id = ?", workspaceID).Delete(&models.WorkspaceStep{}).Error; err != nil {
		return err
	}
	return createSteps(db, workspaceID, steps)
}

// Delete soft deletes a workspace and removes its step bindings
func (r *GormWorkspaceRepository) Delete(ctx context.Context, id uint64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("workspace_id = ?", id).Delete(&models.WorkspaceStep{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Workspace{}, id).Error
	})
}

// IncrementSequence bumps the counter with a single UPDATE, which takes the row
// lock for the rest of the transaction, then reads the row back.
func (r *GormWorkspaceRepository) IncrementSequence(ctx context.Context, id uint64, kind models.SequenceKind) (*models.Workspace, error) {
	column := kind.Column()
	db := r.db.WithContext(ctx)

	result := db.Model(&models.Workspace{}).
		Where("id = ?", id).
		UpdateColumn(column, gorm.Expr(fmt.Sprintf("%s + 1", column)))
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}

	var ws models.Workspace
	if err := db.Select("id", "prefix", "next_task_seq", "next_epic_seq").First(&ws, id).Error; err != nil {
		return nil, err
	}
	return &ws, nil
}

// FindStep finds the binding of a step to a workspace
func (r *GormWorkspaceRepository) FindStep(ctx context.Context, workspaceID, stepID uint64) (*models.WorkspaceStep, error) {
	var binding models.WorkspaceStep
	if err := r.db.WithContext(ctx).
		Where("workspace_id = ? AND step_id = ?", workspaceID, stepID).
		First(&binding).Error; err != nil {
		return nil, err
	}
	return &binding, nil
}

// FinalStep returns the binding with the highest order
func (r *GormWorkspaceRepository) FinalStep(ctx context.Context, workspaceID uint64) (*models.WorkspaceStep, error) {
	var binding models.WorkspaceStep
	if err := r.db.WithContext(ctx).
		Where("workspace_id = ?", workspaceID).
		Order("step_order DESC").
		First(&binding).Error; err != nil {
		return nil, err
	}
	return &binding, nil
}

// CountDependents counts tasks, epics and sprints of the workspace
func (r *GormWorkspaceRepository) CountDependents(ctx context.Context, id uint64) (int64, error) {
	db := r.db.WithContext(ctx)
	var total int64

	for _, model := range []interface{}{&models.Task{}, &models.Epic{}, &models.Sprint{}} {
		var count int64
		if err := db.Model(model).Where("workspace_id = ?", id).Count(&count).Error; err != nil {
			return 0, err
		}
		total += count
	}
	return total, nil
}

func createSteps(db *gorm.DB, workspaceID uint64, steps []models.WorkspaceStep) error {
	if len(steps) == 0 {
		return nil
	}

	bindings := make([]models.WorkspaceStep, len(steps))
	for i, s := range steps {
		bindings[i] = models.WorkspaceStep{
			WorkspaceID: workspaceID,
			StepID:      s.StepID,
			Order:       s.Order,
		}
	}
	return db.Omit("Step").Create(&bindings).Error
}
