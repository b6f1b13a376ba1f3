package repository

import (
	"context"

	"github.com/yukikurage/sprint-tracker-api/internal/database"
	"github.com/yukikurage/sprint-tracker-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormTaskRepository is a GORM implementation of TaskRepository
type GormTaskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new TaskRepository
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &GormTaskRepository{db: db}
}

// Create creates a new task
func (r *GormTaskRepository) Create(ctx context.Context, task *models.Task) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(task).Error
}

// FindByID finds a task by ID with optional preloading
func (r *GormTaskRepository) FindByID(ctx context.Context, id uint64, preload ...string) (*models.Task, error) {
	var task models.Task
	query := r.db.WithContext(ctx)

	// Apply preloading if specified
	for _, p := range preload {
		query = query.Preload(p)
	}

	if err := query.First(&task, id).Error; err != nil {
		return nil, err
	}

	return &task, nil
}

// FindByIDForUpdate finds a task by ID and holds a row lock on it until the
// surrounding transaction ends
func (r *GormTaskRepository) FindByIDForUpdate(ctx context.Context, id uint64) (*models.Task, error) {
	var task models.Task
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&task, id).Error
	if err != nil {
		return nil, err
	}
	return &task, nil
}

// List retrieves tasks with filtering and pagination
func (r *GormTaskRepository) List(ctx context.Context, filter TaskFilter) ([]models.Task, int64, error) {
	var tasks []models.Task

	query := r.db.WithContext(ctx).Model(&models.Task{}).Where("tasks.workspace_id = ?", filter.WorkspaceID)

	// Apply filters
	if filter.BacklogOnly {
		query = query.Where("tasks.sprint_id IS NULL")
	} else if filter.SprintID != nil {
		query = query.Where("tasks.sprint_id = ?", *filter.SprintID)
	}
	if filter.EpicID != nil {
		query = query.Where("tasks.epic_id = ?", *filter.EpicID)
	}
	if filter.StepID != nil {
		query = query.Where("tasks.step_id = ?", *filter.StepID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	listQuery := query.Order("tasks.id ASC")
	if filter.Pagination.Limit > 0 {
		listQuery = listQuery.Scopes(database.Paginate(filter.Pagination))
	}

	if err := listQuery.Find(&tasks).Error; err != nil {
		return nil, 0, err
	}

	return tasks, total, nil
}

// Update updates a task
func (r *GormTaskRepository) Update(ctx context.Context, task *models.Task) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(task).Error
}

// UpdateStep moves a task to another step without touching its other columns
func (r *GormTaskRepository) UpdateStep(ctx context.Context, id uint64, stepID uint64) error {
	return r.db.WithContext(ctx).
		Model(&models.Task{}).
		Where("id = ?", id).
		Update("step_id", stepID).Error
}

// Delete soft deletes a task
func (r *GormTaskRepository) Delete(ctx context.Context, id uint64) error {
	return r.db.WithContext(ctx).Delete(&models.Task{}, id).Error
}

// MigrateSprint reassigns the unfinished tasks of a sprint with one bulk UPDATE.
// A concurrent second call finds no matching rows and reports zero.
func (r *GormTaskRepository) MigrateSprint(ctx context.Context, sprintID uint64, excludeStepID *uint64, targetSprintID *uint64) (int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Task{}).Where("sprint_id = ?", sprintID)
	if excludeStepID != nil {
		query = query.Where("step_id <> ?", *excludeStepID)
	}

	var value interface{} = gorm.Expr("NULL")
	if targetSprintID != nil {
		value = *targetSprintID
	}

	result := query.Update("sprint_id", value)
	return result.RowsAffected, result.Error
}

// MoveByKeys sets the step of the workspace's tasks identified by display key
func (r *GormTaskRepository) MoveByKeys(ctx context.Context, workspaceID uint64, keys []string, stepID uint64) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Task{}).
		Where("workspace_id = ? AND id_task IN ?", workspaceID, keys).
		Update("step_id", stepID)
	return result.RowsAffected, result.Error
}

// CountByEpic counts tasks attached to an epic
func (r *GormTaskRepository) CountByEpic(ctx context.Context, epicID uint64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Task{}).Where("epic_id = ?", epicID).Count(&count).Error
	return count, err
}
