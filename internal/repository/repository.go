package repository

import (
	"context"

	"github.com/yukikurage/sprint-tracker-api/internal/models"
	"github.com/yukikurage/sprint-tracker-api/internal/utils"
	"gorm.io/gorm"
)

// WorkspaceRepository defines the interface for workspace data access
type WorkspaceRepository interface {
	// Create creates a workspace together with its ordered steps
	Create(ctx context.Context, ws *models.Workspace, steps []models.WorkspaceStep) error

	// FindByID finds a workspace by ID with optional preloading
	FindByID(ctx context.Context, id uint64, preload ...string) (*models.Workspace, error)

	// List retrieves workspaces with pagination
	List(ctx context.Context, page utils.PaginationParams) ([]models.Workspace, int64, error)

	// UpdateDetails updates the user-editable columns. Sequence counters are never written.
	UpdateDetails(ctx context.Context, ws *models.Workspace) error

	// ReplaceSteps deletes every step binding of the workspace and recreates them
	ReplaceSteps(ctx context.Context, workspaceID uint64, steps []models.WorkspaceStep) error

	// Delete soft deletes a workspace and removes its step bindings
	Delete(ctx context.Context, id uint64) error

	// IncrementSequence atomically bumps the counter column and returns the
	// workspace as read after the increment, inside the caller's transaction
	IncrementSequence(ctx context.Context, id uint64, kind models.SequenceKind) (*models.Workspace, error)

	// FindStep finds the binding of a step to a workspace
	FindStep(ctx context.Context, workspaceID, stepID uint64) (*models.WorkspaceStep, error)

	// FinalStep returns the binding with the highest order, or gorm.ErrRecordNotFound when none exist
	FinalStep(ctx context.Context, workspaceID uint64) (*models.WorkspaceStep, error)

	// CountDependents counts tasks, epics and sprints that belong to the workspace
	CountDependents(ctx context.Context, id uint64) (int64, error)
}

// StepRepository defines the interface for step data access
type StepRepository interface {
	// Create creates a new step
	Create(ctx context.Context, step *models.Step) error

	// List retrieves every step ordered by ID
	List(ctx context.Context) ([]models.Step, error)

	// CountByIDs counts how many of the given step IDs exist
	CountByIDs(ctx context.Context, ids []uint64) (int64, error)
}

// TaskRepository defines the interface for task data access
type TaskRepository interface {
	// Create creates a new task
	Create(ctx context.Context, task *models.Task) error

	// FindByID finds a task by ID with optional preloading
	FindByID(ctx context.Context, id uint64, preload ...string) (*models.Task, error)

	// FindByIDForUpdate finds a task by ID and locks its row for the rest of the transaction
	FindByIDForUpdate(ctx context.Context, id uint64) (*models.Task, error)

	// List retrieves tasks with filtering and pagination
	List(ctx context.Context, filter TaskFilter) ([]models.Task, int64, error)

	// Update updates a task
	Update(ctx context.Context, task *models.Task) error

	// UpdateStep writes only the step_id column of a task
	UpdateStep(ctx context.Context, id uint64, stepID uint64) error

	// Delete soft deletes a task
	Delete(ctx context.Context, id uint64) error

	// MigrateSprint moves every task of a sprint whose step differs from
	// excludeStepID (when set) to targetSprintID (nil = backlog) in one statement
	MigrateSprint(ctx context.Context, sprintID uint64, excludeStepID *uint64, targetSprintID *uint64) (int64, error)

	// MoveByKeys sets the step of the workspace's tasks identified by display key
	MoveByKeys(ctx context.Context, workspaceID uint64, keys []string, stepID uint64) (int64, error)

	// CountByEpic counts tasks attached to an epic
	CountByEpic(ctx context.Context, epicID uint64) (int64, error)
}

// TaskFilter holds filtering options for listing tasks
type TaskFilter struct {
	WorkspaceID uint64
	SprintID    *uint64
	BacklogOnly bool
	EpicID      *uint64
	StepID      *uint64
	// Pagination with a zero Limit returns every match
	Pagination  utils.PaginationParams
}

// EpicRepository defines the interface for epic data access
type EpicRepository interface {
	// Create creates a new epic
	Create(ctx context.Context, epic *models.Epic) error

	// FindByID finds an epic by ID
	FindByID(ctx context.Context, id uint64) (*models.Epic, error)

	// ListByWorkspace retrieves the epics of a workspace with pagination
	ListByWorkspace(ctx context.Context, workspaceID uint64, page utils.PaginationParams) ([]models.Epic, int64, error)

	// Update updates an epic
	Update(ctx context.Context, epic *models.Epic) error

	// Delete soft deletes an epic
	Delete(ctx context.Context, id uint64) error
}

// SprintRepository defines the interface for sprint data access
type SprintRepository interface {
	// Create creates a new sprint
	Create(ctx context.Context, sprint *models.Sprint) error

	// FindByID finds a sprint by ID
	FindByID(ctx context.Context, id uint64) (*models.Sprint, error)

	// FindByIDForUpdate finds a sprint by ID and locks its row for the rest of the transaction
	FindByIDForUpdate(ctx context.Context, id uint64) (*models.Sprint, error)

	// ListByWorkspace retrieves sprints of a workspace, optionally restricted to one state
	ListByWorkspace(ctx context.Context, workspaceID uint64, state *models.SprintState) ([]models.Sprint, error)

	// Update updates a sprint
	Update(ctx context.Context, sprint *models.Sprint) error

	// DeleteByIDs hard deletes the given sprints and returns how many rows were removed
	DeleteByIDs(ctx context.Context, ids []uint64) (int64, error)
}

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(ctx context.Context, user *models.User) error

	// FindByID finds a user by ID
	FindByID(ctx context.Context, id uint64) (*models.User, error)

	// FindByUsername finds a user by username
	FindByUsername(ctx context.Context, username string) (*models.User, error)
}

// Repositories bundles every repository over one *gorm.DB handle, which is
// either the pool or an open transaction.
type Repositories struct {
	db *gorm.DB

	Workspaces WorkspaceRepository
	Steps      StepRepository
	Tasks      TaskRepository
	Epics      EpicRepository
	Sprints    SprintRepository
	Users      UserRepository
}

// New creates the repository bundle backed by db
func New(db *gorm.DB) *Repositories {
	return &Repositories{
		db:         db,
		Workspaces: NewWorkspaceRepository(db),
		Steps:      NewStepRepository(db),
		Tasks:      NewTaskRepository(db),
		Epics:      NewEpicRepository(db),
		Sprints:    NewSprintRepository(db),
		Users:      NewUserRepository(db),
	}
}

// Transaction runs fn with a bundle bound to a single database transaction.
// Returning an error from fn rolls back every statement fn issued.
func (r *Repositories) Transaction(ctx context.Context, fn func(tx *Repositories) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(New(tx))
	})
}

// Ping checks connectivity to the store
func (r *Repositories) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
