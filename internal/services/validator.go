package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/yukikurage/sprint-tracker-api/internal/repository"
	"gorm.io/gorm"
)

// ReferentialValidator checks that the step, sprint and epic a task points at
// belong to the task's workspace. Every task write path goes through it.
type ReferentialValidator struct {
	repos *repository.Repositories
}

// NewReferentialValidator creates a validator reading through repos, which may be
// a transaction-bound bundle.
func NewReferentialValidator(repos *repository.Repositories) *ReferentialValidator {
	return &ReferentialValidator{repos: repos}
}

// ValidateStepInWorkspace fails unless the step is bound to the workspace.
func (v *ReferentialValidator) ValidateStepInWorkspace(ctx context.Context, stepID, workspaceID uint64) error {
	if _, err := v.repos.Workspaces.FindStep(ctx, workspaceID, stepID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrStepNotInWorkspace
		}
		return fmt.Errorf("failed to find workspace step: %w", err)
	}
	return nil
}

// ValidateSprintInWorkspace fails if the sprint is missing or owned by another workspace.
func (v *ReferentialValidator) ValidateSprintInWorkspace(ctx context.Context, sprintID, workspaceID uint64) error {
	sprint, err := v.repos.Sprints.FindByID(ctx, sprintID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrSprintNotFound
		}
		return fmt.Errorf("failed to find sprint: %w", err)
	}
	if sprint.WorkspaceID != workspaceID {
		return ErrSprintNotInWorkspace
	}
	return nil
}

// ValidateEpicInWorkspace is a no-op for a nil epicID.
func (v *ReferentialValidator) ValidateEpicInWorkspace(ctx context.Context, epicID *uint64, workspaceID uint64) error {
	if epicID == nil {
		return nil
	}

	epic, err := v.repos.Epics.FindByID(ctx, *epicID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrEpicNotFound
		}
		return fmt.Errorf("failed to find epic: %w", err)
	}
	if epic.WorkspaceID != workspaceID {
		return ErrEpicNotInWorkspace
	}
	return nil
}

// TaskRefs are the workspace-scoped references carried by a task.
type TaskRefs struct {
	WorkspaceID uint64
	StepID      uint64
	SprintID    *uint64
	EpicID      *uint64
}

// ValidateTaskRefs runs every check that applies to refs.
func (v *ReferentialValidator) ValidateTaskRefs(ctx context.Context, refs TaskRefs) error {
	if err := v.ValidateStepInWorkspace(ctx, refs.StepID, refs.WorkspaceID); err != nil {
		return err
	}
	if refs.SprintID != nil {
		if err := v.ValidateSprintInWorkspace(ctx, *refs.SprintID, refs.WorkspaceID); err != nil {
			return err
		}
	}
	return v.ValidateEpicInWorkspace(ctx, refs.EpicID, refs.WorkspaceID)
}
