package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yukikurage/sprint-tracker-api/internal/logging"
	"github.com/yukikurage/sprint-tracker-api/internal/models"
	"github.com/yukikurage/sprint-tracker-api/internal/repository"
	"gorm.io/gorm"
)

// MigrationTarget names where unfinished tasks go when a sprint closes.
type MigrationTarget string

const (
	MigrateToBacklog MigrationTarget = "backlog"
	MigrateToSprint  MigrationTarget = "sprint"
)

// Migration describes the close-time destination of unfinished tasks.
// The zero value moves them to the backlog.
type Migration struct {
	To       MigrationTarget
	SprintID *uint64
}

// SprintService drives the sprint lifecycle: planned, active, closed.
// Closed is terminal.
type SprintService struct {
	repos *repository.Repositories
	clock Clock
}

// NewSprintService creates a new SprintService. A nil clock uses the system clock.
func NewSprintService(repos *repository.Repositories, clock Clock) *SprintService {
	if clock == nil {
		clock = SystemClock{}
	}
	return &SprintService{
		repos: repos,
		clock: clock,
	}
}

// CreateSprintInput represents input for creating a sprint
type CreateSprintInput struct {
	WorkspaceID uint64
	Name        string
	Goal        string
	StartDate   *time.Time
	EndDate     *time.Time
	ActivateNow bool
	ActivatedAt *time.Time
}

// UpdateSprintInput represents input for updating a sprint
type UpdateSprintInput struct {
	Name           *string
	Goal           *string
	StartDate      *time.Time
	EndDate        *time.Time
	ClearStartDate bool
	ClearEndDate   bool
	IsActive       *bool
}

// CreateSprint creates a planned sprint, or an active one when ActivateNow is set
func (s *SprintService) CreateSprint(ctx context.Context, input CreateSprintInput) (*models.Sprint, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrNameRequired
	}

	if _, err := s.repos.Workspaces.FindByID(ctx, input.WorkspaceID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWorkspaceNotFound
		}
		return nil, fmt.Errorf("failed to find workspace: %w", err)
	}

	sprint := &models.Sprint{
		WorkspaceID: input.WorkspaceID,
		Name:        name,
		Goal:        input.Goal,
		StartDate:   input.StartDate,
		EndDate:     input.EndDate,
	}
	if err := checkDateOrder(sprint); err != nil {
		return nil, err
	}

	if input.ActivateNow {
		if !sprint.HasDates() {
			return nil, ErrActivationNeedsDates
		}
		sprint.IsActive = true
		if input.ActivatedAt != nil {
			sprint.ActivatedAt = input.ActivatedAt
		} else {
			now := s.clock.Now()
			sprint.ActivatedAt = &now
		}
	}

	if err := s.repos.Sprints.Create(ctx, sprint); err != nil {
		return nil, fmt.Errorf("failed to create sprint: %w", err)
	}

	logging.Logger.WithFields(logrus.Fields{
		"sprint_id":    sprint.ID,
		"workspace_id": sprint.WorkspaceID,
		"state":        sprint.State(),
	}).Info("sprint created")

	return sprint, nil
}

// GetSprint returns a sprint by ID
func (s *SprintService) GetSprint(ctx context.Context, sprintID uint64) (*models.Sprint, error) {
	return findSprint(ctx, s.repos, sprintID)
}

// ListSprints returns the sprints of a workspace, optionally only those in state
func (s *SprintService) ListSprints(ctx context.Context, workspaceID uint64, state *models.SprintState) ([]models.Sprint, error) {
	if _, err := s.repos.Workspaces.FindByID(ctx, workspaceID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWorkspaceNotFound
		}
		return nil, fmt.Errorf("failed to find workspace: %w", err)
	}

	sprints, err := s.repos.Sprints.ListByWorkspace(ctx, workspaceID, state)
	if err != nil {
		return nil, fmt.Errorf("failed to list sprints: %w", err)
	}
	return sprints, nil
}

// UpdateSprint edits a sprint. Setting IsActive to true follows the same rules as
// ActivateSprint; setting it to false returns an open sprint to planned.
func (s *SprintService) UpdateSprint(ctx context.Context, sprintID uint64, input UpdateSprintInput) (*models.Sprint, error) {
	var sprint *models.Sprint
	err := s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		var err error
		sprint, err = findSprintForUpdate(ctx, tx, sprintID)
		if err != nil {
			return err
		}

		if input.Name != nil {
			name := strings.TrimSpace(*input.Name)
			if name == "" {
				return ErrNameRequired
			}
			sprint.Name = name
		}
		if input.Goal != nil {
			sprint.Goal = *input.Goal
		}
		if input.ClearStartDate {
			sprint.StartDate = nil
		} else if input.StartDate != nil {
			sprint.StartDate = input.StartDate
		}
		if input.ClearEndDate {
			sprint.EndDate = nil
		} else if input.EndDate != nil {
			sprint.EndDate = input.EndDate
		}
		if err := checkDateOrder(sprint); err != nil {
			return err
		}

		if input.IsActive != nil {
			if *input.IsActive {
				if err := s.activate(sprint); err != nil {
					return err
				}
			} else if sprint.State() == models.SprintActive {
				sprint.IsActive = false
			}
		}

		// An active sprint keeps both dates.
		if sprint.State() == models.SprintActive && !sprint.HasDates() {
			return ErrSprintDatesRequired
		}

		if err := tx.Sprints.Update(ctx, sprint); err != nil {
			return fmt.Errorf("failed to update sprint: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return sprint, nil
}

// ActivateSprint moves a planned sprint to active. Re-activating an active sprint
// keeps its original activation time.
func (s *SprintService) ActivateSprint(ctx context.Context, sprintID uint64) (*models.Sprint, error) {
	var sprint *models.Sprint
	err := s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		var err error
		sprint, err = findSprintForUpdate(ctx, tx, sprintID)
		if err != nil {
			return err
		}
		if err := s.activate(sprint); err != nil {
			return err
		}
		if err := tx.Sprints.Update(ctx, sprint); err != nil {
			return fmt.Errorf("failed to activate sprint: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logging.Logger.WithFields(logrus.Fields{
		"sprint_id":    sprint.ID,
		"activated_at": sprint.ActivatedAt,
	}).Info("sprint activated")

	return sprint, nil
}

// CloseSprint closes a sprint and moves its unfinished tasks, those not in the
// workspace's final step, to the migration target. The bulk move and the sprint
// update commit together. Closing an already closed sprint keeps its close time
// and only moves tasks that still match.
func (s *SprintService) CloseSprint(ctx context.Context, sprintID uint64, migration Migration) (*models.Sprint, int64, error) {
	var (
		sprint *models.Sprint
		moved  int64
	)

	err := s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		var err error
		sprint, err = findSprintForUpdate(ctx, tx, sprintID)
		if err != nil {
			return err
		}

		target, err := resolveMigrationTarget(ctx, tx, sprint, migration)
		if err != nil {
			return err
		}

		var excludeStepID *uint64
		final, err := tx.Workspaces.FinalStep(ctx, sprint.WorkspaceID)
		switch {
		case err == nil:
			excludeStepID = &final.StepID
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return fmt.Errorf("failed to find final step: %w", err)
		}

		moved, err = tx.Tasks.MigrateSprint(ctx, sprint.ID, excludeStepID, target)
		if err != nil {
			return fmt.Errorf("failed to migrate sprint tasks: %w", err)
		}

		now := s.clock.Now()
		sprint.IsActive = false
		if sprint.EndDate == nil {
			sprint.EndDate = &now
		}
		if sprint.ClosedAt == nil {
			sprint.ClosedAt = &now
		}

		if err := tx.Sprints.Update(ctx, sprint); err != nil {
			return fmt.Errorf("failed to close sprint: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}

	logging.Logger.WithFields(logrus.Fields{
		"sprint_id":   sprint.ID,
		"moved_tasks": moved,
		"target":      migrationLabel(migration),
	}).Info("sprint closed")

	return sprint, moved, nil
}

// DeleteSprints hard deletes the given sprints. Their tasks are kept and
// returned to the backlog.
func (s *SprintService) DeleteSprints(ctx context.Context, ids []uint64) (int64, error) {
	ids = uniqueUint64(ids)
	if len(ids) == 0 {
		return 0, ErrNoSprintIDsProvided
	}

	var deleted int64
	err := s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		for _, id := range ids {
			if _, err := tx.Tasks.MigrateSprint(ctx, id, nil, nil); err != nil {
				return fmt.Errorf("failed to detach sprint tasks: %w", err)
			}
		}

		var err error
		deleted, err = tx.Sprints.DeleteByIDs(ctx, ids)
		if err != nil {
			return fmt.Errorf("failed to delete sprints: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return deleted, nil
}

func (s *SprintService) activate(sprint *models.Sprint) error {
	if sprint.State() == models.SprintClosed {
		return ErrSprintClosed
	}
	if !sprint.HasDates() {
		return ErrSprintDatesRequired
	}

	sprint.IsActive = true
	if sprint.ActivatedAt == nil {
		now := s.clock.Now()
		sprint.ActivatedAt = &now
	}
	return nil
}

func resolveMigrationTarget(ctx context.Context, tx *repository.Repositories, source *models.Sprint, migration Migration) (*uint64, error) {
	switch migration.To {
	case "", MigrateToBacklog:
		if migration.SprintID != nil {
			return nil, ErrBacklogWithSprintID
		}
		return nil, nil
	case MigrateToSprint:
	default:
		return nil, ErrInvalidMigrationTarget
	}

	if migration.SprintID == nil {
		return nil, ErrMigrationSprintRequired
	}
	if *migration.SprintID == source.ID {
		return nil, ErrTargetIsSource
	}

	// Locked after the source so a concurrent close of the target waits.
	target, err := tx.Sprints.FindByIDForUpdate(ctx, *migration.SprintID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTargetSprintMissing
		}
		return nil, fmt.Errorf("failed to find target sprint: %w", err)
	}
	if target.WorkspaceID != source.WorkspaceID {
		return nil, ErrTargetNotInWorkspace
	}
	if target.State() == models.SprintClosed {
		return nil, ErrTargetSprintClosed
	}
	return &target.ID, nil
}

func findSprint(ctx context.Context, repos *repository.Repositories, sprintID uint64) (*models.Sprint, error) {
	sprint, err := repos.Sprints.FindByID(ctx, sprintID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSprintNotFound
		}
		return nil, fmt.Errorf("failed to find sprint: %w", err)
	}
	return sprint, nil
}

// findSprintForUpdate is findSprint under a row lock. Every read that feeds a
// sprint write inside a transaction goes through it.
func findSprintForUpdate(ctx context.Context, tx *repository.Repositories, sprintID uint64) (*models.Sprint, error) {
	sprint, err := tx.Sprints.FindByIDForUpdate(ctx, sprintID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSprintNotFound
		}
		return nil, fmt.Errorf("failed to find sprint: %w", err)
	}
	return sprint, nil
}

func checkDateOrder(sprint *models.Sprint) error {
	if sprint.HasDates() && sprint.EndDate.Before(*sprint.StartDate) {
		return ErrSprintEndBeforeStart
	}
	return nil
}

func migrationLabel(m Migration) string {
	if m.To == MigrateToSprint && m.SprintID != nil {
		return fmt.Sprintf("sprint:%d", *m.SprintID)
	}
	return string(MigrateToBacklog)
}
