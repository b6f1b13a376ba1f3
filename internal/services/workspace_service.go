package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/yukikurage/sprint-tracker-api/internal/logging"
	"github.com/yukikurage/sprint-tracker-api/internal/models"
	"github.com/yukikurage/sprint-tracker-api/internal/repository"
	"github.com/yukikurage/sprint-tracker-api/internal/utils"
	"gorm.io/gorm"
)

var prefixPattern = regexp.MustCompile(`^[A-Za-z]{1,5}$`)

// WorkspaceService provides business logic for workspace operations.
type WorkspaceService struct {
	repos *repository.Repositories
}

// NewWorkspaceService creates a new WorkspaceService.
func NewWorkspaceService(repos *repository.Repositories) *WorkspaceService {
	return &WorkspaceService{
		repos: repos,
	}
}

// StepBinding places a step at a position in a workspace workflow.
type StepBinding struct {
	StepID uint64
	Order  int
}

// CreateWorkspaceInput represents parameters to create a new workspace.
type CreateWorkspaceInput struct {
	Name        string
	Prefix      string
	Methodology string
	TeamID      *uint64
	Steps       []StepBinding
}

// UpdateWorkspaceInput represents parameters to update a workspace. A nil Steps
// keeps the workflow; a non-nil Steps replaces it, and an empty one clears it.
type UpdateWorkspaceInput struct {
	Name        *string
	Prefix      *string
	Methodology *string
	TeamID      *uint64
	ClearTeam   bool
	Steps       []StepBinding
}

// CreateWorkspace creates a workspace with both counters at 1.
func (s *WorkspaceService) CreateWorkspace(ctx context.Context, input CreateWorkspaceInput) (*models.Workspace, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrNameRequired
	}
	prefix, err := normalizePrefix(input.Prefix)
	if err != nil {
		return nil, err
	}

	ws := &models.Workspace{
		Name:        name,
		Prefix:      prefix,
		Methodology: input.Methodology,
		NextTaskSeq: 1,
		NextEpicSeq: 1,
		TeamID:      input.TeamID,
	}

	err = s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		if err := validateStepBindings(ctx, tx, input.Steps); err != nil {
			return err
		}
		if err := tx.Workspaces.Create(ctx, ws, toWorkspaceSteps(input.Steps)); err != nil {
			return fmt.Errorf("failed to create workspace: %w", err)
		}

		var err error
		ws, err = findWorkspace(ctx, tx, ws.ID, "Steps", "Steps.Step")
		return err
	})
	if err != nil {
		return nil, err
	}

	logging.Logger.WithFields(logrus.Fields{
		"workspace_id": ws.ID,
		"prefix":       ws.Prefix,
		"steps":        len(ws.Steps),
	}).Info("workspace created")

	return ws, nil
}

// GetWorkspace returns a workspace with its ordered steps.
func (s *WorkspaceService) GetWorkspace(ctx context.Context, workspaceID uint64) (*models.Workspace, error) {
	return findWorkspace(ctx, s.repos, workspaceID, "Steps", "Steps.Step")
}

// ListWorkspaces returns a page of workspaces.
func (s *WorkspaceService) ListWorkspaces(ctx context.Context, page utils.PaginationParams) ([]models.Workspace, int64, error) {
	workspaces, total, err := s.repos.Workspaces.List(ctx, page)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list workspaces: %w", err)
	}
	return workspaces, total, nil
}

// UpdateWorkspace updates the editable fields and, when given, replaces the
// workflow. Both happen in one transaction so no reader sees an empty workflow.
// Sequence counters are never touched.
func (s *WorkspaceService) UpdateWorkspace(ctx context.Context, workspaceID uint64, input UpdateWorkspaceInput) (*models.Workspace, error) {
	var ws *models.Workspace
	err := s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		var err error
		ws, err = findWorkspace(ctx, tx, workspaceID)
		if err != nil {
			return err
		}

		if input.Name != nil {
			name := strings.TrimSpace(*input.Name)
			if name == "" {
				return ErrNameRequired
			}
			ws.Name = name
		}
		if input.Prefix != nil {
			prefix, err := normalizePrefix(*input.Prefix)
			if err != nil {
				return err
			}
			ws.Prefix = prefix
		}
		if input.Methodology != nil {
			ws.Methodology = *input.Methodology
		}
		if input.ClearTeam {
			ws.TeamID = nil
		} else if input.TeamID != nil {
			ws.TeamID = input.TeamID
		}

		if err := tx.Workspaces.UpdateDetails(ctx, ws); err != nil {
			return fmt.Errorf("failed to update workspace: %w", err)
		}

		if input.Steps != nil {
			if err := validateStepBindings(ctx, tx, input.Steps); err != nil {
				return err
			}
			if err := tx.Workspaces.ReplaceSteps(ctx, ws.ID, toWorkspaceSteps(input.Steps)); err != nil {
				return fmt.Errorf("failed to replace workspace steps: %w", err)
			}
		}

		ws, err = findWorkspace(ctx, tx, workspaceID, "Steps", "Steps.Step")
		return err
	})
	if err != nil {
		return nil, err
	}

	return ws, nil
}

// DeleteWorkspace removes a workspace that has no tasks, epics or sprints.
func (s *WorkspaceService) DeleteWorkspace(ctx context.Context, workspaceID uint64) error {
	return s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		if _, err := findWorkspace(ctx, tx, workspaceID); err != nil {
			return err
		}

		count, err := tx.Workspaces.CountDependents(ctx, workspaceID)
		if err != nil {
			return fmt.Errorf("failed to count workspace contents: %w", err)
		}
		if count > 0 {
			return ErrWorkspaceHasContents
		}

		if err := tx.Workspaces.Delete(ctx, workspaceID); err != nil {
			return fmt.Errorf("failed to delete workspace: %w", err)
		}
		return nil
	})
}

func findWorkspace(ctx context.Context, repos *repository.Repositories, workspaceID uint64, preload ...string) (*models.Workspace, error) {
	ws, err := repos.Workspaces.FindByID(ctx, workspaceID, preload...)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWorkspaceNotFound
		}
		return nil, fmt.Errorf("failed to find workspace: %w", err)
	}
	return ws, nil
}

func normalizePrefix(prefix string) (string, error) {
	prefix = strings.TrimSpace(prefix)
	if !prefixPattern.MatchString(prefix) {
		return "", ErrInvalidPrefix
	}
	return strings.ToUpper(prefix), nil
}

// validateStepBindings rejects repeated steps, repeated orders and unknown steps.
func validateStepBindings(ctx context.Context, repos *repository.Repositories, steps []StepBinding) error {
	if len(steps) == 0 {
		return nil
	}

	ids := make([]uint64, 0, len(steps))
	seenSteps := make(map[uint64]struct{}, len(steps))
	seenOrders := make(map[int]struct{}, len(steps))
	for _, s := range steps {
		if _, exists := seenSteps[s.StepID]; exists {
			return ErrDuplicateStep
		}
		if _, exists := seenOrders[s.Order]; exists {
			return ErrDuplicateStepOrder
		}
		seenSteps[s.StepID] = struct{}{}
		seenOrders[s.Order] = struct{}{}
		ids = append(ids, s.StepID)
	}

	count, err := repos.Steps.CountByIDs(ctx, ids)
	if err != nil {
		return fmt.Errorf("failed to verify steps: %w", err)
	}
	if int(count) != len(ids) {
		return ErrStepNotFound
	}
	return nil
}

func toWorkspaceSteps(steps []StepBinding) []models.WorkspaceStep {
	bindings := make([]models.WorkspaceStep, len(steps))
	for i, s := range steps {
		bindings[i] = models.WorkspaceStep{StepID: s.StepID, Order: s.Order}
	}
	return bindings
}
