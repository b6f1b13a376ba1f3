package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/yukikurage/sprint-tracker-api/internal/logging"
	"github.com/yukikurage/sprint-tracker-api/internal/models"
	"github.com/yukikurage/sprint-tracker-api/internal/repository"
	"github.com/yukikurage/sprint-tracker-api/internal/utils"
	"gorm.io/gorm"
)

// EpicService handles epic business logic
type EpicService struct {
	repos     *repository.Repositories
	allocator *SequenceAllocator
}

// NewEpicService creates a new EpicService
func NewEpicService(repos *repository.Repositories, allocator *SequenceAllocator) *EpicService {
	return &EpicService{
		repos:     repos,
		allocator: allocator,
	}
}

// CreateEpicInput represents input for creating an epic
type CreateEpicInput struct {
	WorkspaceID uint64
	Title       string
	Description string
	Status      models.EpicStatus
	PriorityID  uint64
}

// UpdateEpicInput represents input for updating an epic
type UpdateEpicInput struct {
	Title       *string
	Description *string
	Status      *models.EpicStatus
	PriorityID  *uint64
}

// CreateEpic allocates the epic key and inserts the epic in one transaction
func (s *EpicService) CreateEpic(ctx context.Context, input CreateEpicInput) (*models.Epic, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, ErrTitleRequired
	}
	if input.Status == "" {
		input.Status = models.EpicStatusOpen
	}
	if !validEpicStatus(input.Status) {
		return nil, ErrInvalidEpicStatus
	}

	epic := &models.Epic{
		Title:       title,
		Description: input.Description,
		Status:      input.Status,
		WorkspaceID: input.WorkspaceID,
		PriorityID:  input.PriorityID,
	}

	err := s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		alloc, err := s.allocator.AllocateKeyTx(ctx, tx, input.WorkspaceID, models.SequenceEpic)
		if err != nil {
			return err
		}
		epic.Key = alloc.Key

		if err := tx.Epics.Create(ctx, epic); err != nil {
			return fmt.Errorf("failed to create epic: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logging.Logger.WithFields(logrus.Fields{
		"epic_id":      epic.ID,
		"key":          epic.Key,
		"workspace_id": epic.WorkspaceID,
	}).Info("epic created")

	return epic, nil
}

// GetEpic returns an epic by ID
func (s *EpicService) GetEpic(ctx context.Context, epicID uint64) (*models.Epic, error) {
	return findEpic(ctx, s.repos, epicID)
}

// ListEpics returns a page of the workspace's epics
func (s *EpicService) ListEpics(ctx context.Context, workspaceID uint64, page utils.PaginationParams) ([]models.Epic, int64, error) {
	if err := ensureWorkspace(ctx, s.repos, workspaceID); err != nil {
		return nil, 0, err
	}

	epics, total, err := s.repos.Epics.ListByWorkspace(ctx, workspaceID, page)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list epics: %w", err)
	}
	return epics, total, nil
}

// UpdateEpic updates the editable fields of an epic. The key never changes.
func (s *EpicService) UpdateEpic(ctx context.Context, epicID uint64, input UpdateEpicInput) (*models.Epic, error) {
	epic, err := findEpic(ctx, s.repos, epicID)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return nil, ErrTitleRequired
		}
		epic.Title = title
	}
	if input.Description != nil {
		epic.Description = *input.Description
	}
	if input.Status != nil {
		if !validEpicStatus(*input.Status) {
			return nil, ErrInvalidEpicStatus
		}
		epic.Status = *input.Status
	}
	if input.PriorityID != nil {
		epic.PriorityID = *input.PriorityID
	}

	if err := s.repos.Epics.Update(ctx, epic); err != nil {
		return nil, fmt.Errorf("failed to update epic: %w", err)
	}
	return epic, nil
}

// DeleteEpic deletes an epic that no task references
func (s *EpicService) DeleteEpic(ctx context.Context, epicID uint64) error {
	return s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		if _, err := findEpic(ctx, tx, epicID); err != nil {
			return err
		}

		count, err := tx.Tasks.CountByEpic(ctx, epicID)
		if err != nil {
			return fmt.Errorf("failed to count epic tasks: %w", err)
		}
		if count > 0 {
			return ErrEpicHasTasks
		}

		if err := tx.Epics.Delete(ctx, epicID); err != nil {
			return fmt.Errorf("failed to delete epic: %w", err)
		}
		return nil
	})
}

func findEpic(ctx context.Context, repos *repository.Repositories, epicID uint64) (*models.Epic, error) {
	epic, err := repos.Epics.FindByID(ctx, epicID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEpicNotFound
		}
		return nil, fmt.Errorf("failed to find epic: %w", err)
	}
	return epic, nil
}

func validEpicStatus(status models.EpicStatus) bool {
	return status == models.EpicStatusOpen || status == models.EpicStatusDone
}
