package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/yukikurage/sprint-tracker-api/internal/models"
	"github.com/yukikurage/sprint-tracker-api/internal/repository"
)

// StepService manages the global catalogue of workflow steps
type StepService struct {
	stepRepo repository.StepRepository
}

// NewStepService creates a new StepService
func NewStepService(stepRepo repository.StepRepository) *StepService {
	return &StepService{stepRepo: stepRepo}
}

// CreateStep creates a step that workspaces can bind into their workflow
func (s *StepService) CreateStep(ctx context.Context, name string) (*models.Step, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrNameRequired
	}

	step := &models.Step{Name: name}
	if err := s.stepRepo.Create(ctx, step); err != nil {
		return nil, fmt.Errorf("failed to create step: %w", err)
	}
	return step, nil
}

// ListSteps returns every step
func (s *StepService) ListSteps(ctx context.Context) ([]models.Step, error) {
	steps, err := s.stepRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list steps: %w", err)
	}
	return steps, nil
}
