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

// TaskService handles task business logic
type TaskService struct {
	repos     *repository.Repositories
	allocator *SequenceAllocator
}

// NewTaskService creates a new TaskService
func NewTaskService(repos *repository.Repositories, allocator *SequenceAllocator) *TaskService {
	return &TaskService{
		repos:     repos,
		allocator: allocator,
	}
}

// ListTasksInput represents filters for listing tasks
type ListTasksInput struct {
	WorkspaceID uint64
	SprintID    *uint64
	BacklogOnly bool
	EpicID      *uint64
	StepID      *uint64
	Pagination  utils.PaginationParams
}

// CreateTaskInput represents input for creating a task
type CreateTaskInput struct {
	WorkspaceID uint64
	Title       string
	Description string
	Status      models.TaskStatus
	StepID      uint64
	SprintID    *uint64
	EpicID      *uint64
	PriorityID  uint64
	TypeTaskID  uint64
	ReporterID  uint64
	AssigneeID  *uint64
}

// UpdateTaskInput represents input for updating a task. The display key and
// workspace of a task never change.
type UpdateTaskInput struct {
	Title         *string
	Description   *string
	Status        *models.TaskStatus
	StepID        *uint64
	SprintID      *uint64
	ClearSprint   bool
	EpicID        *uint64
	ClearEpic     bool
	AssigneeID    *uint64
	ClearAssignee bool
	PriorityID    *uint64
	TypeTaskID    *uint64
}

// ListTasks returns the tasks of a workspace matching the filters
func (s *TaskService) ListTasks(ctx context.Context, input ListTasksInput) ([]models.Task, int64, error) {
	if err := ensureWorkspace(ctx, s.repos, input.WorkspaceID); err != nil {
		return nil, 0, err
	}

	tasks, total, err := s.repos.Tasks.List(ctx, repository.TaskFilter{
		WorkspaceID: input.WorkspaceID,
		SprintID:    input.SprintID,
		BacklogOnly: input.BacklogOnly,
		EpicID:      input.EpicID,
		StepID:      input.StepID,
		Pagination:  input.Pagination,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list tasks: %w", err)
	}

	return tasks, total, nil
}

// GetTask returns a task with its step, sprint and epic
func (s *TaskService) GetTask(ctx context.Context, taskID uint64) (*models.Task, error) {
	return findTask(ctx, s.repos, taskID, "Step", "Sprint", "Epic")
}

// CreateTask validates the task's references, allocates its display key and
// inserts it in one transaction, so a failed insert does not consume a key.
func (s *TaskService) CreateTask(ctx context.Context, input CreateTaskInput) (*models.Task, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, ErrTitleRequired
	}
	if input.Status == "" {
		input.Status = models.TaskStatusTodo
	}
	if !validTaskStatus(input.Status) {
		return nil, ErrInvalidTaskStatus
	}

	task := &models.Task{
		Title:       title,
		Description: input.Description,
		Status:      input.Status,
		WorkspaceID: input.WorkspaceID,
		StepID:      input.StepID,
		SprintID:    input.SprintID,
		EpicID:      input.EpicID,
		PriorityID:  input.PriorityID,
		TypeTaskID:  input.TypeTaskID,
		ReporterID:  input.ReporterID,
		AssigneeID:  input.AssigneeID,
	}

	err := s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		if err := ensureWorkspace(ctx, tx, input.WorkspaceID); err != nil {
			return err
		}

		if err := NewReferentialValidator(tx).ValidateTaskRefs(ctx, taskRefs(task)); err != nil {
			return err
		}

		alloc, err := s.allocator.AllocateKeyTx(ctx, tx, input.WorkspaceID, models.SequenceTask)
		if err != nil {
			return err
		}
		task.IDTask = alloc.Key

		if err := tx.Tasks.Create(ctx, task); err != nil {
			return fmt.Errorf("failed to create task: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logging.Logger.WithFields(logrus.Fields{
		"task_id":      task.ID,
		"id_task":      task.IDTask,
		"workspace_id": task.WorkspaceID,
	}).Info("task created")

	return task, nil
}

// UpdateTask updates an existing task and re-validates its references
func (s *TaskService) UpdateTask(ctx context.Context, taskID uint64, input UpdateTaskInput) (*models.Task, error) {
	var task *models.Task
	err := s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		var err error
		task, err = findTaskForUpdate(ctx, tx, taskID)
		if err != nil {
			return err
		}

		if input.Title != nil {
			title := strings.TrimSpace(*input.Title)
			if title == "" {
				return ErrTitleRequired
			}
			task.Title = title
		}
		if input.Description != nil {
			task.Description = *input.Description
		}
		if input.Status != nil {
			if !validTaskStatus(*input.Status) {
				return ErrInvalidTaskStatus
			}
			task.Status = *input.Status
		}
		if input.StepID != nil {
			task.StepID = *input.StepID
		}
		if input.ClearSprint {
			task.SprintID = nil
		} else if input.SprintID != nil {
			task.SprintID = input.SprintID
		}
		if input.ClearEpic {
			task.EpicID = nil
		} else if input.EpicID != nil {
			task.EpicID = input.EpicID
		}
		if input.ClearAssignee {
			task.AssigneeID = nil
		} else if input.AssigneeID != nil {
			task.AssigneeID = input.AssigneeID
		}
		if input.PriorityID != nil {
			task.PriorityID = *input.PriorityID
		}
		if input.TypeTaskID != nil {
			task.TypeTaskID = *input.TypeTaskID
		}

		if err := NewReferentialValidator(tx).ValidateTaskRefs(ctx, taskRefs(task)); err != nil {
			return err
		}

		if err := tx.Tasks.Update(ctx, task); err != nil {
			return fmt.Errorf("failed to update task: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return task, nil
}

// MoveTask changes only the step of a task; its sprint is left as is
func (s *TaskService) MoveTask(ctx context.Context, taskID, stepID uint64) (*models.Task, error) {
	var task *models.Task
	err := s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		var err error
		task, err = findTask(ctx, tx, taskID)
		if err != nil {
			return err
		}

		if err := NewReferentialValidator(tx).ValidateStepInWorkspace(ctx, stepID, task.WorkspaceID); err != nil {
			return err
		}

		// Only step_id is written so a concurrent sprint change is not undone.
		if err := tx.Tasks.UpdateStep(ctx, task.ID, stepID); err != nil {
			return fmt.Errorf("failed to move task: %w", err)
		}
		task, err = findTask(ctx, tx, taskID)
		return err
	})
	if err != nil {
		return nil, err
	}

	return task, nil
}

// MoveTasksByKeys moves every task of the workspace whose display key is listed
// to stepID. Unknown keys are ignored; the count of moved tasks is returned.
func (s *TaskService) MoveTasksByKeys(ctx context.Context, workspaceID uint64, keys []string, stepID uint64) (int64, error) {
	keys = normalizeKeys(keys)
	if len(keys) == 0 {
		return 0, ErrNoKeysProvided
	}

	var moved int64
	err := s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		if err := ensureWorkspace(ctx, tx, workspaceID); err != nil {
			return err
		}
		if err := NewReferentialValidator(tx).ValidateStepInWorkspace(ctx, stepID, workspaceID); err != nil {
			return err
		}

		var err error
		moved, err = tx.Tasks.MoveByKeys(ctx, workspaceID, keys, stepID)
		if err != nil {
			return fmt.Errorf("failed to move tasks: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	logging.Logger.WithFields(logrus.Fields{
		"workspace_id": workspaceID,
		"step_id":      stepID,
		"keys":         len(keys),
		"moved":        moved,
	}).Info("tasks moved by key")

	return moved, nil
}

// DeleteTask deletes a task. A task attached to an epic must be detached first.
func (s *TaskService) DeleteTask(ctx context.Context, taskID uint64) error {
	task, err := findTask(ctx, s.repos, taskID)
	if err != nil {
		return err
	}

	if task.EpicID != nil {
		return ErrTaskHasEpic
	}

	if err := s.repos.Tasks.Delete(ctx, taskID); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	return nil
}

func findTask(ctx context.Context, repos *repository.Repositories, taskID uint64, preload ...string) (*models.Task, error) {
	task, err := repos.Tasks.FindByID(ctx, taskID, preload...)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}
	return task, nil
}

func findTaskForUpdate(ctx context.Context, tx *repository.Repositories, taskID uint64) (*models.Task, error) {
	task, err := tx.Tasks.FindByIDForUpdate(ctx, taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}
	return task, nil
}

func ensureWorkspace(ctx context.Context, repos *repository.Repositories, workspaceID uint64) error {
	if _, err := repos.Workspaces.FindByID(ctx, workspaceID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrWorkspaceNotFound
		}
		return fmt.Errorf("failed to find workspace: %w", err)
	}
	return nil
}

func taskRefs(task *models.Task) TaskRefs {
	return TaskRefs{
		WorkspaceID: task.WorkspaceID,
		StepID:      task.StepID,
		SprintID:    task.SprintID,
		EpicID:      task.EpicID,
	}
}

func validTaskStatus(status models.TaskStatus) bool {
	switch status {
	case models.TaskStatusTodo, models.TaskStatusInProgress, models.TaskStatusDone:
		return true
	}
	return false
}

func normalizeKeys(keys []string) []string {
	seen := make(map[string]struct{}, len(keys))
	result := make([]string, 0, len(keys))

	for _, k := range keys {
		k = strings.ToUpper(strings.TrimSpace(k))
		if k == "" {
			continue
		}
		if _, exists := seen[k]; exists {
			continue
		}
		seen[k] = struct{}{}
		result = append(result, k)
	}

	return result
}

func uniqueUint64(values []uint64) []uint64 {
	seen := make(map[uint64]struct{}, len(values))
	result := make([]uint64, 0, len(values))

	for _, v := range values {
		if _, exists := seen[v]; exists {
			continue
		}
		seen[v] = struct{}{}
		result = append(result, v)
	}

	return result
}
