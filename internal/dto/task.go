package dto

import (
	"time"

	"github.com/yukikurage/sprint-tracker-api/internal/models"
	"github.com/yukikurage/sprint-tracker-api/internal/utils"
)

// UserDTO represents a user in API responses
type UserDTO struct {
	ID       uint64 `json:"id"`
	Username string `json:"username"`
}

// TaskDTO represents a task in API responses
type TaskDTO struct {
	ID          uint64            `json:"id"`
	IDTask      string            `json:"id_task"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Status      models.TaskStatus `json:"status"`
	WorkspaceID uint64            `json:"workspace_id"`
	StepID      uint64            `json:"step_id"`
	SprintID    *uint64           `json:"sprint_id"`
	EpicID      *uint64           `json:"epic_id"`
	PriorityID  uint64            `json:"priority_id"`
	TypeTaskID  uint64            `json:"type_task_id"`
	ReporterID  uint64            `json:"reporter_id"`
	AssigneeID  *uint64           `json:"assignee_id"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
	Step        *StepDTO          `json:"step,omitempty"`
	Sprint      *SprintDTO        `json:"sprint,omitempty"`
	Epic        *EpicDTO          `json:"epic,omitempty"`
}

// TaskListItemDTO represents a task in list responses (minimal data)
type TaskListItemDTO struct {
	ID         uint64            `json:"id"`
	IDTask     string            `json:"id_task"`
	Title      string            `json:"title"`
	Status     models.TaskStatus `json:"status"`
	StepID     uint64            `json:"step_id"`
	SprintID   *uint64           `json:"sprint_id"`
	EpicID     *uint64           `json:"epic_id"`
	AssigneeID *uint64           `json:"assignee_id"`
	CreatedAt  time.Time         `json:"created_at"`
}

// TaskListResponse represents a paginated list of tasks
type TaskListResponse struct {
	Tasks      []TaskListItemDTO `json:"tasks"`
	Page       int               `json:"page"`
	PageSize   int               `json:"page_size"`
	TotalCount int64             `json:"total_count"`
	TotalPages int               `json:"total_pages"`
}

// MoveByKeysResponse reports how many tasks a bulk move touched
type MoveByKeysResponse struct {
	Moved int64 `json:"moved"`
}

// Conversion functions

// ToUserDTO converts a User model to UserDTO
func ToUserDTO(user models.User) UserDTO {
	return UserDTO{
		ID:       user.ID,
		Username: user.Username,
	}
}

// ToTaskDTO converts a Task model to TaskDTO
func ToTaskDTO(task models.Task) TaskDTO {
	dto := TaskDTO{
		ID:          task.ID,
		IDTask:      task.IDTask,
		Title:       task.Title,
		Description: task.Description,
		Status:      task.Status,
		WorkspaceID: task.WorkspaceID,
		StepID:      task.StepID,
		SprintID:    task.SprintID,
		EpicID:      task.EpicID,
		PriorityID:  task.PriorityID,
		TypeTaskID:  task.TypeTaskID,
		ReporterID:  task.ReporterID,
		AssigneeID:  task.AssigneeID,
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
	}

	// Include relations if preloaded
	if task.Step.ID != 0 {
		step := ToStepDTO(task.Step)
		dto.Step = &step
	}
	if task.Sprint != nil {
		sprint := ToSprintDTO(*task.Sprint)
		dto.Sprint = &sprint
	}
	if task.Epic != nil {
		epic := ToEpicDTO(*task.Epic)
		dto.Epic = &epic
	}

	return dto
}

// ToTaskListItemDTO converts a Task model to TaskListItemDTO
func ToTaskListItemDTO(task models.Task) TaskListItemDTO {
	return TaskListItemDTO{
		ID:         task.ID,
		IDTask:     task.IDTask,
		Title:      task.Title,
		Status:     task.Status,
		StepID:     task.StepID,
		SprintID:   task.SprintID,
		EpicID:     task.EpicID,
		AssigneeID: task.AssigneeID,
		CreatedAt:  task.CreatedAt,
	}
}

// ToTaskListResponse converts a slice of tasks to TaskListResponse
func ToTaskListResponse(tasks []models.Task, page, pageSize int, totalCount int64) TaskListResponse {
	items := make([]TaskListItemDTO, len(tasks))
	for i, task := range tasks {
		items[i] = ToTaskListItemDTO(task)
	}

	return TaskListResponse{
		Tasks:      items,
		Page:       page,
		PageSize:   pageSize,
		TotalCount: totalCount,
		TotalPages: utils.TotalPages(totalCount, pageSize),
	}
}
