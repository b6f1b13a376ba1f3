package dto

import (
	"time"

	"github.com/yukikurage/sprint-tracker-api/internal/models"
)

// SprintDTO represents a sprint in API responses. State is derived, not stored.
type SprintDTO struct {
	ID          uint64             `json:"id"`
	WorkspaceID uint64             `json:"workspace_id"`
	Name        string             `json:"name"`
	Goal        string             `json:"goal"`
	StartDate   *time.Time         `json:"start_date"`
	EndDate     *time.Time         `json:"end_date"`
	IsActive    bool               `json:"is_active"`
	ActivatedAt *time.Time         `json:"activated_at"`
	ClosedAt    *time.Time         `json:"closed_at"`
	State       models.SprintState `json:"state"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
}

// CloseSprintResponse is returned by the close endpoint
type CloseSprintResponse struct {
	Sprint     SprintDTO `json:"sprint"`
	MovedCount int64     `json:"moved_count"`
}

// SprintListResponse represents the sprints of a workspace
type SprintListResponse struct {
	Sprints []SprintDTO `json:"sprints"`
}

// BulkDeleteResponse reports how many rows a bulk delete removed
type BulkDeleteResponse struct {
	Deleted int64 `json:"deleted"`
}

// ToSprintDTO converts a Sprint model to SprintDTO
func ToSprintDTO(sprint models.Sprint) SprintDTO {
	return SprintDTO{
		ID:          sprint.ID,
		WorkspaceID: sprint.WorkspaceID,
		Name:        sprint.Name,
		Goal:        sprint.Goal,
		StartDate:   sprint.StartDate,
		EndDate:     sprint.EndDate,
		IsActive:    sprint.IsActive,
		ActivatedAt: sprint.ActivatedAt,
		ClosedAt:    sprint.ClosedAt,
		State:       sprint.State(),
		CreatedAt:   sprint.CreatedAt,
		UpdatedAt:   sprint.UpdatedAt,
	}
}

// ToSprintListResponse converts a slice of sprints to SprintListResponse
func ToSprintListResponse(sprints []models.Sprint) SprintListResponse {
	items := make([]SprintDTO, len(sprints))
	for i, sprint := range sprints {
		items[i] = ToSprintDTO(sprint)
	}
	return SprintListResponse{Sprints: items}
}
