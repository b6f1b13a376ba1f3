package dto

import (
	"time"

	"github.com/yukikurage/sprint-tracker-api/internal/models"
	"github.com/yukikurage/sprint-tracker-api/internal/utils"
)

// StepDTO represents a workflow step in API responses
type StepDTO struct {
	ID   uint64 `json:"id"`
	Name string `json:"name"`
}

// WorkspaceStepDTO represents a step bound to a workspace at a position
type WorkspaceStepDTO struct {
	StepID uint64 `json:"step_id"`
	Name   string `json:"name,omitempty"`
	Order  int    `json:"order"`
}

// WorkspaceDTO represents a workspace in API responses
type WorkspaceDTO struct {
	ID          uint64             `json:"id"`
	Name        string             `json:"name"`
	Prefix      string             `json:"prefix"`
	Methodology string             `json:"methodology"`
	NextTaskSeq int64              `json:"next_task_seq"`
	NextEpicSeq int64              `json:"next_epic_seq"`
	TeamID      *uint64            `json:"team_id"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
	Steps       []WorkspaceStepDTO `json:"steps,omitempty"`
}

// WorkspaceListResponse represents a paginated list of workspaces
type WorkspaceListResponse struct {
	Workspaces []WorkspaceDTO `json:"workspaces"`
	Page       int            `json:"page"`
	PageSize   int            `json:"page_size"`
	TotalCount int64          `json:"total_count"`
	TotalPages int            `json:"total_pages"`
}

// ToStepDTO converts a Step model to StepDTO
func ToStepDTO(step models.Step) StepDTO {
	return StepDTO{
		ID:   step.ID,
		Name: step.Name,
	}
}

// ToWorkspaceDTO converts a Workspace model to WorkspaceDTO
func ToWorkspaceDTO(ws models.Workspace) WorkspaceDTO {
	dto := WorkspaceDTO{
		ID:          ws.ID,
		Name:        ws.Name,
		Prefix:      ws.Prefix,
		Methodology: ws.Methodology,
		NextTaskSeq: ws.NextTaskSeq,
		NextEpicSeq: ws.NextEpicSeq,
		TeamID:      ws.TeamID,
		CreatedAt:   ws.CreatedAt,
		UpdatedAt:   ws.UpdatedAt,
	}

	// Include steps if preloaded
	if len(ws.Steps) > 0 {
		dto.Steps = make([]WorkspaceStepDTO, len(ws.Steps))
		for i, s := range ws.Steps {
			dto.Steps[i] = WorkspaceStepDTO{
				StepID: s.StepID,
				Name:   s.Step.Name,
				Order:  s.Order,
			}
		}
	}

	return dto
}

// ToWorkspaceListResponse converts a slice of workspaces to WorkspaceListResponse
func ToWorkspaceListResponse(workspaces []models.Workspace, page, pageSize int, totalCount int64) WorkspaceListResponse {
	items := make([]WorkspaceDTO, len(workspaces))
	for i, ws := range workspaces {
		items[i] = ToWorkspaceDTO(ws)
	}

	return WorkspaceListResponse{
		Workspaces: items,
		Page:       page,
		PageSize:   pageSize,
		TotalCount: totalCount,
		TotalPages: utils.TotalPages(totalCount, pageSize),
	}
}
