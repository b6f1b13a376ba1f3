package dto

import (
	"time"

	"github.com/yukikurage/sprint-tracker-api/internal/models"
	"github.com/yukikurage/sprint-tracker-api/internal/utils"
)

// EpicDTO represents an epic in API responses
type EpicDTO struct {
	ID          uint64            `json:"id"`
	Key         string            `json:"key"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Status      models.EpicStatus `json:"status"`
	WorkspaceID uint64            `json:"workspace_id"`
	PriorityID  uint64            `json:"priority_id"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// EpicListResponse represents a paginated list of epics
type EpicListResponse struct {
	Epics      []EpicDTO `json:"epics"`
	Page       int       `json:"page"`
	PageSize   int       `json:"page_size"`
	TotalCount int64     `json:"total_count"`
	TotalPages int       `json:"total_pages"`
}

// ToEpicDTO converts an Epic model to EpicDTO
func ToEpicDTO(epic models.Epic) EpicDTO {
	return EpicDTO{
		ID:          epic.ID,
		Key:         epic.Key,
		Title:       epic.Title,
		Description: epic.Description,
		Status:      epic.Status,
		WorkspaceID: epic.WorkspaceID,
		PriorityID:  epic.PriorityID,
		CreatedAt:   epic.CreatedAt,
		UpdatedAt:   epic.UpdatedAt,
	}
}

// ToEpicListResponse converts a slice of epics to EpicListResponse
func ToEpicListResponse(epics []models.Epic, page, pageSize int, totalCount int64) EpicListResponse {
	items := make([]EpicDTO, len(epics))
	for i, epic := range epics {
		items[i] = ToEpicDTO(epic)
	}

	return EpicListResponse{
		Epics:      items,
		Page:       page,
		PageSize:   pageSize,
		TotalCount: totalCount,
		TotalPages: utils.TotalPages(totalCount, pageSize),
	}
}
