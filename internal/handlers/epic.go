package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/sprint-tracker-api/internal/dto"
	apierrors "github.com/yukikurage/sprint-tracker-api/internal/errors"
	"github.com/yukikurage/sprint-tracker-api/internal/models"
	"github.com/yukikurage/sprint-tracker-api/internal/services"
	"github.com/yukikurage/sprint-tracker-api/internal/utils"
)

type EpicHandler struct {
	epicService *services.EpicService
}

func NewEpicHandler(epicService *services.EpicService) *EpicHandler {
	return &EpicHandler{epicService: epicService}
}

// CreateEpic creates an epic and assigns its PREFIX-E<n> key
func (h *EpicHandler) CreateEpic(c *gin.Context) {
	type CreateEpicRequest struct {
		WorkspaceID uint64            `json:"workspace_id" binding:"required"`
		Title       string            `json:"title" binding:"required"`
		Description string            `json:"description"`
		Status      models.EpicStatus `json:"status"`
		PriorityID  uint64            `json:"priority_id"`
	}

	var req CreateEpicRequest
	if !bindJSON(c, &req) {
		return
	}

	epic, err := h.epicService.CreateEpic(c.Request.Context(), services.CreateEpicInput{
		WorkspaceID: req.WorkspaceID,
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		PriorityID:  req.PriorityID,
	})
	if err != nil {
		apierrors.RespondWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToEpicDTO(*epic))
}

func (h *EpicHandler) ListEpics(c *gin.Context) {
	workspaceID, ok := requiredQueryID(c, "workspace_id")
	if !ok {
		return
	}
	params := utils.GetPaginationParams(c)

	epics, total, err := h.epicService.ListEpics(c.Request.Context(), workspaceID, params)
	if err != nil {
		apierrors.RespondWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToEpicListResponse(epics, params.Page, params.Limit, total))
}

func (h *EpicHandler) GetEpic(c *gin.Context) {
	id, ok := resourceID(c, "epic")
	if !ok {
		return
	}

	epic, err := h.epicService.GetEpic(c.Request.Context(), id)
	if err != nil {
		apierrors.RespondWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToEpicDTO(*epic))
}

func (h *EpicHandler) UpdateEpic(c *gin.Context) {
	type UpdateEpicRequest struct {
		Title       *string            `json:"title"`
		Description *string            `json:"description"`
		Status      *models.EpicStatus `json:"status"`
		PriorityID  *uint64            `json:"priority_id"`
	}

	id, ok := resourceID(c, "epic")
	if !ok {
		return
	}

	var req UpdateEpicRequest
	if !bindJSON(c, &req) {
		return
	}

	epic, err := h.epicService.UpdateEpic(c.Request.Context(), id, services.UpdateEpicInput{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		PriorityID:  req.PriorityID,
	})
	if err != nil {
		apierrors.RespondWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToEpicDTO(*epic))
}

// DeleteEpic deletes an epic with no tasks
func (h *EpicHandler) DeleteEpic(c *gin.Context) {
	id, ok := resourceID(c, "epic")
	if !ok {
		return
	}

	if err := h.epicService.DeleteEpic(c.Request.Context(), id); err != nil {
		apierrors.RespondWithServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
