package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/sprint-tracker-api/internal/dto"
	apierrors "github.com/yukikurage/sprint-tracker-api/internal/errors"
	"github.com/yukikurage/sprint-tracker-api/internal/services"
	"github.com/yukikurage/sprint-tracker-api/internal/utils"
)

// WorkspaceHandler serves workspace configuration endpoints.
type WorkspaceHandler struct {
	workspaceService *services.WorkspaceService
}

// NewWorkspaceHandler creates a new WorkspaceHandler.
func NewWorkspaceHandler(workspaceService *services.WorkspaceService) *WorkspaceHandler {
	return &WorkspaceHandler{
		workspaceService: workspaceService,
	}
}

// StepBindingRequest places a step in a workspace workflow
type StepBindingRequest struct {
	StepID uint64 `json:"step_id" binding:"required"`
	Order  int    `json:"order"`
}

func toStepBindings(reqs []StepBindingRequest) []services.StepBinding {
	bindings := make([]services.StepBinding, len(reqs))
	for i, r := range reqs {
		bindings[i] = services.StepBinding{StepID: r.StepID, Order: r.Order}
	}
	return bindings
}

// CreateWorkspace creates a workspace with its workflow steps.
func (h *WorkspaceHandler) CreateWorkspace(c *gin.Context) {
	type CreateWorkspaceRequest struct {
		Name        string               `json:"name" binding:"required"`
		Prefix      string               `json:"prefix" binding:"required"`
		Methodology string               `json:"methodology"`
		TeamID      *uint64              `json:"team_id"`
		Steps       []StepBindingRequest `json:"steps" binding:"dive"`
	}

	var req CreateWorkspaceRequest
	if !bindJSON(c, &req) {
		return
	}

	ws, err := h.workspaceService.CreateWorkspace(c.Request.Context(), services.CreateWorkspaceInput{
		Name:        req.Name,
		Prefix:      req.Prefix,
		Methodology: req.Methodology,
		TeamID:      req.TeamID,
		Steps:       toStepBindings(req.Steps),
	})
	if err != nil {
		apierrors.RespondWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToWorkspaceDTO(*ws))
}

// ListWorkspaces returns a page of workspaces.
func (h *WorkspaceHandler) ListWorkspaces(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	workspaces, total, err := h.workspaceService.ListWorkspaces(c.Request.Context(), params)
	if err != nil {
		apierrors.RespondWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToWorkspaceListResponse(workspaces, params.Page, params.Limit, total))
}

// GetWorkspace returns a workspace with its ordered steps.
func (h *WorkspaceHandler) GetWorkspace(c *gin.Context) {
	id, ok := resourceID(c, "workspace")
	if !ok {
		return
	}

	ws, err := h.workspaceService.GetWorkspace(c.Request.Context(), id)
	if err != nil {
		apierrors.RespondWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToWorkspaceDTO(*ws))
}

// UpdateWorkspace edits a workspace. When steps is present the workflow is replaced.
func (h *WorkspaceHandler) UpdateWorkspace(c *gin.Context) {
	type UpdateWorkspaceRequest struct {
		Name        *string               `json:"name"`
		Prefix      *string               `json:"prefix"`
		Methodology *string               `json:"methodology"`
		TeamID      *uint64               `json:"team_id"`
		ClearTeam   bool                  `json:"clear_team"`
		Steps       *[]StepBindingRequest `json:"steps"`
	}

	id, ok := resourceID(c, "workspace")
	if !ok {
		return
	}

	var req UpdateWorkspaceRequest
	if !bindJSON(c, &req) {
		return
	}

	input := services.UpdateWorkspaceInput{
		Name:        req.Name,
		Prefix:      req.Prefix,
		Methodology: req.Methodology,
		TeamID:      req.TeamID,
		ClearTeam:   req.ClearTeam,
	}
	if req.Steps != nil {
		for _, s := range *req.Steps {
			if s.StepID == 0 {
				apierrors.BadRequest(c, "step_id is required")
				return
			}
		}
		input.Steps = toStepBindings(*req.Steps)
	}

	ws, err := h.workspaceService.UpdateWorkspace(c.Request.Context(), id, input)
	if err != nil {
		apierrors.RespondWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToWorkspaceDTO(*ws))
}

// DeleteWorkspace deletes an empty workspace.
func (h *WorkspaceHandler) DeleteWorkspace(c *gin.Context) {
	id, ok := resourceID(c, "workspace")
	if !ok {
		return
	}

	if err := h.workspaceService.DeleteWorkspace(c.Request.Context(), id); err != nil {
		apierrors.RespondWithServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
