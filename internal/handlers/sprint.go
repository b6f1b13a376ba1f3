package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/sprint-tracker-api/internal/dto"
	apierrors "github.com/yukikurage/sprint-tracker-api/internal/errors"
	"github.com/yukikurage/sprint-tracker-api/internal/models"
	"github.com/yukikurage/sprint-tracker-api/internal/services"
)

// SprintHandler exposes the sprint lifecycle over HTTP.
type SprintHandler struct {
	sprintService *services.SprintService
}

// NewSprintHandler creates a new SprintHandler.
func NewSprintHandler(sprintService *services.SprintService) *SprintHandler {
	return &SprintHandler{sprintService: sprintService}
}

// CreateSprint creates a planned sprint, or an active one with activate_now.
func (h *SprintHandler) CreateSprint(c *gin.Context) {
	type CreateSprintRequest struct {
		WorkspaceID uint64  `json:"workspace_id" binding:"required"`
		Name        string  `json:"name" binding:"required"`
		Goal        string  `json:"goal"`
		StartDate   *string `json:"start_date"`
		EndDate     *string `json:"end_date"`
		ActivateNow bool    `json:"activate_now"`
		ActivatedAt *string `json:"activated_at"`
	}

	var req CreateSprintRequest
	if !bindJSON(c, &req) {
		return
	}

	input := services.CreateSprintInput{
		WorkspaceID: req.WorkspaceID,
		Name:        req.Name,
		Goal:        req.Goal,
		ActivateNow: req.ActivateNow,
	}

	var err error
	if input.StartDate, err = parseDate("start_date", req.StartDate); err != nil {
		apierrors.BadRequest(c, err.Error())
		return
	}
	if input.EndDate, err = parseDate("end_date", req.EndDate); err != nil {
		apierrors.BadRequest(c, err.Error())
		return
	}
	if input.ActivatedAt, err = parseDate("activated_at", req.ActivatedAt); err != nil {
		apierrors.BadRequest(c, err.Error())
		return
	}

	sprint, err := h.sprintService.CreateSprint(c.Request.Context(), input)
	if err != nil {
		apierrors.RespondWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToSprintDTO(*sprint))
}

// ListSprints returns the sprints of a workspace, optionally filtered by state.
func (h *SprintHandler) ListSprints(c *gin.Context) {
	workspaceID, ok := requiredQueryID(c, "workspace_id")
	if !ok {
		return
	}

	var state *models.SprintState
	if raw := c.Query("state"); raw != "" {
		parsed, valid := models.ParseSprintState(raw)
		if !valid {
			apierrors.BadRequest(c, "state must be one of planned, active, closed")
			return
		}
		state = &parsed
	}

	sprints, err := h.sprintService.ListSprints(c.Request.Context(), workspaceID, state)
	if err != nil {
		apierrors.RespondWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToSprintListResponse(sprints))
}

// GetSprint returns a sprint by ID.
func (h *SprintHandler) GetSprint(c *gin.Context) {
	id, ok := resourceID(c, "sprint")
	if !ok {
		return
	}

	sprint, err := h.sprintService.GetSprint(c.Request.Context(), id)
	if err != nil {
		apierrors.RespondWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToSprintDTO(*sprint))
}

// UpdateSprint applies a partial update. is_active=true activates the sprint.
func (h *SprintHandler) UpdateSprint(c *gin.Context) {
	type UpdateSprintRequest struct {
		Name           *string `json:"name"`
		Goal           *string `json:"goal"`
		StartDate      *string `json:"start_date"`
		EndDate        *string `json:"end_date"`
		ClearStartDate bool    `json:"clear_start_date"`
		ClearEndDate   bool    `json:"clear_end_date"`
		IsActive       *bool   `json:"is_active"`
	}

	id, ok := resourceID(c, "sprint")
	if !ok {
		return
	}

	var req UpdateSprintRequest
	if !bindJSON(c, &req) {
		return
	}

	input := services.UpdateSprintInput{
		Name:           req.Name,
		Goal:           req.Goal,
		ClearStartDate: req.ClearStartDate,
		ClearEndDate:   req.ClearEndDate,
		IsActive:       req.IsActive,
	}

	var err error
	if input.StartDate, err = parseDate("start_date", req.StartDate); err != nil {
		apierrors.BadRequest(c, err.Error())
		return
	}
	if input.EndDate, err = parseDate("end_date", req.EndDate); err != nil {
		apierrors.BadRequest(c, err.Error())
		return
	}

	sprint, err := h.sprintService.UpdateSprint(c.Request.Context(), id, input)
	if err != nil {
		apierrors.RespondWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToSprintDTO(*sprint))
}

// ActivateSprint starts a planned sprint.
func (h *SprintHandler) ActivateSprint(c *gin.Context) {
	id, ok := resourceID(c, "sprint")
	if !ok {
		return
	}

	sprint, err := h.sprintService.ActivateSprint(c.Request.Context(), id)
	if err != nil {
		apierrors.RespondWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToSprintDTO(*sprint))
}

// CloseSprint closes a sprint. The optional body selects where unfinished
// tasks go: {"to":"backlog"} (default) or {"to":"sprint","sprint_id":N}.
// A sprint_id without a sprint target is rejected.
func (h *SprintHandler) CloseSprint(c *gin.Context) {
	type CloseSprintRequest struct {
		To       services.MigrationTarget `json:"to"`
		Move     services.MigrationTarget `json:"move"`
		SprintID *uint64                  `json:"sprint_id"`
	}

	id, ok := resourceID(c, "sprint")
	if !ok {
		return
	}

	var req CloseSprintRequest
	if c.Request.ContentLength != 0 && !bindJSON(c, &req) {
		return
	}

	// "move" is accepted as another name for "to".
	target := req.To
	if req.Move != "" {
		if target != "" && target != req.Move {
			apierrors.BadRequest(c, "to and move name different targets")
			return
		}
		target = req.Move
	}

	sprint, moved, err := h.sprintService.CloseSprint(c.Request.Context(), id, services.Migration{
		To:       target,
		SprintID: req.SprintID,
	})
	if err != nil {
		apierrors.RespondWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.CloseSprintResponse{
		Sprint:     dto.ToSprintDTO(*sprint),
		MovedCount: moved,
	})
}

// BulkDeleteSprints deletes sprints by ID. Their tasks return to the backlog.
func (h *SprintHandler) BulkDeleteSprints(c *gin.Context) {
	type BulkDeleteRequest struct {
		IDs []uint64 `json:"ids" binding:"required,min=1"`
	}

	var req BulkDeleteRequest
	if !bindJSON(c, &req) {
		return
	}

	deleted, err := h.sprintService.DeleteSprints(c.Request.Context(), req.IDs)
	if err != nil {
		apierrors.RespondWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.BulkDeleteResponse{Deleted: deleted})
}
