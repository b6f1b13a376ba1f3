package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/sprint-tracker-api/internal/dto"
	apierrors "github.com/yukikurage/sprint-tracker-api/internal/errors"
	"github.com/yukikurage/sprint-tracker-api/internal/middleware"
	"github.com/yukikurage/sprint-tracker-api/internal/models"
	"github.com/yukikurage/sprint-tracker-api/internal/services"
	"github.com/yukikurage/sprint-tracker-api/internal/utils"
)

type TaskHandler struct {
	taskService *services.TaskService
}

func NewTaskHandler(taskService *services.TaskService) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
	}
}

// ListTasks returns the tasks of a workspace.
// Filters: sprint_id, backlog=true, epic_id, step_id
func (h *TaskHandler) ListTasks(c *gin.Context) {
	workspaceID, ok := requiredQueryID(c, "workspace_id")
	if !ok {
		return
	}
	sprintID, ok := optionalQueryID(c, "sprint_id")
	if !ok {
		return
	}
	epicID, ok := optionalQueryID(c, "epic_id")
	if !ok {
		return
	}
	stepID, ok := optionalQueryID(c, "step_id")
	if !ok {
		return
	}

	params := utils.GetPaginationParams(c)

	tasks, total, err := h.taskService.ListTasks(c.Request.Context(), services.ListTasksInput{
		WorkspaceID: workspaceID,
		SprintID:    sprintID,
		BacklogOnly: c.Query("backlog") == "true",
		EpicID:      epicID,
		StepID:      stepID,
		Pagination:  params,
	})
	if err != nil {
		apierrors.RespondWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskListResponse(tasks, params.Page, params.Limit, total))
}

// GetTask returns a specific task by ID
func (h *TaskHandler) GetTask(c *gin.Context) {
	id, ok := resourceID(c, "task")
	if !ok {
		return
	}

	task, err := h.taskService.GetTask(c.Request.Context(), id)
	if err != nil {
		apierrors.RespondWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}

// CreateTask creates a new task reported by the current user
func (h *TaskHandler) CreateTask(c *gin.Context) {
	type CreateTaskRequest struct {
		WorkspaceID uint64            `json:"workspace_id" binding:"required"`
		Title       string            `json:"title" binding:"required"`
		Description string            `json:"description"`
		Status      models.TaskStatus `json:"status"`
		StepID      uint64            `json:"step_id" binding:"required"`
		SprintID    *uint64           `json:"sprint_id"`
		EpicID      *uint64           `json:"epic_id"`
		PriorityID  uint64            `json:"priority_id"`
		TypeTaskID  uint64            `json:"type_task_id"`
		AssigneeID  *uint64           `json:"assignee_id"`
	}

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	var req CreateTaskRequest
	if !bindJSON(c, &req) {
		return
	}

	task, err := h.taskService.CreateTask(c.Request.Context(), services.CreateTaskInput{
		WorkspaceID: req.WorkspaceID,
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		StepID:      req.StepID,
		SprintID:    req.SprintID,
		EpicID:      req.EpicID,
		PriorityID:  req.PriorityID,
		TypeTaskID:  req.TypeTaskID,
		ReporterID:  userID,
		AssigneeID:  req.AssigneeID,
	})
	if err != nil {
		apierrors.RespondWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToTaskDTO(*task))
}

// UpdateTask applies a partial update. clear_* flags unset the nullable references.
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	type UpdateTaskRequest struct {
		Title         *string            `json:"title"`
		Description   *string            `json:"description"`
		Status        *models.TaskStatus `json:"status"`
		StepID        *uint64            `json:"step_id"`
		SprintID      *uint64            `json:"sprint_id"`
		ClearSprint   bool               `json:"clear_sprint"`
		EpicID        *uint64            `json:"epic_id"`
		ClearEpic     bool               `json:"clear_epic"`
		AssigneeID    *uint64            `json:"assignee_id"`
		ClearAssignee bool               `json:"clear_assignee"`
		PriorityID    *uint64            `json:"priority_id"`
		TypeTaskID    *uint64            `json:"type_task_id"`
	}

	id, ok := resourceID(c, "task")
	if !ok {
		return
	}

	var req UpdateTaskRequest
	if !bindJSON(c, &req) {
		return
	}

	task, err := h.taskService.UpdateTask(c.Request.Context(), id, services.UpdateTaskInput{
		Title:         req.Title,
		Description:   req.Description,
		Status:        req.Status,
		StepID:        req.StepID,
		SprintID:      req.SprintID,
		ClearSprint:   req.ClearSprint,
		EpicID:        req.EpicID,
		ClearEpic:     req.ClearEpic,
		AssigneeID:    req.AssigneeID,
		ClearAssignee: req.ClearAssignee,
		PriorityID:    req.PriorityID,
		TypeTaskID:    req.TypeTaskID,
	})
	if err != nil {
		apierrors.RespondWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}

// MoveTask changes the step of a task
func (h *TaskHandler) MoveTask(c *gin.Context) {
	type MoveTaskRequest struct {
		StepID uint64 `json:"step_id" binding:"required"`
	}

	id, ok := resourceID(c, "task")
	if !ok {
		return
	}

	var req MoveTaskRequest
	if !bindJSON(c, &req) {
		return
	}

	task, err := h.taskService.MoveTask(c.Request.Context(), id, req.StepID)
	if err != nil {
		apierrors.RespondWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}

// MoveTasksByKeys moves tasks identified by display key to a step of the
// workspace in the path
func (h *TaskHandler) MoveTasksByKeys(c *gin.Context) {
	type MoveByKeysRequest struct {
		Keys   []string `json:"keys" binding:"required,min=1"`
		StepID uint64   `json:"step_id" binding:"required"`
	}

	workspaceID, ok := resourceID(c, "workspace")
	if !ok {
		return
	}

	var req MoveByKeysRequest
	if !bindJSON(c, &req) {
		return
	}

	moved, err := h.taskService.MoveTasksByKeys(c.Request.Context(), workspaceID, req.Keys, req.StepID)
	if err != nil {
		apierrors.RespondWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.MoveByKeysResponse{Moved: moved})
}

// DeleteTask deletes a task that is not attached to an epic
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	id, ok := resourceID(c, "task")
	if !ok {
		return
	}

	if err := h.taskService.DeleteTask(c.Request.Context(), id); err != nil {
		apierrors.RespondWithServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
