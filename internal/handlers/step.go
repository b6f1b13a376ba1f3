package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/sprint-tracker-api/internal/dto"
	apierrors "github.com/yukikurage/sprint-tracker-api/internal/errors"
	"github.com/yukikurage/sprint-tracker-api/internal/services"
)

type StepHandler struct {
	stepService *services.StepService
}

func NewStepHandler(stepService *services.StepService) *StepHandler {
	return &StepHandler{stepService: stepService}
}

// CreateStep adds a step to the catalogue
func (h *StepHandler) CreateStep(c *gin.Context) {
	type CreateStepRequest struct {
		Name string `json:"name" binding:"required,max=100"`
	}

	var req CreateStepRequest
	if !bindJSON(c, &req) {
		return
	}

	step, err := h.stepService.CreateStep(c.Request.Context(), req.Name)
	if err != nil {
		apierrors.RespondWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToStepDTO(*step))
}

// ListSteps returns the whole catalogue
func (h *StepHandler) ListSteps(c *gin.Context) {
	steps, err := h.stepService.ListSteps(c.Request.Context())
	if err != nil {
		apierrors.RespondWithServiceError(c, err)
		return
	}

	items := make([]dto.StepDTO, len(steps))
	for i, s := range steps {
		items[i] = dto.ToStepDTO(s)
	}
	c.JSON(http.StatusOK, gin.H{"steps": items})
}
