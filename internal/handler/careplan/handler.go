package careplan

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/careloop/careops-api/internal/handler"
	"github.com/careloop/careops-api/internal/model"
	"github.com/careloop/careops-api/internal/service/lifecycle"
)

type Handler struct {
	service lifecycle.LifecycleService
}

func NewHandler(service lifecycle.LifecycleService) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	plans := r.Group("/care-plans")
	{
		plans.POST("", h.CreateCarePlan)
		plans.GET("/:id", h.GetCarePlan)
		plans.POST("/:id/close", h.CloseCarePlan)
	}
	r.GET("/clients/:id/care-plans", h.ListClientCarePlans)
	r.GET("/clients/:id/care-plans/active", h.GetActiveCarePlan)
}

// CreateCarePlan synthesizes a plan from an approved assessment and activates
// it, superseding any previously active plan for the client.
func (h *Handler) CreateCarePlan(c *gin.Context) {
	var req model.CreateCarePlanFromAssessmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	assessmentID, err := uuid.Parse(req.AssessmentID)
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid assessment ID"))
		return
	}

	plan, err := h.service.CreateCarePlanFromAssessment(c.Request.Context(), assessmentID, req.CreatedBy, req.Overrides)
	if err != nil {
		handler.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, handler.NewSuccessResponse(plan))
}

func (h *Handler) GetCarePlan(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid care plan ID"))
		return
	}

	plan, err := h.service.GetCarePlan(c.Request.Context(), id)
	if err != nil {
		handler.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(plan))
}

func (h *Handler) CloseCarePlan(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid care plan ID"))
		return
	}

	var req struct {
		Actor string `json:"actor" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	if err := h.service.CloseCarePlan(c.Request.Context(), id, req.Actor); err != nil {
		handler.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(nil))
}

func (h *Handler) ListClientCarePlans(c *gin.Context) {
	clientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid client ID"))
		return
	}

	plans, err := h.service.ListCarePlansForClient(c.Request.Context(), clientID)
	if err != nil {
		handler.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(plans))
}

func (h *Handler) GetActiveCarePlan(c *gin.Context) {
	clientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid client ID"))
		return
	}

	plan, err := h.service.GetActiveCarePlan(c.Request.Context(), clientID)
	if err != nil {
		handler.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(plan))
}
