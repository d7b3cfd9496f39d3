package order

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
	cases := r.Group("/cases")
	{
		cases.POST("", h.CreateCase)
		cases.GET("", h.ListCases)
		cases.GET("/:id", h.GetCase)
		cases.POST("/:id/approve", h.ApproveCase)
		cases.POST("/:id/advance", h.AdvanceCase)
	}
}

// CreateCase opens a fulfillment case in NEW. Items default to the client's
// care plan when none are given; the hand-off to fulfillment fires after the
// configured delay.
func (h *Handler) CreateCase(c *gin.Context) {
	var req model.CreateCaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	clientID, err := uuid.Parse(req.ClientID)
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid client ID"))
		return
	}
	orgID, err := uuid.Parse(req.CareOrgID)
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid care org ID"))
		return
	}

	input := &lifecycle.CreateCaseInput{
		ClientID:    clientID,
		CareOrgID:   orgID,
		Items:       req.Items,
		RequestedBy: req.RequestedBy,
	}
	if req.CarePlanID != "" {
		planID, err := uuid.Parse(req.CarePlanID)
		if err != nil {
			c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid care plan ID"))
			return
		}
		input.CarePlanID = &planID
	}

	created, err := h.service.CreateCase(c.Request.Context(), input)
	if err != nil {
		handler.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, handler.NewSuccessResponse(created))
}

func (h *Handler) GetCase(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid case ID"))
		return
	}

	found, err := h.service.GetCase(c.Request.Context(), id)
	if err != nil {
		handler.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(found))
}

func (h *Handler) ListCases(c *gin.Context) {
	filters := &model.CaseFilters{
		Status: model.CaseStatus(c.Query("status")),
	}
	if client := c.Query("client_id"); client != "" {
		id, err := uuid.Parse(client)
		if err != nil {
			c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid client ID"))
			return
		}
		filters.ClientID = id
	}
	if org := c.Query("care_org_id"); org != "" {
		id, err := uuid.Parse(org)
		if err != nil {
			c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid care org ID"))
			return
		}
		filters.CareOrgID = id
	}

	cases, err := h.service.ListCases(c.Request.Context(), filters)
	if err != nil {
		handler.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(cases))
}

func (h *Handler) ApproveCase(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid case ID"))
		return
	}

	var req struct {
		Actor string `json:"actor" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	if err := h.service.ApproveCase(c.Request.Context(), id, req.Actor); err != nil {
		handler.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(nil))
}

// AdvanceCase moves a case along the fulfillment pipeline. Only strictly
// forward moves are accepted; anything else is a conflict.
func (h *Handler) AdvanceCase(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid case ID"))
		return
	}

	var req model.AdvanceCaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	if err := h.service.AdvanceCase(c.Request.Context(), id, req.Status, req.Actor, req.Summary); err != nil {
		handler.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(nil))
}
