package assessment

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
	assessments := r.Group("/assessments")
	{
		assessments.POST("", h.CreateAssessment)
		assessments.GET("/:id", h.GetAssessment)
		assessments.POST("/:id/approve", h.ApproveAssessment)
	}
	r.GET("/clients/:id/assessments", h.ListClientAssessments)
}

// CreateAssessment runs the intake classifier over the free-text fields and
// stores the result as a DRAFT with the frozen suggestion snapshot.
func (h *Handler) CreateAssessment(c *gin.Context) {
	var req model.CreateAssessmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	clientID, err := uuid.Parse(req.ClientID)
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid client ID"))
		return
	}

	created, err := h.service.CreateAssessment(c.Request.Context(), &lifecycle.CreateAssessmentInput{
		ClientID:     clientID,
		PerformedBy:  req.PerformedBy,
		Type:         req.Type,
		RiskLevel:    req.RiskLevel,
		NeedsSummary: req.NeedsSummary,
		Notes:        req.Notes,
	})
	if err != nil {
		handler.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, handler.NewSuccessResponse(created))
}

func (h *Handler) GetAssessment(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid assessment ID"))
		return
	}

	found, err := h.service.GetAssessment(c.Request.Context(), id)
	if err != nil {
		handler.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(found))
}

func (h *Handler) ListClientAssessments(c *gin.Context) {
	clientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid client ID"))
		return
	}

	assessments, err := h.service.ListAssessmentsForClient(c.Request.Context(), clientID)
	if err != nil {
		handler.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(assessments))
}

// ApproveAssessment freezes the reviewed device and service lists and moves
// the assessment to APPROVED. Approving twice is a conflict.
func (h *Handler) ApproveAssessment(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid assessment ID"))
		return
	}

	var req model.ApproveAssessmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	if err := h.service.ApproveAssessment(c.Request.Context(), id, req.ApprovedBy, req.FinalDevices, req.FinalServices); err != nil {
		handler.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(nil))
}
