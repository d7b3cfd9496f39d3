package timeline

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
	r.GET("/clients/:id/timeline", h.ListClientTimeline)
}

// ListClientTimeline returns the client's audit trail, newest first. The
// timeline is read-only over the API; only lifecycle transitions append to it.
func (h *Handler) ListClientTimeline(c *gin.Context) {
	clientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid client ID"))
		return
	}

	filters := &model.TimelineFilters{
		ClientID: clientID,
		Type:     model.TimelineEventType(c.Query("type")),
	}

	events, err := h.service.ListTimeline(c.Request.Context(), filters)
	if err != nil {
		handler.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(events))
}
