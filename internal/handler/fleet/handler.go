package fleet

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/careloop/careops-api/internal/handler"
	"github.com/careloop/careops-api/internal/model"
	"github.com/careloop/careops-api/internal/service/fleet"
)

type Handler struct {
	service fleet.FleetService
}

func NewHandler(service fleet.FleetService) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	devices := r.Group("/devices")
	{
		devices.POST("", h.CreateDevice)
		devices.GET("", h.ListDevices)
		devices.PUT("/:id/assign", h.AssignDevice)
		devices.PUT("/:id/status", h.UpdateDeviceStatus)
	}

	jobs := r.Group("/jobs")
	{
		jobs.POST("", h.CreateJob)
		jobs.GET("", h.ListJobs)
		jobs.PUT("/:id/status", h.UpdateJobStatus)
	}

	exceptions := r.Group("/exceptions")
	{
		exceptions.POST("", h.RaiseException)
		exceptions.GET("", h.ListExceptions)
	}
}

func (h *Handler) CreateDevice(c *gin.Context) {
	var req model.CreateDeviceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	device, err := h.service.CreateDevice(c.Request.Context(), &req)
	if err != nil {
		handler.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, handler.NewSuccessResponse(device))
}

func (h *Handler) ListDevices(c *gin.Context) {
	filters := &model.DeviceFilters{
		Status: model.DeviceStatus(c.Query("status")),
	}
	if org := c.Query("care_org_id"); org != "" {
		id, err := uuid.Parse(org)
		if err != nil {
			c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid care org ID"))
			return
		}
		filters.CareOrgID = id
	}
	if client := c.Query("client_id"); client != "" {
		id, err := uuid.Parse(client)
		if err != nil {
			c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid client ID"))
			return
		}
		filters.ClientID = id
	}

	devices, err := h.service.ListDevices(c.Request.Context(), filters)
	if err != nil {
		handler.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(devices))
}

func (h *Handler) AssignDevice(c *gin.Context) {
	deviceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid device ID"))
		return
	}

	var req struct {
		ClientID string `json:"client_id" binding:"required,uuid"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}
	clientID, err := uuid.Parse(req.ClientID)
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid client ID"))
		return
	}

	if err := h.service.AssignDevice(c.Request.Context(), deviceID, clientID); err != nil {
		handler.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(nil))
}

func (h *Handler) UpdateDeviceStatus(c *gin.Context) {
	deviceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid device ID"))
		return
	}

	var req struct {
		Status model.DeviceStatus `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	if err := h.service.UpdateDeviceStatus(c.Request.Context(), deviceID, req.Status); err != nil {
		handler.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(nil))
}

func (h *Handler) CreateJob(c *gin.Context) {
	var req model.CreateJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	job, err := h.service.CreateJob(c.Request.Context(), &req)
	if err != nil {
		handler.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, handler.NewSuccessResponse(job))
}

func (h *Handler) ListJobs(c *gin.Context) {
	filters := &model.JobFilters{
		AssignedTo: c.Query("assigned_to"),
		Status:     model.JobStatus(c.Query("status")),
	}
	if client := c.Query("client_id"); client != "" {
		id, err := uuid.Parse(client)
		if err != nil {
			c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid client ID"))
			return
		}
		filters.ClientID = id
	}

	jobs, err := h.service.ListJobs(c.Request.Context(), filters)
	if err != nil {
		handler.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(jobs))
}

func (h *Handler) UpdateJobStatus(c *gin.Context) {
	jobID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid job ID"))
		return
	}

	var req struct {
		Status model.JobStatus `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	if err := h.service.UpdateJobStatus(c.Request.Context(), jobID, req.Status); err != nil {
		handler.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(nil))
}

func (h *Handler) RaiseException(c *gin.Context) {
	var req model.CreateExceptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	record, err := h.service.RaiseException(c.Request.Context(), &req)
	if err != nil {
		handler.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, handler.NewSuccessResponse(record))
}

func (h *Handler) ListExceptions(c *gin.Context) {
	filters := &model.ExceptionFilters{
		Status: model.ExceptionStatus(c.Query("status")),
	}
	if caseID := c.Query("case_id"); caseID != "" {
		id, err := uuid.Parse(caseID)
		if err != nil {
			c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid case ID"))
			return
		}
		filters.CaseID = id
	}

	records, err := h.service.ListExceptions(c.Request.Context(), filters)
	if err != nil {
		handler.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(records))
}
