package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/careloop/careops-api/pkg/errors"
)

type Response struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

func NewSuccessResponse(data interface{}) *Response {
	return &Response{
		Status: "success",
		Data:   data,
	}
}

func NewErrorResponse(message string) *Response {
	return &Response{
		Status:  "error",
		Message: message,
	}
}

// Error writes a service error with the status its domain code maps to.
// Lifecycle violations are conflicts, not server errors.
func Error(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch apperrors.CodeOf(err) {
	case apperrors.ErrNotFound:
		status = http.StatusNotFound
	case apperrors.ErrInvalidTransition, apperrors.ErrConflict:
		status = http.StatusConflict
	case apperrors.ErrValidation:
		status = http.StatusBadRequest
	}
	c.JSON(status, NewErrorResponse(err.Error()))
}
