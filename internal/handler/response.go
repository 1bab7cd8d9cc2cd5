package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/Kadu1982/sistema2-sub001/pkg/errors"
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

// RespondError maps application errors to their HTTP status; anything
// unclassified is a 500.
func RespondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	if appErr, ok := apperrors.As(err); ok {
		status = appErr.StatusCode()
	}
	c.JSON(status, NewErrorResponse(err.Error()))
}
