// Package response renders JSON bodies and error envelopes for the HTTP API.
package response

import (
	stderrors "errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/ClauseWise/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ClauseWise/pkg/errors"
)

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Detail    string `json:"detail,omitempty"`
	RequestID string `json:"request_id"`
}

// Page wraps one page of a list endpoint.
type Page[T any] struct {
	Items []T   `json:"items"`
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Size  int   `json:"size"`
}

// OK writes data with status 200.
func OK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}

// Accepted writes data with status 202.
func Accepted(c *gin.Context, data interface{}) {
	c.JSON(http.StatusAccepted, data)
}

// Error maps err to its HTTP status and writes the error envelope. Errors
// without an AppError code are reported as internal and their text is not
// echoed back.
func Error(c *gin.Context, err error) {
	c.AbortWithStatusJSON(errors.HTTPStatusForCode(errors.GetCode(err)), Body(c, err))
}

// Body builds the envelope for err without writing it.
func Body(c *gin.Context, err error) ErrorResponse {
	resp := ErrorResponse{RequestID: logging.RequestIDFromContext(c.Request.Context())}

	var ae *errors.AppError
	if stderrors.As(err, &ae) {
		resp.Code = string(ae.Code)
		resp.Message = ae.Message
		resp.Detail = ae.Detail
		return resp
	}
	resp.Code = string(errors.ErrCodeInternal)
	resp.Message = errors.DefaultMessageForCode(errors.ErrCodeInternal)
	return resp
}

//Personal.AI order the ending
