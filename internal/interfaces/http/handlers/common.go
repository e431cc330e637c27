// Package handlers holds the gin handlers of the HTTP API.
package handlers

import (
	"context"
	stderrors "errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/KeyIP-Continuity/internal/interfaces/http/middleware"
	"github.com/turtacn/KeyIP-Continuity/pkg/errors"
)

// ErrorResponse is the standard error response body.
type ErrorResponse struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Detail    string `json:"detail,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// writeAppError maps err to its HTTP status.  An expired request deadline is
// a 504.  Server-side failures that are not upstream problems are masked.
func writeAppError(c *gin.Context, err error) {
	if stderrors.Is(err, context.DeadlineExceeded) && errors.GetCode(err) == errors.CodeUnknown {
		err = errors.Wrap(err, errors.ErrCodeTimeout, "request timed out")
	}
	code := errors.GetCode(err)
	status := errors.HTTPStatusForCode(code)
	resp := ErrorResponse{
		Code:      code.String(),
		Message:   err.Error(),
		RequestID: middleware.GetRequestID(c),
	}
	if status == http.StatusInternalServerError {
		resp.Code = errors.CodeInternal.String()
		resp.Message = "internal server error"
	}
	var ae *errors.AppError
	if stderrors.As(err, &ae) && status != http.StatusInternalServerError {
		resp.Message = ae.Message
		resp.Detail = ae.Detail
	}
	c.AbortWithStatusJSON(status, resp)
}

//Personal.AI order the ending
