package response

import (
	"fmt"
	"net/http"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Err is the error body every endpoint renders. The wrapped cause is kept
// for logging and never serialized.
type Err struct {
	cause error

	StatusCode int    `json:"-"`
	ErrorMsg   string `json:"error"`
	RequestID  string `json:"request_id,omitempty"`
}

func (e *Err) Error() string {
	return e.ErrorMsg
}

func NewErr(statusCode int, err error) *Err {
	return &Err{
		cause:      err,
		StatusCode: statusCode,
		ErrorMsg:   err.Error(),
	}
}

func ErrBadRequest(err error) *Err {
	return NewErr(http.StatusBadRequest, err)
}

func ErrUnauthorized(err error) *Err {
	return NewErr(http.StatusUnauthorized, err)
}

func ErrPermissionDenied(err error) *Err {
	return NewErr(http.StatusForbidden, err)
}

func ErrNotFound(resource, key string, value any) *Err {
	return &Err{
		StatusCode: http.StatusNotFound,
		ErrorMsg:   fmt.Sprintf("%v with %v (%v) not found", resource, key, value),
	}
}

func ErrConflict(err error) *Err {
	return NewErr(http.StatusConflict, err)
}

func ErrInternalServerError(err error) *Err {
	return &Err{
		cause:      err,
		StatusCode: http.StatusInternalServerError,
		ErrorMsg:   "internal server error",
	}
}

// RenderErr writes the error response. Server-side failures log the cause;
// client errors don't clutter the log.
func RenderErr(ctx *gin.Context, err *Err) {
	err.RequestID = requestid.Get(ctx)

	if err.StatusCode >= http.StatusInternalServerError {
		zap.L().Error("request failed",
			zap.String("request_id", err.RequestID),
			zap.Int("status", err.StatusCode),
			zap.Error(err.cause))
	}

	ctx.AbortWithStatusJSON(err.StatusCode, err)
}
