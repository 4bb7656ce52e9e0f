package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/custodia-labs/listingtrail/internal/core/domain"
	"github.com/custodia-labs/listingtrail/internal/logger"
)

// SchemaVersion is the envelope version written on every response and
// required of request bodies that carry one.
const SchemaVersion = "v1"

// codeRateLimited is reported when the request limiter rejects a call.
const codeRateLimited = "RATE_LIMITED"

const (
	statusSuccess = "success"
	statusError   = "error"
)

type envelope struct {
	SchemaVersion string    `json:"schema_version"`
	Status        string    `json:"status"`
	Data          any       `json:"data,omitempty"`
	Error         *apiError `json:"error,omitempty"`
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func respondOK(c *gin.Context, status int, data any) {
	c.JSON(status, envelope{SchemaVersion: SchemaVersion, Status: statusSuccess, Data: data})
}

// respondError writes err with the transport status of its kind.
func respondError(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		logger.Error("%s %s: %v", c.Request.Method, c.FullPath(), err)
	}
	_ = c.Error(err)
	abortWith(c, status, domain.ErrorCode(err), err.Error())
}

func abortWith(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, envelope{
		SchemaVersion: SchemaVersion,
		Status:        statusError,
		Error:         &apiError{Code: code, Message: message},
	})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidArgument):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrConflict), errors.Is(err, domain.ErrInvalidState):
		return http.StatusConflict
	case errors.Is(err, domain.ErrNotImplemented):
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}
