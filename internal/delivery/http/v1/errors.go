package v1

import (
	"errors"
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/taskforge/taskforge/internal/services"
)

var (
	errInvalidRequestBody      = errors.New("invalid request body")
	errMandatoryCookieNotFound = errors.New("mandatory cookie not found")
)

type apiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func newAPIError(code int, message string) apiError {
	return apiError{
		Code:    code,
		Message: message,
	}
}

func (e apiError) Error() string {
	return e.Message
}

func abort(c *gin.Context, err apiError) {
	c.AbortWithStatusJSON(err.Code, gin.H{"error": err.Message})
}

func newStatusTextError(status int) apiError {
	return newAPIError(status, http.StatusText(status))
}

func newBadRequestError(message string) apiError {
	return newAPIError(http.StatusBadRequest, message)
}

func newUnauthorizedError(message string) apiError {
	return newAPIError(http.StatusUnauthorized, message)
}

func newConflictError(message string) apiError {
	return newAPIError(http.StatusConflict, message)
}

// abortWithServiceError maps the service error taxonomy onto HTTP
// statuses. The service message is surfaced verbatim.
func abortWithServiceError(c *gin.Context, err error) {
	var rateErr *services.RateLimitError
	var validationErr *services.ValidationError
	switch {
	case errors.Is(err, services.ErrNotAuthenticated):
		abort(c, newUnauthorizedError(err.Error()))
	case errors.As(err, &rateErr):
		seconds := int(math.Ceil(rateErr.RetryAfter.Seconds()))
		c.Header("Retry-After", strconv.Itoa(seconds))
		abort(c, newAPIError(http.StatusTooManyRequests, rateErr.Error()))
	case errors.Is(err, services.ErrNotFound):
		abort(c, newAPIError(http.StatusNotFound, err.Error()))
	case errors.Is(err, services.ErrNotAuthorized):
		abort(c, newAPIError(http.StatusForbidden, err.Error()))
	case errors.As(err, &validationErr):
		abort(c, newBadRequestError(validationErr.Error()))
	default:
		abort(c, newStatusTextError(http.StatusInternalServerError))
	}
}
