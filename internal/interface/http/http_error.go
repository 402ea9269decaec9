package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/yanqian/rencard-user/pkg/errors"
)

// HTTPError is an error that knows how it should be rendered.
type HTTPError struct {
	Status  int
	Code    string
	Message string
	Err     error
}

func (e *HTTPError) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

func (e *HTTPError) Unwrap() error {
	return e.Err
}

// NewHTTPError builds an HTTPError.
func NewHTTPError(status int, code, message string, err error) *HTTPError {
	return &HTTPError{Status: status, Code: code, Message: message, Err: err}
}

// failure classifies an unexpected service error. Storage outages become 503
// so clients and the retry middleware treat them as transient.
// The storage code is looked up through the whole chain because domain
// services wrap repository errors in their own code.
func failure(code, message string, err error) *HTTPError {
	if apperrors.HasCode(err, apperrors.CodeStorage) {
		return NewHTTPError(http.StatusServiceUnavailable, "storage_unavailable", "storage temporarily unavailable", err)
	}
	switch apperrors.CodeOf(err) {
	case apperrors.CodeInvalidInput:
		return NewHTTPError(http.StatusBadRequest, "invalid_request", message, err)
	case apperrors.CodeNotFound:
		return NewHTTPError(http.StatusNotFound, "not_found", message, err)
	default:
		return NewHTTPError(http.StatusInternalServerError, code, message, err)
	}
}

func asHTTPError(err error) *HTTPError {
	if err == nil {
		return nil
	}
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}
	return failure("internal_error", "something went wrong", err)
}

func abortWithError(c *gin.Context, err *HTTPError) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}
