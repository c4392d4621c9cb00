package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/breatheeasy/internal/domain/dashboard"
)

// HTTPError captures the metadata required to serialize an error response consistently.
type HTTPError struct {
	Status  int
	Code    string
	Message string
	Err     error
}

// Error implements the error interface.
func (e *HTTPError) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

// Unwrap exposes the underlying cause.
func (e *HTTPError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// NewHTTPError is a helper to build an HTTPError instance.
func NewHTTPError(status int, code, message string, err error) *HTTPError {
	return &HTTPError{Status: status, Code: code, Message: message, Err: err}
}

func asHTTPError(err error) *HTTPError {
	if err == nil {
		return nil
	}
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}
	return &HTTPError{
		Status:  http.StatusInternalServerError,
		Code:    "internal_error",
		Message: "something went wrong",
		Err:     err,
	}
}

// sessionError maps dashboard errors onto transport errors.
func sessionError(err error) *HTTPError {
	status, code := http.StatusInternalServerError, "session_failed"
	switch {
	case errors.Is(err, dashboard.ErrEmptyLocation),
		errors.Is(err, dashboard.ErrEmptyMessage),
		errors.Is(err, dashboard.ErrEmptyText):
		status, code = http.StatusBadRequest, "invalid_request"
	case errors.Is(err, dashboard.ErrSearchPending),
		errors.Is(err, dashboard.ErrChatPending),
		errors.Is(err, dashboard.ErrAlreadySpeaking),
		errors.Is(err, dashboard.ErrIllegalTransition),
		errors.Is(err, dashboard.ErrUnknownClip):
		status, code = http.StatusConflict, "conflict"
	case errors.Is(err, dashboard.ErrVoiceUnsupported),
		errors.Is(err, dashboard.ErrVoiceDisabled):
		status, code = http.StatusUnprocessableEntity, "voice_unavailable"
	case errors.Is(err, dashboard.ErrSessionClosed):
		status, code = http.StatusGone, "session_closed"
	case errors.Is(err, dashboard.ErrTooManySessions):
		status, code = http.StatusServiceUnavailable, "too_many_sessions"
	}
	return NewHTTPError(status, code, errMessage(err), err)
}

func abortWithError(c *gin.Context, err *HTTPError) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func errMessage(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
