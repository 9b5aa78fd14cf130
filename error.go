package chatshare

import (
	"errors"
	"fmt"
	"net/http"
)

// Application error codes.
const (
	EINVALID        = "invalid"
	EINVALIDSCHEME  = "invalid_scheme"
	ESSRFBLOCKED    = "ssrf_blocked"
	EHOSTNOTALLOWED = "host_not_allowed"
	EFETCHFAILED    = "fetch_failed"
	EUPSTREAM       = "upstream_error"
	ETOOLARGE       = "response_too_large"
	EDECODEDEGRADED = "decode_degraded"
	ENOMESSAGES     = "no_messages"
	ERENDERFAILED   = "render_failed"
	EINTERNAL       = "internal"
)

// Error represents an application-specific error. Code is machine-readable,
// Message is safe to show to the caller.
type Error struct {
	Code    string
	Message string

	// Status is the upstream HTTP status code for EUPSTREAM errors.
	Status int
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("chatshare error: code=%s message=%s", e.Code, e.Message)
}

// Errorf is a helper function to return an Error with a given code and
// formatted message.
func Errorf(code string, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// UpstreamError returns an EUPSTREAM error for a non-success status code.
func UpstreamError(status int, url string) *Error {
	return &Error{
		Code:    EUPSTREAM,
		Message: fmt.Sprintf("upstream returned status %d for %s", status, url),
		Status:  status,
	}
}

// ErrorCode unwraps an application error and returns its code.
// Non-application errors always return EINTERNAL.
func ErrorCode(err error) string {
	var e *Error
	if err == nil {
		return ""
	} else if errors.As(err, &e) {
		return e.Code
	}
	return EINTERNAL
}

// ErrorMessage unwraps an application error and returns its message.
// Non-application errors always return "Internal error.".
func ErrorMessage(err error) string {
	var e *Error
	if err == nil {
		return ""
	} else if errors.As(err, &e) {
		return e.Message
	}
	return "Internal error."
}

// UpstreamStatus returns the upstream status code carried by an EUPSTREAM
// error, or 0.
func UpstreamStatus(err error) int {
	var e *Error
	if errors.As(err, &e) && e.Code == EUPSTREAM {
		return e.Status
	}
	return 0
}

// codes maps error codes to the HTTP status a request handler should use.
var codes = map[string]int{
	EINVALID:        http.StatusBadRequest,
	EINVALIDSCHEME:  http.StatusBadRequest,
	ESSRFBLOCKED:    http.StatusForbidden,
	EHOSTNOTALLOWED: http.StatusForbidden,
	EFETCHFAILED:    http.StatusBadGateway,
	EUPSTREAM:       http.StatusBadGateway,
	ETOOLARGE:       http.StatusBadGateway,
	ERENDERFAILED:   http.StatusBadGateway,
	EDECODEDEGRADED: http.StatusOK,
	ENOMESSAGES:     http.StatusOK,
	EINTERNAL:       http.StatusInternalServerError,
}

// HTTPStatus returns the HTTP status code for err. A nil error is 200:
// an empty transcript is a valid outcome, not a failure.
func HTTPStatus(err error) int {
	if err == nil {
		return http.StatusOK
	}
	if status, ok := codes[ErrorCode(err)]; ok {
		return status
	}
	return http.StatusInternalServerError
}
