package apperror

import (
	"errors"
	"net/http"
)

// Kind classifies an error independently of its HTTP status so callers can
// branch without string matching.
type Kind string

const (
	KindAlreadyRegistered     Kind = "already_registered"
	KindInvalidOrExpiredToken Kind = "invalid_or_expired_token"
	KindTokenExpired          Kind = "token_expired"
	KindNotRegistered         Kind = "not_registered"
	KindNotVerified           Kind = "not_verified"
	KindUnauthenticated       Kind = "unauthenticated"
	KindSessionExpired        Kind = "session_expired"
	KindInvalidSession        Kind = "invalid_session"
	KindProfileLocked         Kind = "profile_locked"
	KindDuplicateField        Kind = "duplicate_field"
	KindAlreadyApplied        Kind = "already_applied"
	KindEmailDispatchFailed   Kind = "email_dispatch_failed"
	KindValidation            Kind = "validation"
	KindForbidden             Kind = "forbidden"
	KindNotFound              Kind = "not_found"
	KindConflict              Kind = "conflict"
	KindUnavailable           Kind = "unavailable"
	KindInternal              Kind = "internal"
)

type AppError struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Kind    Kind            `json:"kind"`
	Flags   map[string]bool `json:"-"`
	Err     error           `json:"-"`
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// WithFlag returns the error with a boolean flag that is rendered at the top
// level of the error body.
func (e *AppError) WithFlag(name string) *AppError {
	if e.Flags == nil {
		e.Flags = make(map[string]bool, 1)
	}
	e.Flags[name] = true
	return e
}

func New(code int, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Kind:    kindForStatus(code),
		Err:     err,
	}
}

// NewKind builds an error of a specific domain kind.
func NewKind(kind Kind, code int, message string) *AppError {
	return &AppError{Code: code, Message: message, Kind: kind}
}

func BadRequest(message string) *AppError {
	return New(http.StatusBadRequest, message, nil)
}

func Unauthorized(message string) *AppError {
	return New(http.StatusUnauthorized, message, nil)
}

func Forbidden(message string) *AppError {
	return New(http.StatusForbidden, message, nil)
}

func NotFound(message string) *AppError {
	return New(http.StatusNotFound, message, nil)
}

func Conflict(message string) *AppError {
	return New(http.StatusConflict, message, nil)
}

func Unavailable(message string, err error) *AppError {
	return New(http.StatusServiceUnavailable, message, err)
}

func Internal(err error) *AppError {
	return New(http.StatusInternalServerError, "Internal Server Error", err)
}

// KindOf reports the Kind of err, or KindInternal when err is not an AppError.
func KindOf(err error) Kind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

func kindForStatus(code int) Kind {
	switch code {
	case http.StatusBadRequest:
		return KindValidation
	case http.StatusUnauthorized:
		return KindUnauthenticated
	case http.StatusForbidden:
		return KindForbidden
	case http.StatusNotFound:
		return KindNotFound
	case http.StatusConflict:
		return KindConflict
	case http.StatusServiceUnavailable:
		return KindUnavailable
	default:
		return KindInternal
	}
}
