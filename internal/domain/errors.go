package domain

import (
	"errors"
	"net/http"

	"careers-backend/pkg/apperror"
)

// Repository sentinels. Usecases translate these into AppErrors.
var (
	ErrAlreadyVerified      = errors.New("candidate already verified")
	ErrDuplicateNationalID  = errors.New("national id already registered")
	ErrDuplicateApplication = errors.New("application already exists")
	ErrNotFound             = errors.New("record not found")
)

// Error flags understood by clients.
const (
	FlagNotRegistered   = "notRegistered"
	FlagNotVerified     = "notVerified"
	FlagExpired         = "expired"
	FlagAlreadyVerified = "alreadyVerified"
	FlagAlreadyApplied  = "alreadyApplied"
	FlagLocked          = "locked"
	FlagDuplicate       = "duplicate"
)

func ErrAlreadyRegistered() *apperror.AppError {
	return apperror.NewKind(apperror.KindAlreadyRegistered, http.StatusConflict,
		"This email is already registered and verified. Please log in instead.").WithFlag(FlagAlreadyVerified)
}

func ErrInvalidOrExpiredToken() *apperror.AppError {
	return apperror.NewKind(apperror.KindInvalidOrExpiredToken, http.StatusBadRequest,
		"Invalid or expired link. Please request a new one.")
}

func ErrTokenExpired() *apperror.AppError {
	return apperror.NewKind(apperror.KindTokenExpired, http.StatusBadRequest,
		"This link has expired. Please request a new one.").WithFlag(FlagExpired)
}

func ErrNotRegistered() *apperror.AppError {
	return apperror.NewKind(apperror.KindNotRegistered, http.StatusNotFound,
		"No account found for this email. Please register first.").WithFlag(FlagNotRegistered)
}

func ErrNotVerified() *apperror.AppError {
	return apperror.NewKind(apperror.KindNotVerified, http.StatusForbidden,
		"Please verify your email before continuing.").WithFlag(FlagNotVerified)
}

func ErrUnauthenticated() *apperror.AppError {
	return apperror.NewKind(apperror.KindUnauthenticated, http.StatusUnauthorized,
		"Not authenticated. Please log in.")
}

func ErrSessionExpired() *apperror.AppError {
	return apperror.NewKind(apperror.KindSessionExpired, http.StatusUnauthorized,
		"Session expired. Please log in again.").WithFlag(FlagExpired)
}

func ErrInvalidSession() *apperror.AppError {
	return apperror.NewKind(apperror.KindInvalidSession, http.StatusUnauthorized,
		"Invalid session. Please log in again.")
}

func ErrProfileLocked() *apperror.AppError {
	return apperror.NewKind(apperror.KindProfileLocked, http.StatusForbidden,
		"Your profile is locked because you have already submitted an application.").WithFlag(FlagLocked)
}

func ErrDuplicateField(message string) *apperror.AppError {
	return apperror.NewKind(apperror.KindDuplicateField, http.StatusConflict, message).WithFlag(FlagDuplicate)
}

func ErrAlreadyApplied() *apperror.AppError {
	return apperror.NewKind(apperror.KindAlreadyApplied, http.StatusConflict,
		"You have already applied for this job.").WithFlag(FlagAlreadyApplied)
}

func ErrEmailDispatchFailed(err error) *apperror.AppError {
	e := apperror.NewKind(apperror.KindEmailDispatchFailed, http.StatusServiceUnavailable,
		"We could not send the email right now. Please try again shortly.")
	e.Err = err
	return e
}
