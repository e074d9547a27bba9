package http

import (
	"errors"
	"net/http"

	"github.com/emsdesk/emsdesk/internal/auth/service"
	"github.com/emsdesk/emsdesk/internal/auth/store"
	"github.com/emsdesk/emsdesk/pkg/httpx"
)

// writeServiceError maps the service sentinels onto the error envelope.
// Anything unrecognised is a 500 with a generic message; the real error
// stays in the logs.
func writeServiceError(w http.ResponseWriter, err error) {
	var policyErr *service.PolicyError
	var conflict *store.ConflictError

	switch {
	case errors.As(err, &policyErr):
		httpx.WriteError(w, http.StatusNotAcceptable,
			"Password does not meet the security requirements", policyErr.Violations)

	case errors.As(err, &conflict):
		httpx.WriteError(w, http.StatusBadRequest,
			"A user with this "+conflict.Field+" already exists",
			map[string]string{conflict.Field: "already in use"})

	case errors.Is(err, service.ErrInvalidCredentials):
		httpx.WriteError(w, http.StatusUnauthorized, "Invalid credentials", nil)

	case errors.Is(err, service.ErrInvalidToken):
		httpx.WriteError(w, http.StatusBadRequest, "Invalid token", nil)

	case errors.Is(err, service.ErrUserNotFound):
		httpx.WriteError(w, http.StatusNotFound, "User not found", nil)

	case errors.Is(err, service.ErrOTPInvalid):
		httpx.WriteError(w, http.StatusBadRequest, "Invalid or expired OTP", nil)

	case errors.Is(err, service.ErrTOTPAlreadyEnabled):
		httpx.WriteError(w, http.StatusBadRequest, "2FA is already enabled", nil)

	case errors.Is(err, service.ErrTOTPNotEnabled):
		httpx.WriteError(w, http.StatusBadRequest, "2FA is not enabled", nil)

	case errors.Is(err, service.ErrTOTPInvalidCode):
		httpx.WriteError(w, http.StatusBadRequest, "Invalid TOTP code", nil)

	case errors.Is(err, service.ErrTOTPNotFound):
		httpx.WriteError(w, http.StatusBadRequest, "No 2FA configuration found", nil)

	case errors.Is(err, service.ErrTOTPCodeRequired):
		httpx.WriteError(w, http.StatusBadRequest, "TOTP code is required", nil)

	case errors.Is(err, service.ErrInvalidRole):
		httpx.WriteError(w, http.StatusBadRequest, "Invalid role", nil)

	default:
		httpx.WriteError(w, http.StatusInternalServerError, "Something went wrong", nil)
	}
}
