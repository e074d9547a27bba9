package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/emsdesk/emsdesk/internal/auth/service"
	"github.com/emsdesk/emsdesk/internal/auth/store"
	"github.com/emsdesk/emsdesk/pkg/httpx"
	"github.com/emsdesk/emsdesk/pkg/slogx"
)

// AuthHandler serves the login, logout, token, and password flows.
type AuthHandler struct {
	AuthService *service.AuthService
}

type loginRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// HandleLogin handles POST /v1/auth/login. Exactly one of username and email
// must be supplied alongside the password.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "Invalid JSON body", nil)
		return
	}
	if req.Password == "" || (req.Username == "") == (req.Email == "") {
		httpx.WriteError(w, http.StatusBadRequest,
			"Provide a password and exactly one of username or email", nil)
		return
	}

	result, err := h.AuthService.Login(ctx, req.Username, req.Email, req.Password)
	if err != nil {
		if !errors.Is(err, service.ErrInvalidCredentials) {
			log.Error("login failed", "err", err)
		}
		writeServiceError(w, err)
		return
	}

	if result.Challenge != nil {
		httpx.WriteSuccess(w, http.StatusOK, "2FA verification required", result.Challenge)
		return
	}
	httpx.WriteSuccess(w, http.StatusOK, "Login successful", result.Pair)
}

type validateLoginOTPRequest struct {
	RefreshToken string `json:"refresh_token"`
	OTP          string `json:"otp"`
}

// HandleValidateLoginOTP handles POST /v1/auth/validate-login-otp, the
// second step of a challenged login.
func (h *AuthHandler) HandleValidateLoginOTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req validateLoginOTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "Invalid JSON body", nil)
		return
	}
	if req.RefreshToken == "" || req.OTP == "" {
		httpx.WriteError(w, http.StatusBadRequest, "refresh_token and otp are required", nil)
		return
	}

	pair, err := h.AuthService.ValidateLoginOTP(ctx, req.RefreshToken, req.OTP)
	if err != nil {
		if isUnexpected(err) {
			log.Error("login OTP validation failed", "err", err)
		}
		writeServiceError(w, err)
		return
	}

	httpx.WriteSuccess(w, http.StatusOK, "2FA verification successful", pair)
}

type refreshTokenRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// HandleLogout handles POST /v1/auth/logout.
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req refreshTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "Invalid JSON body", nil)
		return
	}
	if req.RefreshToken == "" {
		httpx.WriteError(w, http.StatusBadRequest, "refresh_token is required", nil)
		return
	}

	if err := h.AuthService.Logout(ctx, req.RefreshToken); err != nil {
		if isUnexpected(err) {
			log.Error("logout failed", "err", err)
		}
		writeServiceError(w, err)
		return
	}

	httpx.WriteSuccess(w, http.StatusOK, "Logged out successfully", nil)
}

// HandleRefreshToken handles POST /v1/auth/refresh-token.
func (h *AuthHandler) HandleRefreshToken(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req refreshTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "Invalid JSON body", nil)
		return
	}
	if req.RefreshToken == "" {
		httpx.WriteError(w, http.StatusBadRequest, "refresh_token is required", nil)
		return
	}

	pair, err := h.AuthService.RefreshToken(ctx, req.RefreshToken)
	if err != nil {
		if isUnexpected(err) {
			log.Error("token refresh failed", "err", err)
		}
		writeServiceError(w, err)
		return
	}

	httpx.WriteSuccess(w, http.StatusOK, "Token refreshed successfully", pair)
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

// HandleForgotPassword handles POST /v1/auth/forgot-password.
func (h *AuthHandler) HandleForgotPassword(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req forgotPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "Invalid JSON body", nil)
		return
	}
	if req.Email == "" {
		httpx.WriteError(w, http.StatusBadRequest, "email is required", nil)
		return
	}

	if err := h.AuthService.ForgotPassword(ctx, req.Email); err != nil {
		if isUnexpected(err) {
			log.Error("forgot password failed", "err", err)
		}
		writeServiceError(w, err)
		return
	}

	httpx.WriteSuccess(w, http.StatusOK, "An OTP has been sent to your email", nil)
}

type resetPasswordRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	OTP      string `json:"otp"`
}

// HandleResetPassword handles POST /v1/auth/reset-password.
func (h *AuthHandler) HandleResetPassword(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req resetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "Invalid JSON body", nil)
		return
	}
	if req.Email == "" || req.Password == "" || req.OTP == "" {
		httpx.WriteError(w, http.StatusBadRequest, "email, password and otp are required", nil)
		return
	}

	if err := h.AuthService.ResetPassword(ctx, req.Email, req.OTP, req.Password); err != nil {
		if isUnexpected(err) {
			log.Error("password reset failed", "err", err)
		}
		writeServiceError(w, err)
		return
	}

	httpx.WriteSuccess(w, http.StatusOK, "Password reset successful", nil)
}

type changePasswordRequest struct {
	OldPassword string `json:"old_password"`
	Token       string `json:"token"` // TOTP code, for users with verified 2FA
	NewPassword string `json:"new_password"`
}

// HandleChangePassword handles POST /v1/auth/change-user-password for the
// authenticated user.
func (h *AuthHandler) HandleChangePassword(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)
	userID := httpx.UserIDFromContext(ctx)

	var req changePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "Invalid JSON body", nil)
		return
	}
	if req.NewPassword == "" {
		httpx.WriteError(w, http.StatusBadRequest, "new_password is required", nil)
		return
	}

	err := h.AuthService.ChangePassword(ctx, userID, req.OldPassword, req.Token, req.NewPassword)
	if err != nil {
		// The caller proved who they are with the access token; a wrong old
		// password here is a bad request, not an authentication failure.
		if errors.Is(err, service.ErrInvalidCredentials) {
			httpx.WriteError(w, http.StatusBadRequest, "Old password is incorrect", nil)
			return
		}
		if isUnexpected(err) {
			log.Error("password change failed", "err", err)
		}
		writeServiceError(w, err)
		return
	}

	httpx.WriteSuccess(w, http.StatusOK, "Password changed successfully", nil)
}

// isUnexpected reports whether err is outside the known sentinel set and so
// worth an error-level log line.
func isUnexpected(err error) bool {
	var policyErr *service.PolicyError
	known := errors.Is(err, service.ErrInvalidCredentials) ||
		errors.Is(err, service.ErrInvalidToken) ||
		errors.Is(err, service.ErrUserNotFound) ||
		errors.Is(err, service.ErrOTPInvalid) ||
		errors.Is(err, service.ErrTOTPAlreadyEnabled) ||
		errors.Is(err, service.ErrTOTPNotEnabled) ||
		errors.Is(err, service.ErrTOTPInvalidCode) ||
		errors.Is(err, service.ErrTOTPNotFound) ||
		errors.Is(err, service.ErrTOTPCodeRequired) ||
		errors.Is(err, service.ErrInvalidRole) ||
		errors.Is(err, store.ErrAlreadyExists) ||
		errors.As(err, &policyErr)
	return !known
}
