package http

import (
	"encoding/json"
	"net/http"

	"github.com/emsdesk/emsdesk/internal/auth/service"
	"github.com/emsdesk/emsdesk/internal/auth/store"
	"github.com/emsdesk/emsdesk/pkg/httpx"
	"github.com/emsdesk/emsdesk/pkg/slogx"
)

// TOTPHandler serves the authenticator-app 2FA endpoints. All routes here
// require an authenticated caller.
type TOTPHandler struct {
	TOTPService *service.TOTPService
	Store       store.Store
}

type totpStatusResponse struct {
	Enabled    bool   `json:"enabled"`
	Verified   bool   `json:"verified"`
	OTPAuthURL string `json:"otp_auth_url"`
}

type activateTOTPRequest struct {
	ActivateTOTP bool `json:"activate_totp"`
}

// HandleActivate handles POST /v1/auth/activate-2fa. On success the response
// carries the otpauth:// URI for the client to render as a QR code.
func (h *TOTPHandler) HandleActivate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)
	userID := httpx.UserIDFromContext(ctx)

	var req activateTOTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "Invalid JSON body", nil)
		return
	}
	if !req.ActivateTOTP {
		httpx.WriteError(w, http.StatusBadRequest, "2FA activation failed", nil)
		return
	}

	user, err := h.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		log.Error("failed to load user", "user_id", userID, "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "Something went wrong", nil)
		return
	}

	cred, err := h.TOTPService.Activate(ctx, user)
	if err != nil {
		if isUnexpected(err) {
			log.Error("2FA activation failed", "user_id", userID, "err", err)
		}
		writeServiceError(w, err)
		return
	}

	httpx.WriteSuccess(w, http.StatusOK, "Scan the QR code with your authenticator app",
		totpStatusResponse{
			Enabled:    cred.Enabled,
			Verified:   cred.Verified,
			OTPAuthURL: cred.AuthURL,
		})
}

type deactivateTOTPRequest struct {
	DeactivateTOTP bool `json:"deactivate_totp"`
}

// HandleDeactivate handles POST /v1/auth/deactivate-2fa. The credential is
// removed entirely; re-activation starts from a fresh secret.
func (h *TOTPHandler) HandleDeactivate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)
	userID := httpx.UserIDFromContext(ctx)

	var req deactivateTOTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "Invalid JSON body", nil)
		return
	}
	if !req.DeactivateTOTP {
		httpx.WriteError(w, http.StatusBadRequest, "2FA deactivation failed", nil)
		return
	}

	if err := h.TOTPService.Disable(ctx, userID); err != nil {
		if isUnexpected(err) {
			log.Error("2FA deactivation failed", "user_id", userID, "err", err)
		}
		writeServiceError(w, err)
		return
	}

	httpx.WriteSuccess(w, http.StatusOK, "2FA deactivated successfully", nil)
}

// HandleStatus handles GET /v1/auth/mfa-status. First touch creates an empty
// record, so the response always has flags to report.
func (h *TOTPHandler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)
	userID := httpx.UserIDFromContext(ctx)

	cred, err := h.TOTPService.Status(ctx, userID)
	if err != nil {
		log.Error("failed to load 2FA status", "user_id", userID, "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "Something went wrong", nil)
		return
	}

	// The provisioning URL embeds the shared secret; it is only surfaced
	// while enrollment is still pending.
	authURL := cred.AuthURL
	if cred.Verified {
		authURL = ""
	}

	httpx.WriteSuccess(w, http.StatusOK, "2FA status retrieved", totpStatusResponse{
		Enabled:    cred.Enabled,
		Verified:   cred.Verified,
		OTPAuthURL: authURL,
	})
}

type verifyTOTPRequest struct {
	Token string `json:"token"`
}

// HandleVerify handles POST /v1/auth/verify-otp, completing 2FA enrolment
// (or re-proving an already-enabled factor).
func (h *TOTPHandler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)
	userID := httpx.UserIDFromContext(ctx)

	var req verifyTOTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "Invalid JSON body", nil)
		return
	}
	if req.Token == "" {
		httpx.WriteError(w, http.StatusBadRequest, "token is required", nil)
		return
	}

	cred, err := h.TOTPService.Verify(ctx, userID, req.Token)
	if err != nil {
		if isUnexpected(err) {
			log.Error("2FA verification failed", "user_id", userID, "err", err)
		}
		writeServiceError(w, err)
		return
	}

	httpx.WriteSuccess(w, http.StatusOK, "2FA verification successful",
		map[string]bool{"verified": cred.Verified})
}
