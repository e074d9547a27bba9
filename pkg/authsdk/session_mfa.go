package authsdk

import (
	"context"
	"net/http"
)

// Activate2FA enrolls the authenticated user in TOTP two-factor
// authentication. The returned status carries the otpauth:// provisioning
// URL for the authenticator app. The enrollment stays pending until a code
// is confirmed with Verify2FA.
func (s *Session) Activate2FA(ctx context.Context) (*TOTPStatus, error) {
	resp, err := s.doAuthJSON(ctx, http.MethodPost, "/v1/auth/activate-2fa", map[string]bool{
		"activate_totp": true,
	})
	if err != nil {
		return nil, err
	}

	var status TOTPStatus
	if err := decodeEnvelope(resp, &status, http.StatusOK); err != nil {
		return nil, err
	}

	return &status, nil
}

// Verify2FA confirms a TOTP code. The first successful verification
// completes enrollment; afterwards login requires a second factor.
func (s *Session) Verify2FA(ctx context.Context, code string) error {
	resp, err := s.doAuthJSON(ctx, http.MethodPost, "/v1/auth/verify-otp", map[string]string{
		"token": code,
	})
	if err != nil {
		return err
	}

	return expectStatus(resp, http.StatusOK)
}

// Deactivate2FA removes the user's TOTP enrollment.
func (s *Session) Deactivate2FA(ctx context.Context) error {
	resp, err := s.doAuthJSON(ctx, http.MethodPost, "/v1/auth/deactivate-2fa", map[string]bool{
		"deactivate_totp": true,
	})
	if err != nil {
		return err
	}

	return expectStatus(resp, http.StatusOK)
}

// MFAStatus reports the user's current two-factor state.
func (s *Session) MFAStatus(ctx context.Context) (*TOTPStatus, error) {
	resp, err := s.doAuthJSON(ctx, http.MethodGet, "/v1/auth/mfa-status", nil)
	if err != nil {
		return nil, err
	}

	var status TOTPStatus
	if err := decodeEnvelope(resp, &status, http.StatusOK); err != nil {
		return nil, err
	}

	return &status, nil
}
