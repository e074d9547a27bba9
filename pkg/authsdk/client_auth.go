package authsdk

import (
	"context"
	"net/http"
)

// Login authenticates a user with their username or email and password.
// Exactly one of username and email must be set.
//
// When the account has verified two-factor authentication the returned error
// is *MFARequiredError; complete the login with ValidateLoginOTP.
func (c *SDKClient) Login(ctx context.Context, username, email, password string) (*Session, error) {
	resp, err := c.doJSON(ctx, http.MethodPost, "/v1/auth/login", map[string]string{
		"username": username,
		"email":    email,
		"password": password,
	})
	if err != nil {
		return nil, err
	}

	var data loginData
	if err := decodeEnvelope(resp, &data, http.StatusOK); err != nil {
		return nil, err
	}

	if data.Requires2FA {
		return nil, &MFARequiredError{
			MFAURL:       data.MFAURL,
			RefreshToken: data.RefreshToken,
		}
	}

	return newSession(c, TokenPair{
		AccessToken:  data.AccessToken,
		RefreshToken: data.RefreshToken,
	}), nil
}

// ValidateLoginOTP completes a two-factor login. The refresh token comes from
// the MFARequiredError returned by Login; the code comes from the user's
// authenticator app.
func (c *SDKClient) ValidateLoginOTP(ctx context.Context, refreshToken, code string) (*Session, error) {
	resp, err := c.doJSON(ctx, http.MethodPost, "/v1/auth/validate-login-otp", map[string]string{
		"refresh_token": refreshToken,
		"otp":           code,
	})
	if err != nil {
		return nil, err
	}

	var pair TokenPair
	if err := decodeEnvelope(resp, &pair, http.StatusOK); err != nil {
		return nil, err
	}

	return newSession(c, pair), nil
}

// RefreshToken exchanges a refresh token for a fresh pair. The old pair is
// blacklisted server-side.
func (c *SDKClient) RefreshToken(ctx context.Context, refreshToken string) (*TokenPair, error) {
	resp, err := c.doJSON(ctx, http.MethodPost, "/v1/auth/refresh-token", map[string]string{
		"refresh_token": refreshToken,
	})
	if err != nil {
		return nil, err
	}

	var pair TokenPair
	if err := decodeEnvelope(resp, &pair, http.StatusOK); err != nil {
		return nil, err
	}

	return &pair, nil
}

// Logout blacklists the token pair identified by the refresh token.
func (c *SDKClient) Logout(ctx context.Context, refreshToken string) error {
	resp, err := c.doJSON(ctx, http.MethodPost, "/v1/auth/logout", map[string]string{
		"refresh_token": refreshToken,
	})
	if err != nil {
		return err
	}

	return decodeEnvelope(resp, nil, http.StatusOK)
}

// ForgotPassword requests a password reset code for the account with the
// given email. The code is delivered out of band.
func (c *SDKClient) ForgotPassword(ctx context.Context, email string) error {
	resp, err := c.doJSON(ctx, http.MethodPost, "/v1/auth/forgot-password", map[string]string{
		"email": email,
	})
	if err != nil {
		return err
	}

	return decodeEnvelope(resp, nil, http.StatusOK)
}

// ResetPassword sets a new password using a reset code from ForgotPassword.
func (c *SDKClient) ResetPassword(ctx context.Context, email, newPassword, code string) error {
	resp, err := c.doJSON(ctx, http.MethodPost, "/v1/auth/reset-password", map[string]string{
		"email":    email,
		"password": newPassword,
		"otp":      code,
	})
	if err != nil {
		return err
	}

	return decodeEnvelope(resp, nil, http.StatusOK)
}
