package domain

import "time"

// TokenPair is what a completed login or refresh returns.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// Token is a persisted access/refresh token pair issued to a user. Rows are
// never deleted by the auth flows; logout and rotation flip Blacklisted and
// housekeeping eventually purges rows whose refresh token has expired.
type Token struct {
	ID           string
	UserID       string
	AccessToken  string
	RefreshToken string
	Blacklisted  bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// MFAChallenge is returned instead of a token pair when the user must
// complete a second factor. The access token stays server-side until the
// TOTP code is validated.
type MFAChallenge struct {
	Requires2FA  bool   `json:"requires_2fa"` // always true
	MFAURL       string `json:"mfa_url"`      // where to submit the code
	RefreshToken string `json:"refresh_token"`
}
