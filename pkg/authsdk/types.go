package authsdk

// TokenPair is the access/refresh pair issued by login, OTP validation, and
// token refresh.
type TokenPair struct {
	// AccessToken is the JWT used to authenticate API requests
	AccessToken string `json:"access_token"`

	// RefreshToken is the JWT used to obtain new access tokens
	RefreshToken string `json:"refresh_token"`
}

// loginData covers both shapes a successful login can return: a full token
// pair, or a 2FA challenge that withholds the access token.
type loginData struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	Requires2FA  bool   `json:"requires_2fa"`
	MFAURL       string `json:"mfa_url"`
}

// RegisterRequest is the payload for creating a new account.
type RegisterRequest struct {
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phone_number"`
	Password    string `json:"password"`

	// Role is one of PATIENT, DOCTOR, DRIVER, ADMIN. Defaults to PATIENT
	// when empty.
	Role string `json:"role,omitempty"`
}

// UserProfile is the public view of an account.
type UserProfile struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phone_number"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Role        string `json:"role"`
	Active      bool   `json:"active"`
	Verified    bool   `json:"verified"`
}

// UserPage is one page of a user listing.
type UserPage struct {
	Count      int           `json:"count"`
	Page       int           `json:"page"`
	PageSize   int           `json:"page_size"`
	TotalPages int           `json:"total_pages"`
	Results    []UserProfile `json:"results"`
}

// TOTPStatus reports the authenticated user's two-factor state. OTPAuthURL is
// only populated right after activation, for provisioning the authenticator.
type TOTPStatus struct {
	Enabled    bool   `json:"enabled"`
	Verified   bool   `json:"verified"`
	OTPAuthURL string `json:"otp_auth_url"`
}

// HealthResponse is returned by the liveness and readiness probes.
type HealthResponse struct {
	Status  string        `json:"status"`
	Uptime  string        `json:"uptime"`
	Version string        `json:"version"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}

// HealthChecks carries per-dependency results on the readiness probe.
type HealthChecks struct {
	Database string `json:"database"`
}
