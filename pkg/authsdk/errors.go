package authsdk

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// APIError represents an error envelope returned by the service.
type APIError struct {
	// StatusCode is the HTTP status code for this error
	StatusCode int

	// Message is the human-readable message from the envelope
	Message string

	// Details carries the envelope's errors field when present: a list of
	// password policy violations, or a map of field conflicts.
	Details any
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Details != nil {
		return fmt.Sprintf("HTTP %d: %s (%v)", e.StatusCode, e.Message, e.Details)
	}
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

// MFARequiredError is returned by Login when the account has verified
// two-factor authentication. The access token is withheld; complete the
// login with ValidateLoginOTP using the partial refresh token.
type MFARequiredError struct {
	// MFAURL is the path to submit the authenticator code to
	MFAURL string

	// RefreshToken identifies the pending login
	RefreshToken string
}

// Error implements the error interface.
func (e *MFARequiredError) Error() string {
	return "2FA verification required: submit an authenticator code to " + e.MFAURL
}

// parseErrorResponse turns a non-2xx response body into a typed error.
func parseErrorResponse(resp *http.Response, body []byte) error {
	var env struct {
		Status  string `json:"status"`
		Message string `json:"message"`
		Errors  any    `json:"errors"`
	}
	if err := json.Unmarshal(body, &env); err == nil && env.Message != "" {
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    env.Message,
			Details:    env.Errors,
		}
	}

	// Fallback: create generic error from status code
	return &APIError{
		StatusCode: resp.StatusCode,
		Message:    http.StatusText(resp.StatusCode),
	}
}
