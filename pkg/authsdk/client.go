package authsdk

import (
	"net/http"
	"strings"
	"time"
)

// SDKClient is a client for the EMSDesk authentication service.
// It provides access to unauthenticated operations and can create
// authenticated Sessions.
type SDKClient struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewSDKClient creates a new auth service client.
func NewSDKClient(baseURL string) *SDKClient {
	return &SDKClient{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// NewSessionFromTokens creates an authenticated session from existing tokens.
// This is useful when tokens from a previous authentication were stored
// elsewhere (e.g., a database or another system). The session still performs
// auto-refresh when the access token expires.
func (c *SDKClient) NewSessionFromTokens(accessToken, refreshToken string) *Session {
	return newSession(c, TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	})
}
