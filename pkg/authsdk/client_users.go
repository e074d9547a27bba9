package authsdk

import (
	"context"
	"net/http"
)

// Register creates a new account. The username is generated server-side from
// the first and last name.
func (c *SDKClient) Register(ctx context.Context, req RegisterRequest) (*UserProfile, error) {
	resp, err := c.doJSON(ctx, http.MethodPost, "/v1/auth/register", req)
	if err != nil {
		return nil, err
	}

	var profile UserProfile
	if err := decodeEnvelope(resp, &profile, http.StatusCreated); err != nil {
		return nil, err
	}

	return &profile, nil
}
