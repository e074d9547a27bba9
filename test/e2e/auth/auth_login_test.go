package auth_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/emsdesk/emsdesk/pkg/authsdk"
)

// TestRegisterAndLogin covers the registration and password login flow,
// including login by email and the generated username scheme.
func TestRegisterAndLogin(t *testing.T) {
	baseURL, cleanup := setupAuthContainer(t)
	defer cleanup()

	client := authsdk.NewSDKClient(baseURL)
	ctx := t.Context()

	profile := registerUser(t, client, "Olivia", "Nguyen", "olivia.nguyen@example.com", "")
	require.Equal(t, "onguyen", profile.Username)
	require.Equal(t, "PATIENT", profile.Role, "Role should default to PATIENT")
	require.True(t, profile.Active)

	// Login by username
	session := loginUser(t, client, profile.Username)
	require.NotEmpty(t, session.AccessToken())
	require.NotEmpty(t, session.RefreshToken())

	// Login by email
	byEmail, err := client.Login(ctx, "", profile.Email, testPassword)
	require.NoError(t, err, "Login by email should succeed")
	require.NotEmpty(t, byEmail.AccessToken())

	// A second registration with the same name gets a numbered username
	second := registerUser(t, client, "Olivia", "Nguyen", "olivia.nguyen2@example.com", "")
	require.Equal(t, "onguyen1", second.Username)
}

// TestLoginRejectsBadCredentials verifies wrong passwords and unknown
// accounts both come back as 401 without leaking which field was wrong.
func TestLoginRejectsBadCredentials(t *testing.T) {
	baseURL, cleanup := setupAuthContainer(t)
	defer cleanup()

	client := authsdk.NewSDKClient(baseURL)
	ctx := t.Context()

	profile := registerUser(t, client, "Marcus", "Webb", "marcus.webb@example.com", "")

	_, err := client.Login(ctx, profile.Username, "", "Wr0ng!Password-Here")
	assertAPIError(t, err, http.StatusUnauthorized, "Wrong password")

	_, err = client.Login(ctx, "nobody", "", testPassword)
	assertAPIError(t, err, http.StatusUnauthorized, "Unknown username")

	// Identity is exactly one of username or email
	_, err = client.Login(ctx, profile.Username, profile.Email, testPassword)
	assertAPIError(t, err, http.StatusBadRequest, "Both identity fields set")

	_, err = client.Login(ctx, "", "", testPassword)
	assertAPIError(t, err, http.StatusBadRequest, "No identity field set")
}

// TestRegisterValidation verifies weak passwords and duplicate emails are
// rejected with the right statuses and details.
func TestRegisterValidation(t *testing.T) {
	baseURL, cleanup := setupAuthContainer(t)
	defer cleanup()

	client := authsdk.NewSDKClient(baseURL)
	ctx := t.Context()

	_, err := client.Register(ctx, authsdk.RegisterRequest{
		FirstName:   "Ana",
		LastName:    "Silva",
		Email:       "ana.silva@example.com",
		PhoneNumber: "+61400000001",
		Password:    "short",
	})
	apiErr := assertAPIError(t, err, http.StatusNotAcceptable, "Weak password")
	require.NotNil(t, apiErr.Details, "Policy violations should be listed")

	registerUser(t, client, "Ana", "Silva", "ana.silva@example.com", "")

	_, err = client.Register(ctx, authsdk.RegisterRequest{
		FirstName:   "Ana",
		LastName:    "Silva",
		Email:       "ana.silva@example.com",
		PhoneNumber: "+61400000002",
		Password:    testPassword,
	})
	apiErr = assertAPIError(t, err, http.StatusBadRequest, "Duplicate email")
	require.Contains(t, apiErr.Message, "email")

	_, err = client.Register(ctx, authsdk.RegisterRequest{
		FirstName:   "Ana",
		LastName:    "Silva",
		Email:       "ana.silva9@example.com",
		PhoneNumber: "+61400000003",
		Password:    testPassword,
		Role:        "SUPERUSER",
	})
	assertAPIError(t, err, http.StatusBadRequest, "Unknown role")
}
