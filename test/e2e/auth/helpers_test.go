package auth_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"testing"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/emsdesk/emsdesk/pkg/authsdk"
)

/*
 * Common constants and helper functions for auth service end-to-end tests.
 * This includes container setup, account creation, and assertions.
 */

const (
	testImageName = "emsdesk-auth-test:latest"

	testPassword = "Va5t!Meadow-Lane9"
	jwtSecret    = "e2e-test-signing-secret-not-for-production"
)

// TestMain manages the test lifecycle, builds the Docker image once before
// all tests and cleans it up after all tests complete.
func TestMain(m *testing.M) {
	fmt.Fprintf(os.Stdout, "Building Auth Service Docker image...")

	if err := buildDockerImage(); err != nil {
		fmt.Fprintf(os.Stderr, "\nFailed to build Docker image: %v\n", err)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stdout, " done\n")

	exitCode := m.Run()

	fmt.Fprintf(os.Stdout, "Cleaning up Auth Service Docker image...")
	cleanupDockerImage()
	fmt.Fprintf(os.Stdout, " done\n")

	os.Exit(exitCode)
}

// buildDockerImage builds the test Docker image if it doesn't exist.
func buildDockerImage() error {
	ctx := context.Background()
	cmd := exec.CommandContext(ctx, "docker", "build",
		"-t", testImageName,
		"-f", "../../../cmd/auth/Dockerfile",
		"../../../")
	cmd.Dir = "."
	cmd.Stdout = os.Stdout
	cmd.Stderr = nil

	return cmd.Run()
}

// cleanupDockerImage removes the test Docker image.
func cleanupDockerImage() {
	ctx := context.Background()
	cmd := exec.CommandContext(ctx, "docker", "rmi", "-f", testImageName)
	_ = cmd.Run() // Ignore errors - image might not exist
}

// setupAuthContainer starts the auth service in a container and returns the
// base URL. Rate limits are relaxed so rapid test requests don't trip the
// strict production profiles; rate limit behaviour itself is covered by
// setupAuthContainerWithDefaultRateLimits.
func setupAuthContainer(t *testing.T) (string, func()) {
	t.Helper()
	return startContainer(t, map[string]string{
		"AUTH_DATABASE_FILE":          "/auth.db",
		"AUTH_PEPPER_FILE":            "/pepper",
		"AUTH_JWT_SECRET":             jwtSecret,
		"AUTH_ISSUER":                 "emsdesk-auth",
		"ENV":                         "test",
		"LOG_LEVEL":                   "info",
		"LOG_FORMAT":                  "json",
		"RATELIMIT_STRICT_REQUESTS":   "1000",
		"RATELIMIT_STRICT_WINDOW_SEC": "60",
		"RATELIMIT_STRICT_BURST":      "1000",
		"RATELIMIT_MODERATE_REQUESTS": "1000",
		"RATELIMIT_MODERATE_BURST":    "1000",
		"RATELIMIT_LENIENT_REQUESTS":  "1000",
		"RATELIMIT_LENIENT_BURST":     "1000",
	})
}

// setupAuthContainerWithDefaultRateLimits starts the auth service with the
// DEFAULT rate limits, specifically for testing that rate limiting works.
func setupAuthContainerWithDefaultRateLimits(t *testing.T) (string, func()) {
	t.Helper()
	return startContainer(t, map[string]string{
		"AUTH_DATABASE_FILE": "/auth.db",
		"AUTH_PEPPER_FILE":   "/pepper",
		"AUTH_JWT_SECRET":    jwtSecret,
		"AUTH_ISSUER":        "emsdesk-auth",
		"ENV":                "test",
		"LOG_LEVEL":          "info",
		"LOG_FORMAT":         "json",
	})
}

func startContainer(t *testing.T, env map[string]string) (string, func()) {
	t.Helper()
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        testImageName,
		ExposedPorts: []string{"8080/tcp"},
		Env:          env,
		WaitingFor: wait.ForHTTP("/livez").
			WithPort("8080/tcp").
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)

	mappedPort, err := container.MappedPort(ctx, "8080")
	require.NoError(t, err)

	host, err := container.Host(ctx)
	require.NoError(t, err)

	baseURL := fmt.Sprintf("http://%s:%s", host, mappedPort.Port())

	cleanup := func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	}

	return baseURL, cleanup
}

// registerUser creates an account with the shared test password and returns
// its profile.
func registerUser(t *testing.T, client *authsdk.SDKClient, firstName, lastName, email, role string) *authsdk.UserProfile {
	t.Helper()

	// Phone numbers are unique per account; derive one from the email's
	// local part.
	local, _, _ := strings.Cut(email, "@")
	profile, err := client.Register(t.Context(), authsdk.RegisterRequest{
		FirstName:   firstName,
		LastName:    lastName,
		Email:       email,
		PhoneNumber: "+6140000" + local,
		Password:    testPassword,
		Role:        role,
	})
	require.NoError(t, err, "Registration should succeed")
	require.NotEmpty(t, profile.ID)
	require.NotEmpty(t, profile.Username)

	return profile
}

// loginUser authenticates with the shared test password and returns a session.
func loginUser(t *testing.T, client *authsdk.SDKClient, username string) *authsdk.Session {
	t.Helper()

	session, err := client.Login(t.Context(), username, "", testPassword)
	require.NoError(t, err, "Login should succeed")
	require.NotNil(t, session)

	return session
}

// enrollTOTP activates and verifies two-factor authentication for a session,
// returning the shared secret for generating codes later.
func enrollTOTP(t *testing.T, session *authsdk.Session) string {
	t.Helper()
	ctx := t.Context()

	status, err := session.Activate2FA(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, status.OTPAuthURL, "Activation should return a provisioning URL")

	key, err := otp.NewKeyFromURL(status.OTPAuthURL)
	require.NoError(t, err)
	secret := key.Secret()

	require.NoError(t, session.Verify2FA(ctx, totpCode(t, secret)))
	return secret
}

// totpCode generates a valid code for the given shared secret.
func totpCode(t *testing.T, secret string) string {
	t.Helper()

	code, err := totp.GenerateCode(secret, time.Now())
	require.NoError(t, err)
	return code
}

// assertAPIError checks that an error is an *APIError with the given status.
func assertAPIError(t *testing.T, err error, statusCode int, context string) *authsdk.APIError {
	t.Helper()

	require.Error(t, err, context)
	var apiErr *authsdk.APIError
	require.True(t, errors.As(err, &apiErr), "%s - expected *APIError, got: %v", context, err)
	require.Equal(t, statusCode, apiErr.StatusCode, "%s - unexpected status: %s", context, apiErr)
	return apiErr
}

// assertHealthy verifies a health check response is OK.
func assertHealthy(t *testing.T, health *authsdk.HealthResponse, err error) {
	t.Helper()
	require.NoError(t, err)
	require.NotNil(t, health)
	require.Equal(t, "ok", health.Status)
}
