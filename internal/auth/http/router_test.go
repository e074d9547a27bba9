package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/require"

	"github.com/emsdesk/emsdesk/internal/auth/domain"
	"github.com/emsdesk/emsdesk/internal/auth/service"
	"github.com/emsdesk/emsdesk/internal/auth/store/drivers/sqlite"
	"github.com/emsdesk/emsdesk/pkg/cryptox"
	"github.com/emsdesk/emsdesk/pkg/idx"
	"github.com/emsdesk/emsdesk/pkg/jwtx"
)

const testPassword = "Sup3r!Secret-Passw0rd"

type testEnv struct {
	router *Router
	store  *sqlite.Store
	tokens *jwtx.HS256
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	cryptox.SetPepperPath(filepath.Join(t.TempDir(), "pepper"))

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	tokens := jwtx.NewHS256([]byte("test-secret"), "emsdesk-test")
	policy := &service.PasswordPolicy{}
	totpSvc := &service.TOTPService{Store: st, Issuer: "EMSDesk Test"}

	router := NewRouter(tokens, "test", st, slog.Default())
	router.AuthService = &service.AuthService{
		Store:      st,
		Tokens:     tokens,
		TOTP:       totpSvc,
		OTP:        &service.OTPService{Store: st},
		Policy:     policy,
		MFAURL:     "/v1/auth/validate-login-otp",
		AccessTTL:  time.Minute,
		RefreshTTL: time.Hour,
	}
	router.TOTPService = totpSvc
	router.UserService = &service.UserService{Store: st, Policy: policy}
	router.ApplyRoutes()

	return &testEnv{router: router, store: st, tokens: tokens}
}

func (e *testEnv) createUser(t *testing.T, username string, role domain.Role) domain.User {
	t.Helper()

	hash, err := cryptox.HashPassword(testPassword)
	require.NoError(t, err)

	user := domain.User{
		ID:           idx.New().String(),
		Username:     username,
		Email:        username + "@example.com",
		PhoneNumber:  "+6140000" + username,
		PasswordHash: hash,
		Role:         role,
		Active:       true,
	}
	require.NoError(t, e.store.Users().CreateUser(context.Background(), user))
	return user
}

func (e *testEnv) do(t *testing.T, method, path, bearer string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(buf)
	}

	req := httptest.NewRequest(method, path, reader)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func totpCode(t *testing.T, secret string) string {
	t.Helper()
	code, err := totp.GenerateCode(secret, time.Now().UTC())
	require.NoError(t, err)
	return code
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

// login is a helper that authenticates and returns the token pair data.
func (e *testEnv) login(t *testing.T, username string) map[string]any {
	t.Helper()

	rec := e.do(t, http.MethodPost, "/v1/auth/login", "", map[string]string{
		"username": username,
		"password": testPassword,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	env := decodeEnvelope(t, rec)
	require.Equal(t, "success", env["status"])
	return env["data"].(map[string]any)
}

func TestLoginEndpoint(t *testing.T) {
	e := newTestEnv(t)
	e.createUser(t, "alice", domain.RolePatient)

	data := e.login(t, "alice")
	require.NotEmpty(t, data["access_token"])
	require.NotEmpty(t, data["refresh_token"])
}

func TestLoginRejectsBadBody(t *testing.T) {
	e := newTestEnv(t)
	e.createUser(t, "alice", domain.RolePatient)

	// Both identity fields at once.
	rec := e.do(t, http.MethodPost, "/v1/auth/login", "", map[string]string{
		"username": "alice",
		"email":    "alice@example.com",
		"password": testPassword,
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	// Wrong password.
	rec = e.do(t, http.MethodPost, "/v1/auth/login", "", map[string]string{
		"username": "alice",
		"password": "nope",
	})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	env := decodeEnvelope(t, rec)
	require.Equal(t, "error", env["status"])
}

func TestBlacklistMiddleware(t *testing.T) {
	e := newTestEnv(t)
	user := e.createUser(t, "alice", domain.RolePatient)

	data := e.login(t, "alice")
	access := data["access_token"].(string)
	refresh := data["refresh_token"].(string)

	// Authenticated request works while the token is live.
	rec := e.do(t, http.MethodGet, "/v1/auth/mfa-status", access, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	// Logout blacklists the pair; the access token now gets 401 despite its
	// JWT claims still being valid.
	rec = e.do(t, http.MethodPost, "/v1/auth/logout", "", map[string]string{
		"refresh_token": refresh,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = e.do(t, http.MethodGet, "/v1/auth/mfa-status", access, nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	env := decodeEnvelope(t, rec)
	require.Equal(t, "Token no longer valid", env["message"])

	// Garbage bearer token.
	rec = e.do(t, http.MethodGet, "/v1/auth/mfa-status", "garbage", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	env = decodeEnvelope(t, rec)
	require.Equal(t, "Invalid authentication token", env["message"])

	// Expired token.
	expired, err := e.tokens.Sign(jwtx.NewAccessClaims(
		user.ID, "sid", user.Username, string(user.Role), "emsdesk-test",
		time.Minute, time.Now().Add(-time.Hour)))
	require.NoError(t, err)
	rec = e.do(t, http.MethodGet, "/v1/auth/mfa-status", expired, nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	env = decodeEnvelope(t, rec)
	require.Equal(t, "Token has expired", env["message"])

	// No Authorization header passes the gate; the endpoint's own authn
	// check rejects it instead.
	rec = e.do(t, http.MethodGet, "/v1/auth/mfa-status", "", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	env = decodeEnvelope(t, rec)
	require.Equal(t, "Authentication credentials were not provided", env["message"])

	// And a route with no authn requirement serves unauthenticated requests.
	rec = e.do(t, http.MethodGet, "/livez", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestRegisterEndpoint(t *testing.T) {
	e := newTestEnv(t)

	rec := e.do(t, http.MethodPost, "/v1/auth/register", "", map[string]string{
		"first_name":   "Jane",
		"last_name":    "Doe",
		"email":        "jane@example.com",
		"phone_number": "+61400000001",
		"password":     "Str0ng!Passw0rd",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	env := decodeEnvelope(t, rec)
	data := env["data"].(map[string]any)
	require.Equal(t, "jdoe", data["username"])
	require.Equal(t, "PATIENT", data["role"])

	// Weak password gets 406 with all violations listed.
	rec = e.do(t, http.MethodPost, "/v1/auth/register", "", map[string]string{
		"first_name":   "John",
		"last_name":    "Smith",
		"email":        "john@example.com",
		"phone_number": "+61400000002",
		"password":     "short",
	})
	require.Equal(t, http.StatusNotAcceptable, rec.Code)
	env = decodeEnvelope(t, rec)
	require.Len(t, env["errors"], 4)

	// Duplicate email gets a message naming the field.
	rec = e.do(t, http.MethodPost, "/v1/auth/register", "", map[string]string{
		"first_name":   "Janet",
		"last_name":    "Doherty",
		"email":        "jane@example.com",
		"phone_number": "+61400000003",
		"password":     "Str0ng!Passw0rd",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	env = decodeEnvelope(t, rec)
	require.Contains(t, env["message"], "email")
}

func TestListUsersRequiresAdmin(t *testing.T) {
	e := newTestEnv(t)
	e.createUser(t, "admin", domain.RoleAdmin)
	e.createUser(t, "alice", domain.RolePatient)

	patientToken := e.login(t, "alice")["access_token"].(string)
	rec := e.do(t, http.MethodGet, "/v1/users", patientToken, nil)
	require.Equal(t, http.StatusForbidden, rec.Code)

	adminToken := e.login(t, "admin")["access_token"].(string)
	rec = e.do(t, http.MethodGet, "/v1/users?page_size=1&page=2", adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	env := decodeEnvelope(t, rec)
	data := env["data"].(map[string]any)
	require.EqualValues(t, 2, data["count"])
	require.EqualValues(t, 2, data["page"])
	require.EqualValues(t, 1, data["page_size"])
	require.EqualValues(t, 2, data["total_pages"])
	require.Len(t, data["results"], 1)
}

func TestTwoFactorLoginScenario(t *testing.T) {
	e := newTestEnv(t)
	user := e.createUser(t, "alice", domain.RolePatient)

	access := e.login(t, "alice")["access_token"].(string)

	// Activate 2FA and grab the provisioning URI.
	rec := e.do(t, http.MethodPost, "/v1/auth/activate-2fa", access, map[string]bool{
		"activate_totp": true,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	data := decodeEnvelope(t, rec)["data"].(map[string]any)
	require.Contains(t, data["otp_auth_url"], "otpauth://totp/")
	require.Equal(t, false, data["verified"])

	// Complete enrolment with a real code from the stored secret.
	cred, err := e.store.TOTPCredentials().GetTOTPCredential(context.Background(), user.ID)
	require.NoError(t, err)
	code := totpCode(t, cred.Secret)

	rec = e.do(t, http.MethodPost, "/v1/auth/verify-otp", access, map[string]string{
		"token": code,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	// A fresh login is now challenged instead of issued.
	rec = e.do(t, http.MethodPost, "/v1/auth/login", "", map[string]string{
		"username": "alice",
		"password": testPassword,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	challenge := decodeEnvelope(t, rec)["data"].(map[string]any)
	require.Equal(t, true, challenge["requires_2fa"])
	require.Equal(t, "/v1/auth/validate-login-otp", challenge["mfa_url"])
	require.NotEmpty(t, challenge["refresh_token"])
	require.Nil(t, challenge["access_token"])

	// The second factor releases the withheld access token.
	rec = e.do(t, http.MethodPost, "/v1/auth/validate-login-otp", "", map[string]string{
		"refresh_token": challenge["refresh_token"].(string),
		"otp":           totpCode(t, cred.Secret),
	})
	require.Equal(t, http.StatusOK, rec.Code)
	env := decodeEnvelope(t, rec)
	require.Equal(t, "2FA verification successful", env["message"])
	pair := env["data"].(map[string]any)
	require.NotEmpty(t, pair["access_token"])
	require.Equal(t, challenge["refresh_token"], pair["refresh_token"])

	// Deactivation removes the credential so the next status is clean.
	rec = e.do(t, http.MethodPost, "/v1/auth/deactivate-2fa", access, map[string]bool{
		"deactivate_totp": true,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = e.do(t, http.MethodGet, "/v1/auth/mfa-status", access, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	status := decodeEnvelope(t, rec)["data"].(map[string]any)
	require.Equal(t, false, status["enabled"])
	require.Equal(t, false, status["verified"])
	require.Empty(t, status["otp_auth_url"])
}

func TestForgotResetPasswordEndpoints(t *testing.T) {
	e := newTestEnv(t)
	user := e.createUser(t, "alice", domain.RolePatient)

	rec := e.do(t, http.MethodPost, "/v1/auth/forgot-password", "", map[string]string{
		"email": user.Email,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = e.do(t, http.MethodPost, "/v1/auth/forgot-password", "", map[string]string{
		"email": "nobody@example.com",
	})
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = e.do(t, http.MethodPost, "/v1/auth/reset-password", "", map[string]string{
		"email":    user.Email,
		"password": "An0ther!Secret-Pass",
		"otp":      "000000",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRefreshAndLogoutEndpoints(t *testing.T) {
	e := newTestEnv(t)
	e.createUser(t, "alice", domain.RolePatient)

	data := e.login(t, "alice")
	refresh := data["refresh_token"].(string)

	rec := e.do(t, http.MethodPost, "/v1/auth/refresh-token", "", map[string]string{
		"refresh_token": refresh,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	rotated := decodeEnvelope(t, rec)["data"].(map[string]any)
	require.NotEqual(t, refresh, rotated["refresh_token"])

	// The rotated-out token is dead.
	rec = e.do(t, http.MethodPost, "/v1/auth/refresh-token", "", map[string]string{
		"refresh_token": refresh,
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = e.do(t, http.MethodPost, "/v1/auth/logout", "", map[string]string{
		"refresh_token": rotated["refresh_token"].(string),
	})
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestChangePasswordEndpoint(t *testing.T) {
	e := newTestEnv(t)
	e.createUser(t, "alice", domain.RolePatient)

	access := e.login(t, "alice")["access_token"].(string)

	rec := e.do(t, http.MethodPost, "/v1/auth/change-user-password", access, map[string]string{
		"old_password": testPassword,
		"new_password": "weak",
	})
	require.Equal(t, http.StatusNotAcceptable, rec.Code)

	rec = e.do(t, http.MethodPost, "/v1/auth/change-user-password", access, map[string]string{
		"old_password": "wrong",
		"new_password": "An0ther!Secret-Pass",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = e.do(t, http.MethodPost, "/v1/auth/change-user-password", access, map[string]string{
		"old_password": testPassword,
		"new_password": "An0ther!Secret-Pass",
	})
	require.Equal(t, http.StatusOK, rec.Code)
}
