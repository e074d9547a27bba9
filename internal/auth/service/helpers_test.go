package service

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/emsdesk/emsdesk/internal/auth/domain"
	"github.com/emsdesk/emsdesk/internal/auth/store/drivers/sqlite"
	"github.com/emsdesk/emsdesk/pkg/cryptox"
	"github.com/emsdesk/emsdesk/pkg/idx"
	"github.com/emsdesk/emsdesk/pkg/jwtx"
)

const testPassword = "Sup3r!Secret-Passw0rd"

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()
	cryptox.SetPepperPath(filepath.Join(t.TempDir(), "pepper"))

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	require.NoError(t, st.ApplyMigrations())
	return st
}

func newTestUser(t *testing.T, st *sqlite.Store, username string) domain.User {
	t.Helper()

	hash, err := cryptox.HashPassword(testPassword)
	require.NoError(t, err)

	user := domain.User{
		ID:           idx.New().String(),
		Username:     username,
		Email:        username + "@example.com",
		PhoneNumber:  "+6140000" + username,
		FirstName:    "Test",
		LastName:     username,
		PasswordHash: hash,
		Role:         domain.RolePatient,
		Active:       true,
	}
	require.NoError(t, st.Users().CreateUser(context.Background(), user))
	return user
}

// captureMailer hands delivered reset codes to the test instead of sending
// anything.
type captureMailer struct {
	codes chan string
}

func (m *captureMailer) SendPasswordResetCode(_ context.Context, _, _, code string) error {
	m.codes <- code
	return nil
}

func (m *captureMailer) SendWelcome(context.Context, string, string, string) error { return nil }

func newTestAuthService(st *sqlite.Store) *AuthService {
	tokens := jwtx.NewHS256([]byte("test-secret"), "emsdesk-test")
	return &AuthService{
		Store:      st,
		Tokens:     tokens,
		TOTP:       &TOTPService{Store: st, Issuer: "EMSDesk Test"},
		OTP:        &OTPService{Store: st},
		Policy:     &PasswordPolicy{},
		MFAURL:     "/v1/auth/validate-login-otp",
		AccessTTL:  time.Minute,
		RefreshTTL: time.Hour,
	}
}
