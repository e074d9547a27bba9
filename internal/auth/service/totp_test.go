package service

import (
	"context"
	"testing"
	"time"

	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/require"

	"github.com/emsdesk/emsdesk/internal/auth/domain"
	"github.com/emsdesk/emsdesk/internal/auth/store"
)

func TestTOTPActivateVerifyLifecycle(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	user := newTestUser(t, st, "alice")

	svc := &TOTPService{Store: st, Issuer: "EMSDesk Test"}

	cred, err := svc.Activate(ctx, user)
	require.NoError(t, err)
	require.NotEmpty(t, cred.Secret)
	require.Contains(t, cred.AuthURL, "otpauth://totp/")
	require.Contains(t, cred.AuthURL, "EMSDesk")
	require.False(t, cred.Verified)
	require.Equal(t, domain.MFAStatePending, cred.State())

	code, err := totp.GenerateCode(cred.Secret, time.Now().UTC())
	require.NoError(t, err)

	verified, err := svc.Verify(ctx, user.ID, code)
	require.NoError(t, err)
	require.True(t, verified.Enabled)
	require.True(t, verified.Verified)
	require.Equal(t, domain.MFAStateEnabled, verified.State())
}

func TestTOTPActivateFailsWhenAlreadyVerified(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	user := newTestUser(t, st, "alice")

	svc := &TOTPService{Store: st, Issuer: "EMSDesk Test"}

	cred, err := svc.Activate(ctx, user)
	require.NoError(t, err)

	code, err := totp.GenerateCode(cred.Secret, time.Now().UTC())
	require.NoError(t, err)
	_, err = svc.Verify(ctx, user.ID, code)
	require.NoError(t, err)

	_, err = svc.Activate(ctx, user)
	require.ErrorIs(t, err, ErrTOTPAlreadyEnabled)

	// The stored secret must be untouched by the failed re-activation.
	after, err := st.TOTPCredentials().GetTOTPCredential(ctx, user.ID)
	require.NoError(t, err)
	require.Equal(t, cred.Secret, after.Secret)
}

func TestTOTPVerifyRejectsWrongCode(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	user := newTestUser(t, st, "alice")

	svc := &TOTPService{Store: st, Issuer: "EMSDesk Test"}

	cred, err := svc.Activate(ctx, user)
	require.NoError(t, err)

	good, err := totp.GenerateCode(cred.Secret, time.Now().UTC())
	require.NoError(t, err)
	bad := "000000"
	if bad == good {
		bad = "000001"
	}

	_, err = svc.Verify(ctx, user.ID, bad)
	require.ErrorIs(t, err, ErrTOTPInvalidCode)
}

func TestTOTPVerifyWithoutSecretFails(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	user := newTestUser(t, st, "alice")

	svc := &TOTPService{Store: st, Issuer: "EMSDesk Test"}

	_, err := svc.Verify(ctx, user.ID, "123456")
	require.ErrorIs(t, err, ErrTOTPNotEnabled)

	// An empty get-or-created record is still "not enabled".
	_, err = svc.Status(ctx, user.ID)
	require.NoError(t, err)
	_, err = svc.Verify(ctx, user.ID, "123456")
	require.ErrorIs(t, err, ErrTOTPNotEnabled)
}

func TestTOTPDisableRemovesRecord(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	user := newTestUser(t, st, "alice")

	svc := &TOTPService{Store: st, Issuer: "EMSDesk Test"}

	cred, err := svc.Activate(ctx, user)
	require.NoError(t, err)
	require.NotEmpty(t, cred.Secret)

	require.NoError(t, svc.Disable(ctx, user.ID))

	_, err = st.TOTPCredentials().GetTOTPCredential(ctx, user.ID)
	require.ErrorIs(t, err, store.ErrNotFound)

	// A later status call get-or-creates a fresh record with no leaked
	// previous secret.
	status, err := svc.Status(ctx, user.ID)
	require.NoError(t, err)
	require.Empty(t, status.Secret)
	require.Equal(t, domain.MFAStateNone, status.State())
}

func TestTOTPDisableWithoutRecordFails(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	user := newTestUser(t, st, "alice")

	svc := &TOTPService{Store: st, Issuer: "EMSDesk Test"}
	require.ErrorIs(t, svc.Disable(ctx, user.ID), ErrTOTPNotFound)
}
