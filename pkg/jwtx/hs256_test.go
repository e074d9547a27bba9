package jwtx

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const testIssuer = "emsdesk-auth"

func testSigner() *HS256 {
	return NewHS256([]byte("test-secret-at-least-32-bytes-long!!"), testIssuer)
}

func TestSignAndVerifyRoundTrip(t *testing.T) {
	t.Parallel()

	h := testSigner()
	now := time.Now().UTC()

	claims := NewAccessClaims("user-1", "sid-1", "alice", "DISPATCHER", testIssuer, time.Minute, now)
	raw, err := h.Sign(claims)
	require.NoError(t, err)

	got, err := h.Verify(raw)
	require.NoError(t, err)
	require.Equal(t, "user-1", got.Subject)
	require.Equal(t, "sid-1", got.SID)
	require.Equal(t, "alice", got.Username)
	require.Equal(t, "DISPATCHER", got.Role)
	require.True(t, got.IsAccess())
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	t.Parallel()

	h := testSigner()
	past := time.Now().UTC().Add(-2 * time.Minute)

	claims := NewAccessClaims("user-1", "sid-1", "alice", "PATIENT", testIssuer, time.Minute, past)
	raw, err := h.Sign(claims)
	require.NoError(t, err)

	_, err = h.Verify(raw)
	require.ErrorIs(t, err, ErrExpired)
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	t.Parallel()

	raw, err := testSigner().Sign(
		NewAccessClaims("user-1", "sid-1", "alice", "PATIENT", testIssuer, time.Minute, time.Now().UTC()),
	)
	require.NoError(t, err)

	other := NewHS256([]byte("a-completely-different-secret-value!"), testIssuer)
	_, err = other.Verify(raw)
	require.ErrorIs(t, err, ErrInvalidSig)
}

func TestVerifyRejectsMalformedToken(t *testing.T) {
	t.Parallel()

	_, err := testSigner().Verify("not.a.jwt")
	require.ErrorIs(t, err, ErrMalformed)
}

func TestSignStampsConfiguredIssuer(t *testing.T) {
	t.Parallel()

	h := testSigner()

	// Callers that leave the issuer empty must still produce tokens the
	// same signer accepts.
	raw, err := h.Sign(
		NewAccessClaims("user-1", "sid-1", "alice", "STAFF", "", time.Minute, time.Now().UTC()),
	)
	require.NoError(t, err)

	got, err := h.Verify(raw)
	require.NoError(t, err)
	require.Equal(t, testIssuer, got.Issuer)
}

func TestVerifyRejectsForeignIssuer(t *testing.T) {
	t.Parallel()

	foreign := NewHS256([]byte("test-secret-at-least-32-bytes-long!!"), "someone-else")
	raw, err := foreign.Sign(
		NewAccessClaims("user-1", "sid-1", "alice", "PATIENT", "someone-else", time.Minute, time.Now().UTC()),
	)
	require.NoError(t, err)

	_, err = testSigner().Verify(raw)
	require.ErrorIs(t, err, ErrIssuer)
}

func TestTokenTypeAssertions(t *testing.T) {
	t.Parallel()

	h := testSigner()
	now := time.Now().UTC()

	access, err := h.Sign(NewAccessClaims("u", "s", "alice", "STAFF", testIssuer, time.Minute, now))
	require.NoError(t, err)
	refresh, err := h.Sign(NewRefreshClaims("u", "s", "alice", "STAFF", testIssuer, time.Minute, now))
	require.NoError(t, err)

	_, err = h.VerifyAccess(refresh)
	require.ErrorIs(t, err, ErrWrongType)
	_, err = h.VerifyRefresh(access)
	require.ErrorIs(t, err, ErrWrongType)

	got, err := h.VerifyRefresh(refresh)
	require.NoError(t, err)
	require.True(t, got.IsRefresh())
}
