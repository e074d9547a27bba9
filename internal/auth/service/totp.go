package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"

	"github.com/emsdesk/emsdesk/internal/auth/domain"
	"github.com/emsdesk/emsdesk/internal/auth/store"
	"github.com/emsdesk/emsdesk/pkg/idx"
)

var (
	ErrTOTPAlreadyEnabled = errors.New("2FA is already enabled")
	ErrTOTPNotEnabled     = errors.New("2FA is not enabled")
	ErrTOTPInvalidCode    = errors.New("invalid TOTP code")
	ErrTOTPNotFound       = errors.New("no 2FA configuration found")
)

// TOTPService manages authenticator-app second factors. Standard 30-second
// period, six digits, SHA1, with a one-step tolerance on verification.
type TOTPService struct {
	Store  store.Store
	Issuer string // issuer label shown in authenticator apps
}

func totpOpts() totp.ValidateOpts {
	return totp.ValidateOpts{
		Period:    30,
		Skew:      1,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	}
}

// Activate provisions a fresh secret for the user and returns the credential
// carrying the otpauth:// URI for QR rendering. 2FA is not in force until the
// first code is verified. A user whose credential is already verified cannot
// re-provision; the stored secret must stay stable once in use.
func (s *TOTPService) Activate(ctx context.Context, user domain.User) (domain.TOTPCredential, error) {
	cred, err := s.Store.TOTPCredentials().GetTOTPCredential(ctx, user.ID)
	switch {
	case err == nil:
		if cred.Verified {
			return domain.TOTPCredential{}, ErrTOTPAlreadyEnabled
		}
	case errors.Is(err, store.ErrNotFound):
		cred = domain.TOTPCredential{ID: idx.New().String(), UserID: user.ID}
		if err := s.Store.TOTPCredentials().CreateTOTPCredential(ctx, cred); err != nil {
			return domain.TOTPCredential{}, fmt.Errorf("failed to create TOTP record: %w", err)
		}
	default:
		return domain.TOTPCredential{}, fmt.Errorf("failed to load TOTP record: %w", err)
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      s.Issuer,
		AccountName: user.Email,
		Period:      30,
		Digits:      otp.DigitsSix,
		Algorithm:   otp.AlgorithmSHA1,
	})
	if err != nil {
		return domain.TOTPCredential{}, fmt.Errorf("failed to generate TOTP secret: %w", err)
	}

	cred.Secret = key.Secret()
	cred.AuthURL = key.URL()
	cred.Enabled = false
	cred.Verified = false
	if err := s.Store.TOTPCredentials().UpdateTOTPCredential(ctx, cred); err != nil {
		return domain.TOTPCredential{}, fmt.Errorf("failed to store TOTP secret: %w", err)
	}

	return cred, nil
}

// Verify checks a submitted code against the stored secret and, on the
// first success, flips the credential to enabled+verified.
func (s *TOTPService) Verify(ctx context.Context, userID, code string) (domain.TOTPCredential, error) {
	cred, err := s.Store.TOTPCredentials().GetTOTPCredential(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.TOTPCredential{}, ErrTOTPNotEnabled
		}
		return domain.TOTPCredential{}, fmt.Errorf("failed to load TOTP record: %w", err)
	}
	if cred.Secret == "" {
		return domain.TOTPCredential{}, ErrTOTPNotEnabled
	}

	valid, err := totp.ValidateCustom(code, cred.Secret, time.Now().UTC(), totpOpts())
	if err != nil || !valid {
		return domain.TOTPCredential{}, ErrTOTPInvalidCode
	}

	if !cred.Enabled || !cred.Verified {
		cred.Enabled = true
		cred.Verified = true
		if err := s.Store.TOTPCredentials().UpdateTOTPCredential(ctx, cred); err != nil {
			return domain.TOTPCredential{}, fmt.Errorf("failed to mark TOTP verified: %w", err)
		}
	}

	return cred, nil
}

// Disable removes the credential entirely, so a later activation starts
// from a brand new secret.
func (s *TOTPService) Disable(ctx context.Context, userID string) error {
	return s.Store.WithTx(ctx, func(tx store.Tx) error {
		err := tx.TOTPCredentials().DeleteTOTPCredential(ctx, userID)
		if errors.Is(err, store.ErrNotFound) {
			return ErrTOTPNotFound
		}
		return err
	})
}

// Status returns the user's credential, creating an empty record on first
// touch so the caller always has flags to render.
func (s *TOTPService) Status(ctx context.Context, userID string) (domain.TOTPCredential, error) {
	cred, err := s.Store.TOTPCredentials().GetTOTPCredential(ctx, userID)
	if err == nil {
		return cred, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return domain.TOTPCredential{}, fmt.Errorf("failed to load TOTP record: %w", err)
	}

	cred = domain.TOTPCredential{ID: idx.New().String(), UserID: userID}
	if err := s.Store.TOTPCredentials().CreateTOTPCredential(ctx, cred); err != nil {
		return domain.TOTPCredential{}, fmt.Errorf("failed to create TOTP record: %w", err)
	}
	return cred, nil
}
