package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/emsdesk/emsdesk/internal/auth/domain"
	"github.com/emsdesk/emsdesk/internal/auth/mail"
	"github.com/emsdesk/emsdesk/internal/auth/store"
	"github.com/emsdesk/emsdesk/pkg/cryptox"
	"github.com/emsdesk/emsdesk/pkg/idx"
	"github.com/emsdesk/emsdesk/pkg/jwtx"
	"github.com/emsdesk/emsdesk/pkg/slogx"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrUserNotFound       = errors.New("user not found")
	ErrTOTPCodeRequired   = errors.New("TOTP code required")
)

// LoginResult is what a password check produces: either a full token pair,
// or a 2FA challenge withholding the access token until the second factor
// clears.
type LoginResult struct {
	User      domain.User
	Pair      *domain.TokenPair
	Challenge *domain.MFAChallenge
}

// AuthService orchestrates login, logout, token refresh, and the password
// reset and change flows.
type AuthService struct {
	Store  store.Store
	Tokens *jwtx.HS256
	TOTP   *TOTPService
	OTP    *OTPService
	Policy *PasswordPolicy
	Mailer mail.Mailer

	// MFAURL is where a challenged client submits its login OTP.
	MFAURL string

	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

func (s *AuthService) accessTTL() time.Duration {
	if s.AccessTTL > 0 {
		return s.AccessTTL
	}
	return jwtx.DefaultAccessTokenTTL
}

func (s *AuthService) refreshTTL() time.Duration {
	if s.RefreshTTL > 0 {
		return s.RefreshTTL
	}
	return jwtx.DefaultRefreshTokenTTL
}

// issuePair signs a fresh access/refresh pair sharing one session ID and
// returns the persisted-shape token row alongside it.
func (s *AuthService) issuePair(user domain.User, now time.Time) (domain.TokenPair, domain.Token, error) {
	sid := idx.New().String()

	access, err := s.Tokens.Sign(jwtx.NewAccessClaims(
		user.ID, sid, user.Username, string(user.Role), "", s.accessTTL(), now))
	if err != nil {
		return domain.TokenPair{}, domain.Token{}, fmt.Errorf("failed to sign access token: %w", err)
	}

	refresh, err := s.Tokens.Sign(jwtx.NewRefreshClaims(
		user.ID, sid, user.Username, string(user.Role), "", s.refreshTTL(), now))
	if err != nil {
		return domain.TokenPair{}, domain.Token{}, fmt.Errorf("failed to sign refresh token: %w", err)
	}

	pair := domain.TokenPair{AccessToken: access, RefreshToken: refresh}
	row := domain.Token{
		ID:           idx.New().String(),
		UserID:       user.ID,
		AccessToken:  access,
		RefreshToken: refresh,
	}
	return pair, row, nil
}

// Login authenticates by username or email plus password. Exactly one
// identity field must be set; the handler enforces that before calling.
//
// A user with verified 2FA gets a challenge instead of the pair: the freshly
// issued access token stays server-side in the token row until the TOTP code
// is validated.
func (s *AuthService) Login(ctx context.Context, username, email, password string) (LoginResult, error) {
	var (
		user domain.User
		err  error
	)
	if username != "" {
		user, err = s.Store.Users().GetUserByUsername(ctx, username)
	} else {
		user, err = s.Store.Users().GetUserByEmail(ctx, email)
	}
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return LoginResult{}, ErrInvalidCredentials
		}
		return LoginResult{}, fmt.Errorf("failed to look up user: %w", err)
	}

	if !user.Active {
		return LoginResult{}, ErrInvalidCredentials
	}
	if err := cryptox.VerifyPassword(password, user.PasswordHash); err != nil {
		if errors.Is(err, cryptox.ErrPasswordMismatch) {
			return LoginResult{}, ErrInvalidCredentials
		}
		return LoginResult{}, fmt.Errorf("failed to verify password: %w", err)
	}

	now := time.Now().UTC()
	pair, row, err := s.issuePair(user, now)
	if err != nil {
		return LoginResult{}, err
	}

	mfaRequired := false
	cred, err := s.Store.TOTPCredentials().GetTOTPCredential(ctx, user.ID)
	if err == nil {
		mfaRequired = cred.State() == domain.MFAStateEnabled
	} else if !errors.Is(err, store.ErrNotFound) {
		return LoginResult{}, fmt.Errorf("failed to check 2FA state: %w", err)
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Tokens().CreateToken(ctx, row); err != nil {
			return fmt.Errorf("failed to persist token pair: %w", err)
		}
		if mfaRequired {
			// last_login waits for the second factor.
			return nil
		}
		return tx.Users().UpdateLastLogin(ctx, user.ID, now)
	})
	if err != nil {
		return LoginResult{}, err
	}

	if mfaRequired {
		return LoginResult{
			User: user,
			Challenge: &domain.MFAChallenge{
				Requires2FA:  true,
				MFAURL:       s.MFAURL,
				RefreshToken: pair.RefreshToken,
			},
		}, nil
	}

	lastLogin := now
	user.LastLogin = &lastLogin
	return LoginResult{User: user, Pair: &pair}, nil
}

// ValidateLoginOTP completes a challenged login: it resolves the pending
// token row by its refresh token, checks the TOTP code, and releases the
// withheld access token.
func (s *AuthService) ValidateLoginOTP(ctx context.Context, refreshToken, code string) (domain.TokenPair, error) {
	if _, err := s.Tokens.VerifyRefresh(refreshToken); err != nil {
		return domain.TokenPair{}, ErrInvalidToken
	}

	row, err := s.Store.Tokens().GetTokenByRefresh(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.TokenPair{}, ErrInvalidToken
		}
		return domain.TokenPair{}, fmt.Errorf("failed to look up token: %w", err)
	}
	if row.Blacklisted {
		return domain.TokenPair{}, ErrInvalidToken
	}

	if _, err := s.TOTP.Verify(ctx, row.UserID, code); err != nil {
		return domain.TokenPair{}, err
	}

	now := time.Now().UTC()
	if err := s.Store.Users().UpdateLastLogin(ctx, row.UserID, now); err != nil {
		return domain.TokenPair{}, fmt.Errorf("failed to stamp last login: %w", err)
	}

	return domain.TokenPair{
		AccessToken:  row.AccessToken,
		RefreshToken: row.RefreshToken,
	}, nil
}

// Logout blacklists the token pair identified by its refresh token.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	row, err := s.Store.Tokens().GetTokenByRefresh(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrInvalidToken
		}
		return fmt.Errorf("failed to look up token: %w", err)
	}
	if row.Blacklisted {
		return ErrInvalidToken
	}
	if err := s.Store.Tokens().BlacklistToken(ctx, row.ID); err != nil {
		return fmt.Errorf("failed to blacklist token: %w", err)
	}
	return nil
}

// RefreshToken rotates a refresh token: the old row is blacklisted and a
// new pair persisted in the same transaction, so a crash never leaves both
// usable or neither.
func (s *AuthService) RefreshToken(ctx context.Context, refreshToken string) (domain.TokenPair, error) {
	if _, err := s.Tokens.VerifyRefresh(refreshToken); err != nil {
		return domain.TokenPair{}, ErrInvalidToken
	}

	row, err := s.Store.Tokens().GetTokenByRefresh(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.TokenPair{}, ErrInvalidToken
		}
		return domain.TokenPair{}, fmt.Errorf("failed to look up token: %w", err)
	}
	if row.Blacklisted {
		return domain.TokenPair{}, ErrInvalidToken
	}

	user, err := s.Store.Users().GetUserByID(ctx, row.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.TokenPair{}, ErrInvalidToken
		}
		return domain.TokenPair{}, fmt.Errorf("failed to load user: %w", err)
	}
	if !user.Active {
		return domain.TokenPair{}, ErrInvalidToken
	}

	pair, newRow, err := s.issuePair(user, time.Now().UTC())
	if err != nil {
		return domain.TokenPair{}, err
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Tokens().BlacklistToken(ctx, row.ID); err != nil {
			return fmt.Errorf("failed to blacklist old token: %w", err)
		}
		return tx.Tokens().CreateToken(ctx, newRow)
	})
	if err != nil {
		return domain.TokenPair{}, err
	}

	return pair, nil
}

// ForgotPassword generates a reset OTP for the account behind the email and
// dispatches it. Delivery is best effort; the code is live either way.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.Store.Users().GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to look up user: %w", err)
	}

	otp, err := s.OTP.Generate(ctx, user.ID, domain.OTPPurposePasswordReset)
	if err != nil {
		return err
	}

	s.sendMail(ctx, func(ctx context.Context) error {
		return s.Mailer.SendPasswordResetCode(ctx, user.Email, user.FirstName, otp.Code)
	})
	return nil
}

// ResetPassword consumes a reset OTP and installs the new password.
func (s *AuthService) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	user, err := s.Store.Users().GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to look up user: %w", err)
	}

	if err := s.OTP.Validate(ctx, user.ID, code); err != nil {
		return err
	}

	hash, err := cryptox.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.Store.Users().UpdatePasswordHash(ctx, user.ID, hash); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return nil
}

// ChangePassword lets an authenticated user set a new password. Users with
// verified 2FA prove the change with a TOTP code; everyone else supplies
// their current password. The new password must clear the policy.
func (s *AuthService) ChangePassword(ctx context.Context, userID, oldPassword, totpCode, newPassword string) error {
	user, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to load user: %w", err)
	}

	mfaEnabled := false
	cred, err := s.Store.TOTPCredentials().GetTOTPCredential(ctx, user.ID)
	if err == nil {
		mfaEnabled = cred.State() == domain.MFAStateEnabled
	} else if !errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("failed to check 2FA state: %w", err)
	}

	if mfaEnabled {
		if totpCode == "" {
			return ErrTOTPCodeRequired
		}
		if _, err := s.TOTP.Verify(ctx, user.ID, totpCode); err != nil {
			return err
		}
	} else {
		if err := cryptox.VerifyPassword(oldPassword, user.PasswordHash); err != nil {
			if errors.Is(err, cryptox.ErrPasswordMismatch) {
				return ErrInvalidCredentials
			}
			return fmt.Errorf("failed to verify password: %w", err)
		}
	}

	if err := s.Policy.Validate(newPassword); err != nil {
		return err
	}

	hash, err := cryptox.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.Store.Users().UpdatePasswordHash(ctx, user.ID, hash); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return nil
}

// sendMail runs fn in the background with the request's logger attached.
// Failures are logged, never surfaced to the caller.
func (s *AuthService) sendMail(ctx context.Context, fn func(ctx context.Context) error) {
	if s.Mailer == nil {
		return
	}
	bg := context.WithoutCancel(ctx)
	go func() {
		if err := fn(bg); err != nil {
			slogx.FromContext(bg).Error("mail delivery failed", "error", err)
		}
	}()
}
