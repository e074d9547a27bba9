package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/emsdesk/emsdesk/internal/auth/domain"
	"github.com/emsdesk/emsdesk/internal/auth/store"
	"github.com/emsdesk/emsdesk/pkg/cryptox"
	"github.com/emsdesk/emsdesk/pkg/idx"
)

const (
	// OTPCodeLength is the number of decimal digits in a generated code.
	OTPCodeLength = 6

	// DefaultOTPTTL is how long a code stays valid.
	DefaultOTPTTL = 10 * time.Minute
)

var ErrOTPInvalid = errors.New("invalid or expired OTP")

// OTPService generates and validates the short-lived numeric codes used by
// the password-reset flow. A user has at most one live code at a time.
type OTPService struct {
	Store store.Store

	// TTL overrides DefaultOTPTTL when positive.
	TTL time.Duration
}

func (s *OTPService) ttl() time.Duration {
	if s.TTL > 0 {
		return s.TTL
	}
	return DefaultOTPTTL
}

// Generate replaces any live code for the user with a fresh one. The delete
// and create run in one transaction so concurrent generations settle on a
// single surviving code.
func (s *OTPService) Generate(ctx context.Context, userID, purpose string) (domain.OTP, error) {
	code, err := cryptox.GenerateNumericCode(OTPCodeLength)
	if err != nil {
		return domain.OTP{}, fmt.Errorf("failed to generate OTP code: %w", err)
	}

	otp := domain.OTP{
		ID:        idx.New().String(),
		UserID:    userID,
		Code:      code,
		Purpose:   purpose,
		ExpiresAt: time.Now().UTC().Add(s.ttl()),
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.OTPs().DeleteUserOTPs(ctx, userID); err != nil {
			return fmt.Errorf("failed to clear prior OTPs: %w", err)
		}
		if err := tx.OTPs().CreateOTP(ctx, otp); err != nil {
			return fmt.Errorf("failed to store OTP: %w", err)
		}
		return nil
	})
	if err != nil {
		return domain.OTP{}, err
	}

	return otp, nil
}

// Validate consumes the code on success. An expired code is deleted and
// fails; a code that never existed just fails. Either way a code can
// succeed at most once.
func (s *OTPService) Validate(ctx context.Context, userID, code string) error {
	otp, err := s.Store.OTPs().GetOTPByUserAndCode(ctx, userID, code)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrOTPInvalid
		}
		return fmt.Errorf("failed to look up OTP: %w", err)
	}

	if otp.Expired(time.Now().UTC()) {
		// Remove the stale row so the table doesn't collect corpses.
		if err := s.Store.OTPs().DeleteOTP(ctx, otp.ID); err != nil && !errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("failed to delete expired OTP: %w", err)
		}
		return ErrOTPInvalid
	}

	if err := s.Store.OTPs().DeleteOTP(ctx, otp.ID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// Someone consumed it between the lookup and the delete.
			return ErrOTPInvalid
		}
		return fmt.Errorf("failed to consume OTP: %w", err)
	}

	return nil
}
