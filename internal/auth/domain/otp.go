package domain

import "time"

// OTP purposes recorded against generated codes.
const (
	OTPPurposePasswordReset = "Password Reset"
)

// OTP is a short-lived numeric code sent to a user out of band. A user has
// at most one live OTP; generating a new one replaces any prior code.
type OTP struct {
	ID        string
	UserID    string
	Code      string // 6 decimal digits
	Purpose   string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// Expired reports whether the code is past its expiry at the given time.
func (o OTP) Expired(now time.Time) bool {
	return !now.Before(o.ExpiresAt)
}
