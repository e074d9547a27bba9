package domain

import "time"

// MFAState classifies a user's two-factor setup.
type MFAState int

const (
	// MFAStateNone: no TOTP credential exists, or one exists with no secret.
	MFAStateNone MFAState = iota
	// MFAStatePending: a secret was provisioned but the first challenge has
	// not been completed, so login does not require a second factor yet.
	MFAStatePending
	// MFAStateEnabled: the credential is enabled and verified; login must be
	// completed with a TOTP code.
	MFAStateEnabled
)

// TOTPCredential is the one-to-one TOTP configuration for a user. The
// record is created lazily (activation or status check) and removed entirely
// on deactivation, so a re-activating user always starts from a fresh
// secret.
type TOTPCredential struct {
	ID        string
	UserID    string
	Secret    string // base32, empty until activation provisions one
	AuthURL   string // otpauth:// provisioning URI for QR rendering
	Enabled   bool
	Verified  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// State derives the MFA sum-type state from the stored flags.
func (c TOTPCredential) State() MFAState {
	switch {
	case c.Secret == "":
		return MFAStateNone
	case c.Enabled && c.Verified:
		return MFAStateEnabled
	default:
		return MFAStatePending
	}
}
