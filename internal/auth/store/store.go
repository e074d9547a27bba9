package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/emsdesk/emsdesk/internal/auth/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// ConflictError is returned for unique-constraint violations. It names the
// offending field so handlers can report something better than a raw
// database error. It matches ErrAlreadyExists under errors.Is.
type ConflictError struct {
	Field string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("store: %s already in use", e.Field)
}

func (e *ConflictError) Is(target error) bool { return target == ErrAlreadyExists }

// Store is the root data access interface. Concrete drivers (sqlite for
// now) implement this. Sub-repositories keep concerns tidy and testable.
type Store interface {
	Users() Users
	OTPs() OTPs
	TOTPCredentials() TOTPCredentials
	Tokens() Tokens

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction, committing when fn returns
	// nil and rolling back otherwise. This is the recommended way to run
	// multi-step writes (OTP replacement, token rotation, TOTP removal).
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds
// Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

// ListUsersQuery narrows and pages a user listing.
type ListUsersQuery struct {
	// Search matches case-insensitively against username, email, first and
	// last name. Empty means no filter.
	Search string
	Limit  int
	Offset int
}

type Users interface {
	// GetUserByID returns a user by id.
	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// GetUserByUsername resolves the username login path.
	GetUserByUsername(ctx context.Context, username string) (domain.User, error)

	// GetUserByEmail resolves the email login and password-reset paths.
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)

	// CreateUser inserts a new user (id is provided by the app via ULID).
	// Unique violations on username/email/phone_number come back as
	// *ConflictError.
	CreateUser(ctx context.Context, u domain.User) error

	// UpdatePasswordHash sets the password_hash and bumps updated_at.
	UpdatePasswordHash(ctx context.Context, userID string, newHash string) error

	// UpdateLastLogin stamps last_login after a completed authentication.
	UpdateLastLogin(ctx context.Context, userID string, at time.Time) error

	// UsernameExists supports collision-free username generation.
	UsernameExists(ctx context.Context, username string) (bool, error)

	// ListUsers returns one page of users plus the unpaginated count.
	ListUsers(ctx context.Context, q ListUsersQuery) ([]domain.User, int, error)
}

type OTPs interface {
	// CreateOTP stores a freshly generated code.
	CreateOTP(ctx context.Context, otp domain.OTP) error

	// GetOTPByUserAndCode looks up the exact (user, code) pair.
	GetOTPByUserAndCode(ctx context.Context, userID, code string) (domain.OTP, error)

	// DeleteOTP removes a single code after consumption or expiry.
	DeleteOTP(ctx context.Context, id string) error

	// DeleteUserOTPs removes all codes for a user; generation calls this
	// first so at most one code is ever live.
	DeleteUserOTPs(ctx context.Context, userID string) error

	// DeleteExpiredOTPs is housekeeping.
	DeleteExpiredOTPs(ctx context.Context) error
}

type TOTPCredentials interface {
	// GetTOTPCredential returns the credential for a user.
	GetTOTPCredential(ctx context.Context, userID string) (domain.TOTPCredential, error)

	// CreateTOTPCredential inserts a new (initially empty) credential.
	CreateTOTPCredential(ctx context.Context, c domain.TOTPCredential) error

	// UpdateTOTPCredential persists secret, auth URL, and flags.
	UpdateTOTPCredential(ctx context.Context, c domain.TOTPCredential) error

	// DeleteTOTPCredential removes the credential entirely; deactivation
	// uses this so re-activation starts from a fresh secret.
	DeleteTOTPCredential(ctx context.Context, userID string) error
}

type Tokens interface {
	// CreateToken stores a newly issued access/refresh pair.
	CreateToken(ctx context.Context, t domain.Token) error

	// GetTokenByRefresh returns the pair by its refresh token string.
	GetTokenByRefresh(ctx context.Context, refreshToken string) (domain.Token, error)

	// GetTokenByAccess returns the pair by its access token string; the
	// blacklist gate uses this on every authenticated request.
	GetTokenByAccess(ctx context.Context, accessToken string) (domain.Token, error)

	// BlacklistToken flips blacklisted=1 and bumps updated_at.
	BlacklistToken(ctx context.Context, id string) error

	// DeleteTokensCreatedBefore purges rows old enough that their refresh
	// token has certainly expired (housekeeping).
	DeleteTokensCreatedBefore(ctx context.Context, cutoff time.Time) error
}
