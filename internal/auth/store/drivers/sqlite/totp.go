package sqlite

import (
	"context"
	"time"

	"github.com/emsdesk/emsdesk/internal/auth/domain"
)

type totpRepo struct {
	db dbtx
}

func (r *totpRepo) GetTOTPCredential(ctx context.Context, userID string) (domain.TOTPCredential, error) {
	var c domain.TOTPCredential
	err := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, secret, otp_auth_url, enabled, verified, created_at, updated_at
		FROM totp_credentials WHERE user_id = ?`,
		userID,
	).Scan(&c.ID, &c.UserID, &c.Secret, &c.AuthURL, &c.Enabled, &c.Verified,
		&c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return domain.TOTPCredential{}, mapNotFound(err)
	}
	return c, nil
}

func (r *totpRepo) CreateTOTPCredential(ctx context.Context, c domain.TOTPCredential) error {
	now := time.Now().UTC()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO totp_credentials (
			id, user_id, secret, otp_auth_url, enabled, verified, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.UserID, c.Secret, c.AuthURL, c.Enabled, c.Verified, now, now,
	)
	return mapConstraint(err)
}

func (r *totpRepo) UpdateTOTPCredential(ctx context.Context, c domain.TOTPCredential) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE totp_credentials
		SET secret = ?, otp_auth_url = ?, enabled = ?, verified = ?, updated_at = ?
		WHERE user_id = ?`,
		c.Secret, c.AuthURL, c.Enabled, c.Verified, time.Now().UTC(), c.UserID,
	)
	if err != nil {
		return err
	}
	return requireRowAffected(res)
}

func (r *totpRepo) DeleteTOTPCredential(ctx context.Context, userID string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM totp_credentials WHERE user_id = ?`, userID)
	if err != nil {
		return err
	}
	return requireRowAffected(res)
}
