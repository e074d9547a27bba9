package sqlite

import (
	"context"
	"time"

	"github.com/emsdesk/emsdesk/internal/auth/domain"
)

type otpsRepo struct {
	db dbtx
}

func (r *otpsRepo) CreateOTP(ctx context.Context, otp domain.OTP) error {
	created := otp.CreatedAt
	if created.IsZero() {
		created = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO otps (id, user_id, code, purpose, expires_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		otp.ID, otp.UserID, otp.Code, otp.Purpose, otp.ExpiresAt.UTC(), created,
	)
	return err
}

func (r *otpsRepo) GetOTPByUserAndCode(ctx context.Context, userID, code string) (domain.OTP, error) {
	var otp domain.OTP
	err := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, code, purpose, expires_at, created_at
		FROM otps WHERE user_id = ? AND code = ?`,
		userID, code,
	).Scan(&otp.ID, &otp.UserID, &otp.Code, &otp.Purpose, &otp.ExpiresAt, &otp.CreatedAt)
	if err != nil {
		return domain.OTP{}, mapNotFound(err)
	}
	return otp, nil
}

func (r *otpsRepo) DeleteOTP(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM otps WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireRowAffected(res)
}

func (r *otpsRepo) DeleteUserOTPs(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM otps WHERE user_id = ?`, userID)
	return err
}

func (r *otpsRepo) DeleteExpiredOTPs(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM otps WHERE expires_at <= ?`, time.Now().UTC())
	return err
}
