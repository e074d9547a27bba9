package sqlite

import (
	"context"
	"time"

	"github.com/emsdesk/emsdesk/internal/auth/domain"
)

type tokensRepo struct {
	db dbtx
}

func (r *tokensRepo) CreateToken(ctx context.Context, t domain.Token) error {
	now := time.Now().UTC()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO tokens (id, user_id, access_token, refresh_token, blacklisted, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.UserID, t.AccessToken, t.RefreshToken, t.Blacklisted, now, now,
	)
	return err
}

func (r *tokensRepo) GetTokenByRefresh(ctx context.Context, refreshToken string) (domain.Token, error) {
	return r.getBy(ctx, "refresh_token", refreshToken)
}

func (r *tokensRepo) GetTokenByAccess(ctx context.Context, accessToken string) (domain.Token, error) {
	return r.getBy(ctx, "access_token", accessToken)
}

func (r *tokensRepo) getBy(ctx context.Context, column, value string) (domain.Token, error) {
	var t domain.Token
	err := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, access_token, refresh_token, blacklisted, created_at, updated_at
		FROM tokens WHERE `+column+` = ?`,
		value,
	).Scan(&t.ID, &t.UserID, &t.AccessToken, &t.RefreshToken, &t.Blacklisted,
		&t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return domain.Token{}, mapNotFound(err)
	}
	return t, nil
}

func (r *tokensRepo) BlacklistToken(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE tokens SET blacklisted = 1, updated_at = ? WHERE id = ?`,
		time.Now().UTC(), id)
	if err != nil {
		return err
	}
	return requireRowAffected(res)
}

func (r *tokensRepo) DeleteTokensCreatedBefore(ctx context.Context, cutoff time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM tokens WHERE created_at < ?`, cutoff.UTC())
	return err
}
