package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/pkondratev/auth-server/internal/dbx"
	"github.com/pkondratev/auth-server/internal/model"
)

var _ model.RefreshTokenStore = (*RefreshTokenRepository)(nil)

type RefreshTokenRepository struct {
	db *Connection
}

func NewRefreshTokenRepository(db *Connection) *RefreshTokenRepository {
	return &RefreshTokenRepository{db: db}
}

func (r *RefreshTokenRepository) Create(ctx context.Context, token model.RefreshToken) error {
	const query = `
        INSERT INTO refresh_tokens (
            id, user_id, token_hash, family, expires_at, is_revoked, revoked_at, revoked_reason, created_at, updated_at
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
    `

	if token.ID == uuid.Nil {
		token.ID = uuid.New()
	}

	_, err := dbx.FromContext(ctx, r.db).ExecContext(ctx, query,
		token.ID, token.UserID, token.TokenHash, token.Family, token.ExpiresAt,
		token.IsRevoked, token.RevokedAt, token.RevokedReason,
	)
	if err != nil {
		return fmt.Errorf("failed to create refresh token: %w", err)
	}
	return nil
}

func (r *RefreshTokenRepository) GetByHash(ctx context.Context, tokenHash string) (model.RefreshToken, error) {
	const query = `
        SELECT id, user_id, token_hash, family, expires_at, is_revoked, revoked_at, revoked_reason, created_at, updated_at
        FROM refresh_tokens WHERE token_hash = $1
    `
	var rt model.RefreshToken
	err := dbx.FromContext(ctx, r.db).QueryRowContext(ctx, query, tokenHash).Scan(
		&rt.ID, &rt.UserID, &rt.TokenHash, &rt.Family, &rt.ExpiresAt,
		&rt.IsRevoked, &rt.RevokedAt, &rt.RevokedReason, &rt.CreatedAt, &rt.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.RefreshToken{}, model.ErrNotFound
		}
		return model.RefreshToken{}, fmt.Errorf("failed to get refresh token by hash: %w", err)
	}
	return rt, nil
}

// Revoke marks a single token revoked. The `is_revoked = FALSE` guard makes
// it a check-and-set: under two concurrent rotations of the same token only
// one caller observes true.
func (r *RefreshTokenRepository) Revoke(ctx context.Context, tokenHash string, reason string) (bool, error) {
	const query = `
        UPDATE refresh_tokens SET is_revoked = TRUE, revoked_at = NOW(), revoked_reason = $2, updated_at = NOW()
        WHERE token_hash = $1 AND is_revoked = FALSE
    `
	result, err := dbx.FromContext(ctx, r.db).ExecContext(ctx, query, tokenHash, reason)
	if err != nil {
		return false, fmt.Errorf("failed to revoke refresh token: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to revoke refresh token: %w", err)
	}
	return affected > 0, nil
}

func (r *RefreshTokenRepository) RevokeFamily(ctx context.Context, family string, reason string) (int64, error) {
	const query = `
        UPDATE refresh_tokens SET is_revoked = TRUE, revoked_at = NOW(), revoked_reason = $2, updated_at = NOW()
        WHERE family = $1 AND is_revoked = FALSE
    `
	result, err := dbx.FromContext(ctx, r.db).ExecContext(ctx, query, family, reason)
	if err != nil {
		return 0, fmt.Errorf("failed to revoke token family: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to revoke token family: %w", err)
	}
	return affected, nil
}

func (r *RefreshTokenRepository) RevokeAllByUser(ctx context.Context, userID uuid.UUID, reason string) (int64, error) {
	const query = `
        UPDATE refresh_tokens SET is_revoked = TRUE, revoked_at = NOW(), revoked_reason = $2, updated_at = NOW()
        WHERE user_id = $1 AND is_revoked = FALSE
    `
	result, err := dbx.FromContext(ctx, r.db).ExecContext(ctx, query, userID, reason)
	if err != nil {
		return 0, fmt.Errorf("failed to revoke refresh tokens by user: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to revoke refresh tokens by user: %w", err)
	}
	return affected, nil
}

// DeleteExpired removes records whose expiry has passed. Safe to run
// repeatedly and concurrently.
func (r *RefreshTokenRepository) DeleteExpired(ctx context.Context) (int64, error) {
	const query = `DELETE FROM refresh_tokens WHERE expires_at < NOW()`

	result, err := dbx.FromContext(ctx, r.db).ExecContext(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired refresh tokens: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired refresh tokens: %w", err)
	}
	return affected, nil
}
