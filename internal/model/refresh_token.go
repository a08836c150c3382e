package model

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// RefreshTokenStore persists refresh-token metadata. The store is keyed by the
// SHA-256 hash of the raw token; raw tokens are never stored.
type RefreshTokenStore interface {
	Create(ctx context.Context, token RefreshToken) error
	GetByHash(ctx context.Context, tokenHash string) (RefreshToken, error)
	// Revoke marks a single token revoked. It is a check-and-set: the result
	// is false when the token was absent or already revoked, which callers
	// use to detect concurrent rotation of the same token.
	Revoke(ctx context.Context, tokenHash string, reason string) (bool, error)
	RevokeFamily(ctx context.Context, family string, reason string) (int64, error)
	RevokeAllByUser(ctx context.Context, userID uuid.UUID, reason string) (int64, error)
	DeleteExpired(ctx context.Context) (int64, error)
}

// RefreshToken is the persisted record behind one issued refresh token.
// Tokens descended from one login share a family; the family only changes on
// a fresh login or registration.
type RefreshToken struct {
	ID            uuid.UUID
	UserID        uuid.UUID
	TokenHash     string
	Family        string
	ExpiresAt     time.Time
	IsRevoked     bool
	RevokedAt     *time.Time
	RevokedReason *string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Revocation reasons recorded on refresh-token records.
const (
	RevokeReasonLogout    = "logout"
	RevokeReasonLogoutAll = "logout all"
	RevokeReasonRotated   = "rotated"
	RevokeReasonReuse     = "reuse detected"
)
