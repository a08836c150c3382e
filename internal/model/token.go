package model

import (
	"time"

	"github.com/google/uuid"
)

// TokenType distinguishes access from refresh tokens. Verification rejects a
// token whose embedded type does not match the expected one.
type TokenType string

const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"
)

// Claims carries the verified contents of a signed token.
type Claims struct {
	UserID       uuid.UUID
	Email        string
	Role         string
	IsSuperAdmin bool
	Permissions  []string
	TokenType    TokenType
	JTI          string
	IssuedAt     time.Time
	ExpiresAt    time.Time
}

// TokenManager builds, signs and verifies access and refresh tokens.
type TokenManager interface {
	IssueAccess(user User, permissions []string) (token string, expiresAt time.Time, err error)
	// IssueRefresh mints a refresh token. An empty family starts a new one;
	// the returned family is always non-empty. The token hash is returned for
	// storage so that the raw token never reaches the store.
	IssueRefresh(userID uuid.UUID, email string, family string) (token string, tokenHash string, familyOut string, expiresAt time.Time, err error)
	Verify(token string, expected TokenType) (Claims, error)
	HashToken(token string) string
	AccessTTL() time.Duration
}
