// Package token builds, signs and verifies the access and refresh tokens used
// by the auth service.
package token

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/pkondratev/auth-server/internal/model"
)

// Claims represents JWT claims with token type, identity and permissions.
type Claims struct {
	jwt.RegisteredClaims
	TokenType    string   `json:"type"`
	Email        string   `json:"email"`
	Role         string   `json:"role,omitempty"`
	IsSuperAdmin bool     `json:"is_super_admin,omitempty"`
	Permissions  []string `json:"permissions,omitempty"`
}

// JWT implements model.TokenManager backed by symmetric HMAC (HS256).
type JWT struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

// Option configures a JWT codec.
type Option func(*JWT)

// WithNow sets the clock source, primarily for testing expiry boundaries.
func WithNow(now func() time.Time) Option {
	return func(j *JWT) {
		j.now = now
	}
}

// NewJWT creates a token codec with the provided signing secret and lifetimes.
func NewJWT(secret string, accessTTL, refreshTTL time.Duration, opts ...Option) *JWT {
	j := &JWT{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(j)
	}
	return j
}

var _ model.TokenManager = (*JWT)(nil)

// IssueAccess creates a short-lived access token carrying the user's identity,
// role and permission set.
func (j *JWT) IssueAccess(user model.User, permissions []string) (string, time.Time, error) {
	now := j.now().UTC().Truncate(time.Second)
	expires := now.Add(j.accessTTL)

	jti, err := newJTI(16)
	if err != nil {
		return "", time.Time{}, err
	}

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			ID:        jti,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
		TokenType:    string(model.TokenTypeAccess),
		Email:        user.Email,
		Role:         user.Role,
		IsSuperAdmin: user.IsSuperAdmin,
		Permissions:  permissions,
	}

	tokenString, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(j.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign access token: %w", err)
	}

	return tokenString, expires, nil
}

// IssueRefresh creates a long-lived refresh token. An empty family starts a
// new one. The SHA-256 hash of the token is returned alongside so that only
// the hash ever reaches storage.
func (j *JWT) IssueRefresh(userID uuid.UUID, email string, family string) (string, string, string, time.Time, error) {
	now := j.now().UTC().Truncate(time.Second)
	expires := now.Add(j.refreshTTL)

	jti, err := newJTI(32)
	if err != nil {
		return "", "", "", time.Time{}, err
	}
	if family == "" {
		family = uuid.NewString()
	}

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			ID:        jti,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
		TokenType: string(model.TokenTypeRefresh),
		Email:     email,
	}

	tokenString, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(j.secret)
	if err != nil {
		return "", "", "", time.Time{}, fmt.Errorf("failed to sign refresh token: %w", err)
	}

	return tokenString, j.HashToken(tokenString), family, expires, nil
}

// Verify validates the signature, required claims, expiry and token type.
// Every failure collapses into model.ErrInvalidToken except expiry, which is
// reported as model.ErrTokenExpired so callers can log the distinction.
func (j *JWT) Verify(tokenString string, expected model.TokenType) (model.Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("wrong signing method %v", t.Header["alg"])
		}
		return j.secret, nil
	}, jwt.WithTimeFunc(j.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return model.Claims{}, model.ErrTokenExpired
		}
		return model.Claims{}, model.ErrInvalidToken
	}
	if !parsed.Valid {
		return model.Claims{}, model.ErrInvalidToken
	}

	if claims.Subject == "" || claims.ID == "" || claims.IssuedAt == nil || claims.ExpiresAt == nil || claims.TokenType == "" {
		return model.Claims{}, model.ErrInvalidToken
	}
	if claims.TokenType != string(expected) {
		return model.Claims{}, model.ErrInvalidToken
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return model.Claims{}, model.ErrInvalidToken
	}

	return model.Claims{
		UserID:       userID,
		Email:        claims.Email,
		Role:         claims.Role,
		IsSuperAdmin: claims.IsSuperAdmin,
		Permissions:  claims.Permissions,
		TokenType:    model.TokenType(claims.TokenType),
		JTI:          claims.ID,
		IssuedAt:     claims.IssuedAt.Time,
		ExpiresAt:    claims.ExpiresAt.Time,
	}, nil
}

// HashToken returns the deterministic SHA-256 hex digest of a raw token, used
// both at issuance and at lookup time.
func (j *JWT) HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// AccessTTL returns the configured access-token lifetime.
func (j *JWT) AccessTTL() time.Duration {
	return j.accessTTL
}

func newJTI(size int) (string, error) {
	buf := make([]byte, size)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate token id: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
