package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/pkondratev/auth-server/internal/dbx"
	"github.com/pkondratev/auth-server/internal/logger"
	"github.com/pkondratev/auth-server/internal/model"
	"github.com/pkondratev/auth-server/internal/password"
)

// errRotationLost signals that a concurrent request rotated the same refresh
// token first. Returned from inside the rotation transaction so it rolls back.
var errRotationLost = errors.New("rotation lost")

// TokenPair is the session payload returned to clients after a successful
// register, login or refresh.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
}

// RegisterParams carries the fields accepted at signup.
type RegisterParams struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// Auth orchestrates credential verification and token lifecycle: issuing,
// rotation with family tracking, revocation and reuse detection.
type Auth struct {
	db        *sql.DB
	users     model.UserStore
	tokens    model.RefreshTokenStore
	codec     model.TokenManager
	passwords *password.Service
	logger    *logger.Logger
	now       func() time.Time
}

// Option configures an Auth service.
type Option func(*Auth)

// WithNow sets the clock source, primarily for testing expiry boundaries.
func WithNow(now func() time.Time) Option {
	return func(a *Auth) {
		a.now = now
	}
}

func NewAuth(
	db *sql.DB,
	users model.UserStore,
	tokens model.RefreshTokenStore,
	codec model.TokenManager,
	passwords *password.Service,
	logger *logger.Logger,
	opts ...Option,
) *Auth {
	a := &Auth{
		db:        db,
		users:     users,
		tokens:    tokens,
		codec:     codec,
		passwords: passwords,
		logger:    logger,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Register creates a new account and issues its first session.
func (a *Auth) Register(ctx context.Context, params RegisterParams) (model.User, TokenPair, error) {
	a.logger.Debug("Auth service: starting user registration",
		"email", params.Email)

	if ok, violations := a.passwords.ValidateStrength(params.Password); !ok {
		a.logger.Info("Auth service: password rejected by strength policy",
			"email", params.Email)
		return model.User{}, TokenPair{}, &model.ValidationError{Violations: violations}
	}

	existing, err := a.users.GetByEmail(ctx, params.Email)
	if err != nil && !errors.Is(err, model.ErrNotFound) {
		a.logger.Error("Auth service: failed to get user by email",
			"email", params.Email,
			"error", err.Error())
		return model.User{}, TokenPair{}, fmt.Errorf("failed to get user by email: %w", err)
	}
	if existing.ID != uuid.Nil {
		a.logger.Info("Auth service: email already taken",
			"email", params.Email)
		return model.User{}, TokenPair{}, model.ErrEmailTaken
	}

	hash, err := a.passwords.Hash(params.Password)
	if err != nil {
		a.logger.Error("Auth service: failed to hash password",
			"email", params.Email,
			"error", err.Error())
		return model.User{}, TokenPair{}, fmt.Errorf("failed to hash password: %w", err)
	}

	var (
		user model.User
		pair TokenPair
	)
	err = dbx.WithTx(ctx, a.db, nil, func(ctx context.Context) error {
		user, err = a.users.Create(ctx, model.User{
			Email:          params.Email,
			HashedPassword: hash,
			FirstName:      params.FirstName,
			LastName:       params.LastName,
			Role:           model.RoleUser,
			IsActive:       true,
		})
		if err != nil {
			return fmt.Errorf("failed to create user: %w", err)
		}

		pair, err = a.issueSession(ctx, user, "")
		return err
	})
	if err != nil {
		a.logger.Error("Auth service: failed to register user",
			"email", params.Email,
			"error", err.Error())
		return model.User{}, TokenPair{}, err
	}

	a.logger.Info("Auth service: user registered successfully",
		"email", params.Email,
		"user_id", user.ID)

	return user, pair, nil
}

// Login verifies credentials and issues a fresh session with a new token
// family. Every failure mode returns the same generic error so callers
// cannot probe which accounts exist.
func (a *Auth) Login(ctx context.Context, email, plaintext string) (model.User, TokenPair, error) {
	a.logger.Debug("Auth service: starting user login",
		"email", email)

	user, err := a.users.GetByEmail(ctx, email)
	if errors.Is(err, model.ErrNotFound) {
		a.logger.Info("Auth service: login for unknown email",
			"email", email)
		return model.User{}, TokenPair{}, model.ErrInvalidCredentials
	}
	if err != nil {
		a.logger.Error("Auth service: failed to get user by email",
			"email", email,
			"error", err.Error())
		return model.User{}, TokenPair{}, fmt.Errorf("failed to get user by email: %w", err)
	}

	if !a.passwords.Verify(plaintext, user.HashedPassword) {
		a.logger.Info("Auth service: wrong password",
			"email", email)
		return model.User{}, TokenPair{}, model.ErrInvalidCredentials
	}

	if user.Deleted() {
		a.logger.Info("Auth service: login for deleted account",
			"email", email)
		return model.User{}, TokenPair{}, model.ErrInvalidCredentials
	}
	if !user.IsActive {
		a.logger.Info("Auth service: login for deactivated account",
			"email", email)
		return model.User{}, TokenPair{}, model.ErrInvalidCredentials
	}

	// Transparent hash upgrade when the stored hash was produced with
	// weaker parameters than currently configured.
	if a.passwords.NeedsRehash(user.HashedPassword) {
		if newHash, hashErr := a.passwords.Hash(plaintext); hashErr == nil {
			if setErr := a.users.SetPassword(ctx, user.ID, newHash); setErr != nil {
				a.logger.Error("Auth service: failed to upgrade password hash",
					"user_id", user.ID,
					"error", setErr.Error())
			} else {
				user.HashedPassword = newHash
			}
		}
	}

	pair, err := a.issueSession(ctx, user, "")
	if err != nil {
		a.logger.Error("Auth service: failed to issue session",
			"user_id", user.ID,
			"error", err.Error())
		return model.User{}, TokenPair{}, err
	}

	a.logger.Info("Auth service: user logged in successfully",
		"user_id", user.ID)

	return user, pair, nil
}

// Refresh rotates a refresh token: the presented token is revoked and a new
// pair in the same family is issued. Presenting an already revoked token is
// treated as theft and revokes the whole family.
func (a *Auth) Refresh(ctx context.Context, refreshToken string) (TokenPair, error) {
	claims, err := a.codec.Verify(refreshToken, model.TokenTypeRefresh)
	if err != nil {
		if errors.Is(err, model.ErrTokenExpired) {
			a.logger.Debug("Auth service: refresh with expired token")
		} else {
			a.logger.Info("Auth service: refresh with invalid token")
		}
		return TokenPair{}, model.ErrInvalidToken
	}

	tokenHash := a.codec.HashToken(refreshToken)
	record, err := a.tokens.GetByHash(ctx, tokenHash)
	if errors.Is(err, model.ErrNotFound) {
		a.logger.Info("Auth service: refresh token not on record",
			"user_id", claims.UserID)
		return TokenPair{}, model.ErrInvalidToken
	}
	if err != nil {
		a.logger.Error("Auth service: failed to get refresh token",
			"user_id", claims.UserID,
			"error", err.Error())
		return TokenPair{}, fmt.Errorf("failed to get refresh token: %w", err)
	}

	if record.IsRevoked {
		return TokenPair{}, a.compromised(ctx, record)
	}
	if a.now().After(record.ExpiresAt) {
		a.logger.Debug("Auth service: refresh token record expired",
			"user_id", record.UserID)
		return TokenPair{}, model.ErrInvalidToken
	}

	user, err := a.users.GetByID(ctx, record.UserID)
	if errors.Is(err, model.ErrNotFound) {
		a.logger.Info("Auth service: refresh for missing user",
			"user_id", record.UserID)
		return TokenPair{}, model.ErrUserUnavailable
	}
	if err != nil {
		a.logger.Error("Auth service: failed to get user by id",
			"user_id", record.UserID,
			"error", err.Error())
		return TokenPair{}, fmt.Errorf("failed to get user by id: %w", err)
	}
	if !user.IsActive || user.Deleted() {
		a.logger.Info("Auth service: refresh for unavailable account",
			"user_id", user.ID)
		return TokenPair{}, model.ErrUserUnavailable
	}

	var pair TokenPair
	err = dbx.WithTx(ctx, a.db, nil, func(ctx context.Context) error {
		revoked, revokeErr := a.tokens.Revoke(ctx, tokenHash, model.RevokeReasonRotated)
		if revokeErr != nil {
			return fmt.Errorf("failed to revoke refresh token: %w", revokeErr)
		}
		if !revoked {
			return errRotationLost
		}

		pair, revokeErr = a.issueSession(ctx, user, record.Family)
		return revokeErr
	})
	if errors.Is(err, errRotationLost) {
		// Another request rotated this token first. The transaction rolled
		// back, so the family revocation below is the only write we keep.
		return TokenPair{}, a.compromised(ctx, record)
	}
	if err != nil {
		a.logger.Error("Auth service: failed to rotate refresh token",
			"user_id", user.ID,
			"error", err.Error())
		return TokenPair{}, err
	}

	a.logger.Info("Auth service: refresh token rotated successfully",
		"user_id", user.ID,
		"family", record.Family)

	return pair, nil
}

// Logout revokes the presented refresh token. Invalid or already revoked
// tokens succeed silently, the end state is the same.
func (a *Auth) Logout(ctx context.Context, refreshToken string) error {
	if _, err := a.codec.Verify(refreshToken, model.TokenTypeRefresh); err != nil {
		a.logger.Debug("Auth service: logout with invalid token")
		return nil
	}

	tokenHash := a.codec.HashToken(refreshToken)
	revoked, err := a.tokens.Revoke(ctx, tokenHash, model.RevokeReasonLogout)
	if err != nil {
		a.logger.Error("Auth service: failed to revoke refresh token",
			"error", err.Error())
		return fmt.Errorf("failed to revoke refresh token: %w", err)
	}

	a.logger.Info("Auth service: user logged out",
		"revoked", revoked)

	return nil
}

// LogoutAll revokes every active refresh token of the user and reports how
// many sessions were terminated.
func (a *Auth) LogoutAll(ctx context.Context, userID uuid.UUID) (int64, error) {
	count, err := a.tokens.RevokeAllByUser(ctx, userID, model.RevokeReasonLogoutAll)
	if err != nil {
		a.logger.Error("Auth service: failed to revoke user tokens",
			"user_id", userID,
			"error", err.Error())
		return 0, fmt.Errorf("failed to revoke user tokens: %w", err)
	}

	a.logger.Info("Auth service: all user sessions revoked",
		"user_id", userID,
		"count", count)

	return count, nil
}

// SweepExpired deletes refresh token records past their expiry.
func (a *Auth) SweepExpired(ctx context.Context) (int64, error) {
	count, err := a.tokens.DeleteExpired(ctx)
	if err != nil {
		a.logger.Error("Auth service: failed to sweep expired tokens",
			"error", err.Error())
		return 0, fmt.Errorf("failed to sweep expired tokens: %w", err)
	}

	if count > 0 {
		a.logger.Info("Auth service: expired tokens swept",
			"count", count)
	}

	return count, nil
}

// compromised handles reuse of a revoked token: the whole family is revoked
// and the caller gets a distinct error.
func (a *Auth) compromised(ctx context.Context, record model.RefreshToken) error {
	count, err := a.tokens.RevokeFamily(ctx, record.Family, model.RevokeReasonReuse)
	if err != nil {
		a.logger.Error("Auth service: failed to revoke token family",
			"user_id", record.UserID,
			"family", record.Family,
			"error", err.Error())
		return fmt.Errorf("failed to revoke token family: %w", err)
	}

	a.logger.Warn("Auth service: revoked token reuse detected, family revoked",
		"user_id", record.UserID,
		"family", record.Family,
		"revoked", count)

	return model.ErrSessionCompromised
}

// issueSession mints an access and refresh token pair for the user and
// persists the refresh token record. An empty family starts a new one.
func (a *Auth) issueSession(ctx context.Context, user model.User, family string) (TokenPair, error) {
	access, _, err := a.codec.IssueAccess(user, model.PermissionsForRole(user.Role))
	if err != nil {
		return TokenPair{}, fmt.Errorf("failed to issue access token: %w", err)
	}

	refresh, tokenHash, family, expiresAt, err := a.codec.IssueRefresh(user.ID, user.Email, family)
	if err != nil {
		return TokenPair{}, fmt.Errorf("failed to issue refresh token: %w", err)
	}

	err = a.tokens.Create(ctx, model.RefreshToken{
		UserID:    user.ID,
		TokenHash: tokenHash,
		Family:    family,
		ExpiresAt: expiresAt,
	})
	if err != nil {
		return TokenPair{}, fmt.Errorf("failed to persist refresh token: %w", err)
	}

	return TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "Bearer",
		ExpiresIn:    int64(a.codec.AccessTTL().Seconds()),
	}, nil
}
