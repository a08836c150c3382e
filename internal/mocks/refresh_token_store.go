package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/pkondratev/auth-server/internal/model"
)

type RefreshTokenStore struct {
	mock.Mock
}

func (m *RefreshTokenStore) Create(ctx context.Context, token model.RefreshToken) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *RefreshTokenStore) GetByHash(ctx context.Context, tokenHash string) (model.RefreshToken, error) {
	args := m.Called(ctx, tokenHash)
	return args.Get(0).(model.RefreshToken), args.Error(1)
}

func (m *RefreshTokenStore) Revoke(ctx context.Context, tokenHash string, reason string) (bool, error) {
	args := m.Called(ctx, tokenHash, reason)
	return args.Bool(0), args.Error(1)
}

func (m *RefreshTokenStore) RevokeFamily(ctx context.Context, family string, reason string) (int64, error) {
	args := m.Called(ctx, family, reason)
	return args.Get(0).(int64), args.Error(1)
}

func (m *RefreshTokenStore) RevokeAllByUser(ctx context.Context, userID uuid.UUID, reason string) (int64, error) {
	args := m.Called(ctx, userID, reason)
	return args.Get(0).(int64), args.Error(1)
}

func (m *RefreshTokenStore) DeleteExpired(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}
