package mocks

import (
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/pkondratev/auth-server/internal/model"
)

type TokenManager struct {
	mock.Mock
}

func (m *TokenManager) IssueAccess(user model.User, permissions []string) (string, time.Time, error) {
	args := m.Called(user, permissions)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}

func (m *TokenManager) IssueRefresh(userID uuid.UUID, email string, family string) (string, string, string, time.Time, error) {
	args := m.Called(userID, email, family)
	return args.String(0), args.String(1), args.String(2), args.Get(3).(time.Time), args.Error(4)
}

func (m *TokenManager) Verify(token string, expected model.TokenType) (model.Claims, error) {
	args := m.Called(token, expected)
	return args.Get(0).(model.Claims), args.Error(1)
}

func (m *TokenManager) HashToken(token string) string {
	args := m.Called(token)
	return args.String(0)
}

func (m *TokenManager) AccessTTL() time.Duration {
	args := m.Called()
	return args.Get(0).(time.Duration)
}
