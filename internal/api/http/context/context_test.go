package context

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/pkondratev/auth-server/internal/model"
)

func TestManager_SetAndGetClaims(t *testing.T) {
	m := NewManager()

	claims := model.Claims{
		UserID:    uuid.New(),
		Email:     "user@example.com",
		Role:      model.RoleUser,
		TokenType: model.TokenTypeAccess,
	}

	ctx := m.SetClaimsToContext(context.Background(), claims)

	got, ok := m.GetClaimsFromContext(ctx)
	assert.True(t, ok)
	assert.Equal(t, claims.UserID, got.UserID)
	assert.Equal(t, claims.Email, got.Email)
}

func TestManager_GetClaims_Missing(t *testing.T) {
	m := NewManager()

	_, ok := m.GetClaimsFromContext(context.Background())
	assert.False(t, ok)
}
