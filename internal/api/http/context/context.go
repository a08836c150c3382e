package context

import (
	"context"

	"github.com/pkondratev/auth-server/internal/model"
)

type claimsKey struct{}

// Manager stores and retrieves verified token claims on a request context.
type Manager struct{}

// NewManager creates a new context manager instance.
func NewManager() *Manager {
	return &Manager{}
}

// SetClaimsToContext returns a new context carrying the verified claims.
func (m *Manager) SetClaimsToContext(ctx context.Context, claims model.Claims) context.Context {
	return context.WithValue(ctx, claimsKey{}, claims)
}

// GetClaimsFromContext retrieves claims previously stored by the
// authentication middleware. The boolean reports whether claims were present.
func (m *Manager) GetClaimsFromContext(ctx context.Context) (model.Claims, bool) {
	claims, ok := ctx.Value(claimsKey{}).(model.Claims)
	return claims, ok
}
