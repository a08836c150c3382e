package middleware

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/pkondratev/auth-server/internal/logger"
	"github.com/pkondratev/auth-server/internal/model"
)

// Authenticate validates bearer access tokens and injects the verified
// claims into the request context.
type Authenticate struct {
	codec          model.TokenManager
	contextManager model.ContextManager
	logger         *logger.Logger
}

// NewAuthenticate creates a new Authenticate middleware instance.
func NewAuthenticate(codec model.TokenManager, contextManager model.ContextManager, logger *logger.Logger) *Authenticate {
	return &Authenticate{codec: codec, contextManager: contextManager, logger: logger}
}

// Handle rejects requests without a valid bearer access token.
func (m *Authenticate) Handle(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			unauthorized(w, "missing authorization token")
			return
		}

		claims, err := m.codec.Verify(token, model.TokenTypeAccess)
		if err != nil {
			m.logger.Debug("authentication failed", "error", err.Error())
			unauthorized(w, model.ErrInvalidToken.Error())
			return
		}

		next.ServeHTTP(w, r.WithContext(m.contextManager.SetClaimsToContext(r.Context(), claims)))
	})
}

func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
