package router

import (
	"net/http"

	"github.com/pkondratev/auth-server/internal/api/http/handler"
	"github.com/pkondratev/auth-server/internal/api/http/middleware"
	"github.com/pkondratev/auth-server/internal/logger"
	"github.com/pkondratev/auth-server/internal/model"
)

// Router wires the HTTP handlers and middleware.
type Router struct {
	authService    handler.AuthService
	db             handler.Pinger
	codec          model.TokenManager
	contextManager model.ContextManager
	logger         *logger.Logger
}

// New creates a new Router instance.
func New(
	authService handler.AuthService,
	db handler.Pinger,
	codec model.TokenManager,
	contextManager model.ContextManager,
	logger *logger.Logger,
) *Router {
	return &Router{
		authService:    authService,
		db:             db,
		codec:          codec,
		contextManager: contextManager,
		logger:         logger,
	}
}

// Register builds the handler tree. Only logout-all sits behind the
// authentication middleware, the other auth endpoints authenticate by the
// credentials or tokens in their request bodies.
func (r *Router) Register() http.Handler {
	logging := middleware.NewLogging(r.logger)
	authenticate := middleware.NewAuthenticate(r.codec, r.contextManager, r.logger)

	authHandler := handler.NewAuth(r.authService, r.contextManager, r.logger)
	healthHandler := handler.NewHealth(r.db, r.logger)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/auth/register", authHandler.Register)
	mux.HandleFunc("POST /api/v1/auth/login", authHandler.Login)
	mux.HandleFunc("POST /api/v1/auth/refresh", authHandler.Refresh)
	mux.HandleFunc("POST /api/v1/auth/logout", authHandler.Logout)
	mux.Handle("POST /api/v1/auth/logout-all", authenticate.Handle(http.HandlerFunc(authHandler.LogoutAll)))
	mux.HandleFunc("GET /api/v1/health", healthHandler.Check)

	return logging.Handle(mux)
}
