package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"github.com/pkondratev/auth-server/internal/logger"
	"github.com/pkondratev/auth-server/internal/model"
	"github.com/pkondratev/auth-server/internal/service"
)

// AuthService is the part of the auth orchestrator the HTTP handlers use.
type AuthService interface {
	Register(ctx context.Context, params service.RegisterParams) (model.User, service.TokenPair, error)
	Login(ctx context.Context, email, password string) (model.User, service.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (service.TokenPair, error)
	Logout(ctx context.Context, refreshToken string) error
	LogoutAll(ctx context.Context, userID uuid.UUID) (int64, error)
}

// Auth exposes the authentication endpoints.
type Auth struct {
	service        AuthService
	contextManager model.ContextManager
	logger         *logger.Logger
}

// NewAuth creates the auth handler.
func NewAuth(service AuthService, contextManager model.ContextManager, logger *logger.Logger) *Auth {
	return &Auth{service: service, contextManager: contextManager, logger: logger}
}

type registerRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type logoutAllResponse struct {
	RevokedSessions int64 `json:"revoked_sessions"`
}

// Register handles POST /api/v1/auth/register.
func (h *Auth) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	if req.Email == "" || req.Password == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "email and password are required"})
		return
	}

	_, pair, err := h.service.Register(r.Context(), service.RegisterParams{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, pair)
}

// Login handles POST /api/v1/auth/login.
func (h *Auth) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	_, pair, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, pair)
}

// Refresh handles POST /api/v1/auth/refresh.
func (h *Auth) Refresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	pair, err := h.service.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, pair)
}

// Logout handles POST /api/v1/auth/logout. Always succeeds for a well-formed
// request, the token ends up revoked or was never usable.
func (h *Auth) Logout(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	if err := h.service.Logout(r.Context(), req.RefreshToken); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// LogoutAll handles POST /api/v1/auth/logout-all. Requires an authenticated
// access token, the middleware puts its claims on the context.
func (h *Auth) LogoutAll(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.contextManager.GetClaimsFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: model.ErrInvalidToken.Error()})
		return
	}

	count, err := h.service.LogoutAll(r.Context(), claims.UserID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, logoutAllResponse{RevokedSessions: count})
}
