package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	httpctx "github.com/pkondratev/auth-server/internal/api/http/context"
	"github.com/pkondratev/auth-server/internal/model"
	"github.com/pkondratev/auth-server/internal/service"
	"github.com/pkondratev/auth-server/internal/testutil"
)

type authServiceMock struct {
	mock.Mock
}

func (m *authServiceMock) Register(ctx context.Context, params service.RegisterParams) (model.User, service.TokenPair, error) {
	args := m.Called(ctx, params)
	return args.Get(0).(model.User), args.Get(1).(service.TokenPair), args.Error(2)
}

func (m *authServiceMock) Login(ctx context.Context, email, password string) (model.User, service.TokenPair, error) {
	args := m.Called(ctx, email, password)
	return args.Get(0).(model.User), args.Get(1).(service.TokenPair), args.Error(2)
}

func (m *authServiceMock) Refresh(ctx context.Context, refreshToken string) (service.TokenPair, error) {
	args := m.Called(ctx, refreshToken)
	return args.Get(0).(service.TokenPair), args.Error(1)
}

func (m *authServiceMock) Logout(ctx context.Context, refreshToken string) error {
	args := m.Called(ctx, refreshToken)
	return args.Error(0)
}

func (m *authServiceMock) LogoutAll(ctx context.Context, userID uuid.UUID) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func newAuthHandler(t *testing.T) (*Auth, *authServiceMock) {
	t.Helper()
	svc := &authServiceMock{}
	return NewAuth(svc, httpctx.NewManager(), testutil.MakeNoopLogger()), svc
}

func testPair() service.TokenPair {
	return service.TokenPair{
		AccessToken:  "access-token",
		RefreshToken: "refresh-token",
		TokenType:    "Bearer",
		ExpiresIn:    900,
	}
}

func postJSON(t *testing.T, handlerFunc http.HandlerFunc, body any) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(raw))
	w := httptest.NewRecorder()
	handlerFunc(w, req)
	return w
}

func TestAuth_Register(t *testing.T) {
	h, svc := newAuthHandler(t)

	svc.On("Register", mock.Anything, service.RegisterParams{
		Email:    "new@example.com",
		Password: "Sup3rSecret!",
	}).Return(model.User{ID: uuid.New()}, testPair(), nil)

	w := postJSON(t, h.Register, map[string]string{
		"email":    "new@example.com",
		"password": "Sup3rSecret!",
	})

	assert.Equal(t, http.StatusCreated, w.Code)

	var pair service.TokenPair
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &pair))
	assert.Equal(t, "access-token", pair.AccessToken)
	assert.Equal(t, "Bearer", pair.TokenType)
	assert.Equal(t, int64(900), pair.ExpiresIn)
}

func TestAuth_Register_MissingFields(t *testing.T) {
	h, svc := newAuthHandler(t)

	w := postJSON(t, h.Register, map[string]string{"email": "new@example.com"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertNotCalled(t, "Register", mock.Anything, mock.Anything)
}

func TestAuth_Register_WeakPassword(t *testing.T) {
	h, svc := newAuthHandler(t)

	svc.On("Register", mock.Anything, mock.Anything).
		Return(model.User{}, service.TokenPair{}, &model.ValidationError{
			Violations: []string{"password must be at least 8 characters"},
		})

	w := postJSON(t, h.Register, map[string]string{
		"email":    "new@example.com",
		"password": "short",
	})

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	var resp struct {
		Violations []string `json:"violations"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Violations)
}

func TestAuth_Register_EmailTaken(t *testing.T) {
	h, svc := newAuthHandler(t)

	svc.On("Register", mock.Anything, mock.Anything).
		Return(model.User{}, service.TokenPair{}, model.ErrEmailTaken)

	w := postJSON(t, h.Register, map[string]string{
		"email":    "taken@example.com",
		"password": "Sup3rSecret!",
	})

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestAuth_Login(t *testing.T) {
	h, svc := newAuthHandler(t)

	svc.On("Login", mock.Anything, "user@example.com", "Sup3rSecret!").
		Return(model.User{ID: uuid.New()}, testPair(), nil)

	w := postJSON(t, h.Login, map[string]string{
		"email":    "user@example.com",
		"password": "Sup3rSecret!",
	})

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuth_Login_InvalidCredentials(t *testing.T) {
	h, svc := newAuthHandler(t)

	svc.On("Login", mock.Anything, "user@example.com", "wrong").
		Return(model.User{}, service.TokenPair{}, model.ErrInvalidCredentials)

	w := postJSON(t, h.Login, map[string]string{
		"email":    "user@example.com",
		"password": "wrong",
	})

	assert.Equal(t, http.StatusUnauthorized, w.Code)

	var resp struct {
		Error string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, model.ErrInvalidCredentials.Error(), resp.Error)
}

func TestAuth_Refresh(t *testing.T) {
	h, svc := newAuthHandler(t)

	svc.On("Refresh", mock.Anything, "refresh-token").Return(testPair(), nil)

	w := postJSON(t, h.Refresh, map[string]string{"refresh_token": "refresh-token"})

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuth_Refresh_Compromised(t *testing.T) {
	h, svc := newAuthHandler(t)

	svc.On("Refresh", mock.Anything, "stolen-token").
		Return(service.TokenPair{}, model.ErrSessionCompromised)

	w := postJSON(t, h.Refresh, map[string]string{"refresh_token": "stolen-token"})

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuth_Logout(t *testing.T) {
	h, svc := newAuthHandler(t)

	svc.On("Logout", mock.Anything, "refresh-token").Return(nil)

	w := postJSON(t, h.Logout, map[string]string{"refresh_token": "refresh-token"})

	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestAuth_LogoutAll(t *testing.T) {
	h, svc := newAuthHandler(t)

	userID := uuid.New()
	svc.On("LogoutAll", mock.Anything, userID).Return(int64(3), nil)

	raw, err := json.Marshal(map[string]string{})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(raw))
	ctx := httpctx.NewManager().SetClaimsToContext(req.Context(), model.Claims{
		UserID:    userID,
		TokenType: model.TokenTypeAccess,
	})
	w := httptest.NewRecorder()
	h.LogoutAll(w, req.WithContext(ctx))

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		RevokedSessions int64 `json:"revoked_sessions"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, int64(3), resp.RevokedSessions)
}

func TestAuth_LogoutAll_NoClaims(t *testing.T) {
	h, svc := newAuthHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader([]byte("{}")))
	w := httptest.NewRecorder()
	h.LogoutAll(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	svc.AssertNotCalled(t, "LogoutAll", mock.Anything, mock.Anything)
}
