package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/synapse-notes/backend/middleware"
	"github.com/synapse-notes/backend/models"
	"github.com/synapse-notes/backend/services"
	"github.com/synapse-notes/backend/utils"
	"go.uber.org/zap"
)

type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Register(ctx context.Context, in services.RegisterInput) (*services.Session, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.Session), args.Error(1)
}

func (m *MockAuthService) Login(ctx context.Context, username, password string) (*services.Session, error) {
	args := m.Called(ctx, username, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.Session), args.Error(1)
}

func (m *MockAuthService) Me(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func decodeErrorBody(t *testing.T, w *httptest.ResponseRecorder) utils.ErrorResponse {
	t.Helper()
	var body utils.ErrorResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	return body
}

func TestAuthHandler_Register(t *testing.T) {
	logger := zap.NewNop()

	t.Run("creates account", func(t *testing.T) {
		svc := &MockAuthService{}
		svc.On("Register", mock.Anything, services.RegisterInput{
			Username: "ada", Email: "ada@example.com", Password: "secret1",
		}).Return(&services.Session{Token: "tok", Username: "ada"}, nil)
		h := NewAuthHandler(svc, logger)

		req := httptest.NewRequest(http.MethodPost, "/api/auth/register",
			strings.NewReader(`{"username":"ada","email":"ada@example.com","password":"secret1"}`))
		w := httptest.NewRecorder()
		h.HandleRegister(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)
		var body SessionResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
		assert.Equal(t, "tok", body.Token)
		assert.Equal(t, "ada", body.Username)
		assert.Equal(t, "User registered successfully", body.Message)
		svc.AssertExpectations(t)
	})

	t.Run("duplicate is conflict", func(t *testing.T) {
		svc := &MockAuthService{}
		svc.On("Register", mock.Anything, mock.Anything).Return(nil, services.ErrDuplicateUser)
		h := NewAuthHandler(svc, logger)

		req := httptest.NewRequest(http.MethodPost, "/api/auth/register",
			strings.NewReader(`{"username":"ada","email":"ada@example.com","password":"secret1"}`))
		w := httptest.NewRecorder()
		h.HandleRegister(w, req)

		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, "Username or email already exists", decodeErrorBody(t, w).Error)
	})

	t.Run("invalid fields never reach the service", func(t *testing.T) {
		tests := []struct {
			name  string
			body  string
			field string
		}{
			{"short username", `{"username":"ab","email":"ada@example.com","password":"secret1"}`, "username"},
			{"bad email", `{"username":"ada","email":"nope","password":"secret1"}`, "email"},
			{"short password", `{"username":"ada","email":"ada@example.com","password":"123"}`, "password"},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				svc := &MockAuthService{}
				h := NewAuthHandler(svc, logger)

				w := httptest.NewRecorder()
				h.HandleRegister(w, httptest.NewRequest(http.MethodPost, "/api/auth/register", strings.NewReader(tt.body)))

				assert.Equal(t, http.StatusBadRequest, w.Code)
				assert.Contains(t, decodeErrorBody(t, w).Details, tt.field)
				svc.AssertNotCalled(t, "Register", mock.Anything, mock.Anything)
			})
		}
	})

	t.Run("malformed json", func(t *testing.T) {
		h := NewAuthHandler(&MockAuthService{}, logger)

		w := httptest.NewRecorder()
		h.HandleRegister(w, httptest.NewRequest(http.MethodPost, "/api/auth/register", strings.NewReader(`{`)))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Invalid request body", decodeErrorBody(t, w).Error)
	})
}

func TestAuthHandler_Login(t *testing.T) {
	logger := zap.NewNop()

	t.Run("signs in", func(t *testing.T) {
		svc := &MockAuthService{}
		svc.On("Login", mock.Anything, "ada", "secret1").Return(&services.Session{Token: "tok", Username: "ada"}, nil)
		h := NewAuthHandler(svc, logger)

		w := httptest.NewRecorder()
		h.HandleLogin(w, httptest.NewRequest(http.MethodPost, "/api/auth/login",
			strings.NewReader(`{"username":"ada","password":"secret1"}`)))

		assert.Equal(t, http.StatusOK, w.Code)
		var body SessionResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
		assert.Equal(t, "Logged in successfully", body.Message)
	})

	t.Run("bad credentials", func(t *testing.T) {
		svc := &MockAuthService{}
		svc.On("Login", mock.Anything, "ada", "wrong").Return(nil, services.ErrInvalidCredentials)
		h := NewAuthHandler(svc, logger)

		w := httptest.NewRecorder()
		h.HandleLogin(w, httptest.NewRequest(http.MethodPost, "/api/auth/login",
			strings.NewReader(`{"username":"ada","password":"wrong"}`)))

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "Invalid username or password", decodeErrorBody(t, w).Error)
	})
}

func TestAuthHandler_Me(t *testing.T) {
	logger := zap.NewNop()
	id := uuid.New()

	t.Run("returns user without password hash", func(t *testing.T) {
		svc := &MockAuthService{}
		svc.On("Me", mock.Anything, id).Return(&models.User{ID: id, Username: "ada", PasswordHash: "$2a$hash"}, nil)
		h := NewAuthHandler(svc, logger)

		req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
		req = req.WithContext(middleware.WithPrincipal(req.Context(), &middleware.Principal{ID: id, DisplayName: "ada"}))
		w := httptest.NewRecorder()
		h.HandleMe(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"username":"ada"`)
		assert.NotContains(t, w.Body.String(), "$2a$hash")
	})

	t.Run("no principal", func(t *testing.T) {
		h := NewAuthHandler(&MockAuthService{}, logger)

		w := httptest.NewRecorder()
		h.HandleMe(w, httptest.NewRequest(http.MethodGet, "/api/auth/me", nil))

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}
