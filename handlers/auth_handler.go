package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/synapse-notes/backend/middleware"
	"github.com/synapse-notes/backend/models"
	"github.com/synapse-notes/backend/services"
	"github.com/synapse-notes/backend/utils"
	"go.uber.org/zap"
)

const (
	msgRegistered = "User registered successfully"
	msgLoggedIn   = "Logged in successfully"
)

// AuthService defines the account operations the handler needs
type AuthService interface {
	Register(ctx context.Context, in services.RegisterInput) (*services.Session, error)
	Login(ctx context.Context, username, password string) (*services.Session, error)
	Me(ctx context.Context, userID uuid.UUID) (*models.User, error)
}

// RegisterRequest is the body of POST /api/auth/register
type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// LoginRequest is the body of POST /api/auth/login
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// SessionResponse is returned by register and login
type SessionResponse struct {
	Token    string `json:"token"`
	Username string `json:"username"`
	Message  string `json:"message"`
}

// AuthHandler handles account endpoints
type AuthHandler struct {
	service AuthService
	logger  *zap.Logger
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(service AuthService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		service: service,
		logger:  logger,
	}
}

// HandleRegister handles POST /api/auth/register
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !decodeAndValidate(w, r, &req, h.logger) {
		return
	}

	session, err := h.service.Register(r.Context(), services.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		HandleServiceError(w, r, err, h.logger)
		return
	}

	if err := utils.WriteCreated(w, SessionResponse{
		Token:    session.Token,
		Username: session.Username,
		Message:  msgRegistered,
	}); err != nil {
		h.logger.Error("failed to write response", zap.Error(err))
	}
}

// HandleLogin handles POST /api/auth/login
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeAndValidate(w, r, &req, h.logger) {
		return
	}

	session, err := h.service.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		HandleServiceError(w, r, err, h.logger)
		return
	}

	if err := utils.WriteOK(w, SessionResponse{
		Token:    session.Token,
		Username: session.Username,
		Message:  msgLoggedIn,
	}); err != nil {
		h.logger.Error("failed to write response", zap.Error(err))
	}
}

// HandleMe handles GET /api/auth/me
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	principal := middleware.GetPrincipalFromContext(r.Context())
	if principal == nil {
		HandleServiceError(w, r, services.ErrUnauthorized, h.logger)
		return
	}

	user, err := h.service.Me(r.Context(), principal.ID)
	if err != nil {
		HandleServiceError(w, r, err, h.logger)
		return
	}

	if err := utils.WriteOK(w, user); err != nil {
		h.logger.Error("failed to write response", zap.Error(err))
	}
}

// decodeAndValidate decodes a JSON body into dst and runs its validate tags.
// On failure it writes a 400 and returns false.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, dst interface{}, logger *zap.Logger) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		logger.Debug("failed to parse request body",
			zap.String("request_id", middleware.GetRequestIDFromContext(r.Context())),
			zap.Error(err))
		HandleValidationError(w, err, logger)
		return false
	}

	if err := utils.ValidateStruct(dst); err != nil {
		HandleValidationError(w, err, logger)
		return false
	}
	return true
}
