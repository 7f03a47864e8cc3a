package services

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/synapse-notes/backend/auth"
	"github.com/synapse-notes/backend/models"
	"github.com/synapse-notes/backend/repositories"
	"go.uber.org/zap"
)

// PasswordHasher hashes and verifies passwords
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

// TokenIssuer signs session tokens
type TokenIssuer interface {
	Issue(userID uuid.UUID, username string) (string, error)
}

// RegisterInput is the data needed to create an account
type RegisterInput struct {
	Username string
	Email    string
	Password string
}

// Session is returned after a successful register or login
type Session struct {
	Token    string
	User     *models.User
	Username string
}

// AuthService registers users and signs them in
type AuthService struct {
	users  repositories.UserRepository
	hasher PasswordHasher
	tokens TokenIssuer
	logger *zap.Logger
}

// NewAuthService creates a new AuthService
func NewAuthService(users repositories.UserRepository, hasher PasswordHasher, tokens TokenIssuer, logger *zap.Logger) *AuthService {
	return &AuthService{
		users:  users,
		hasher: hasher,
		tokens: tokens,
		logger: logger,
	}
}

// Register creates an account and returns a session for it
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*Session, error) {
	username := strings.TrimSpace(in.Username)
	email := strings.ToLower(strings.TrimSpace(in.Email))

	exists, err := s.users.ExistsByUsernameOrEmail(ctx, username, email)
	if err != nil {
		return nil, WrapInternal("failed to check user existence", err)
	}
	if exists {
		return nil, ErrDuplicateUser
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, WrapInternal("failed to hash password", err)
	}

	user := models.NewUser(username, email, hash)
	if err := s.users.Create(ctx, user); err != nil {
		// Lost a race with a concurrent registration
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, ErrDuplicateUser
		}
		return nil, WrapInternal("failed to create user", err)
	}

	s.logger.Info("user registered", zap.String("user_id", user.ID.String()))

	return s.session(user)
}

// Login verifies credentials. Unknown users and wrong passwords fail the same way.
func (s *AuthService) Login(ctx context.Context, username, password string) (*Session, error) {
	user, err := s.users.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, WrapInternal("failed to load user", err)
	}

	if err := s.hasher.Compare(user.PasswordHash, password); err != nil {
		if errors.Is(err, auth.ErrPasswordMismatch) {
			s.logger.Debug("login rejected", zap.String("user_id", user.ID.String()))
			return nil, ErrInvalidCredentials
		}
		return nil, WrapInternal("failed to verify password", err)
	}

	return s.session(user)
}

// Me returns the account of the authenticated caller
func (s *AuthService) Me(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, WrapInternal("failed to load user", err)
	}
	return user, nil
}

func (s *AuthService) session(user *models.User) (*Session, error) {
	token, err := s.tokens.Issue(user.ID, user.Username)
	if err != nil {
		return nil, WrapInternal("failed to issue token", err)
	}
	return &Session{Token: token, User: user, Username: user.Username}, nil
}
