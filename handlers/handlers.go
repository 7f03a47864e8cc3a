// Package handlers contains the thin HTTP layer: decode, call a service,
// map the result or DomainError to JSON.
package handlers

import (
	"go.uber.org/zap"
)

// Config carries the values handlers need from configuration
type Config struct {
	Version        string
	Environment    string
	MaxUploadBytes int64
}

// Services are the dependencies handlers call into
type Services struct {
	Auth      AuthService
	Notes     NotesService
	Gateway   GatewayService
	DB        Pinger
	Providers ProviderLister
}

// Handlers groups every HTTP handler of the API
type Handlers struct {
	Auth   *AuthHandler
	Notes  *NotesHandler
	AI     *AIHandler
	Health *HealthHandler
}

// New builds all handlers
func New(cfg Config, svc Services, logger *zap.Logger) *Handlers {
	return &Handlers{
		Auth:   NewAuthHandler(svc.Auth, logger.Named("auth")),
		Notes:  NewNotesHandler(svc.Notes, logger.Named("notes")),
		AI:     NewAIHandler(svc.Gateway, cfg.MaxUploadBytes, logger.Named("ai")),
		Health: NewHealthHandler(svc.DB, svc.Providers, cfg.Version, cfg.Environment, logger.Named("health")),
	}
}
