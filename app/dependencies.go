package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/synapse-notes/backend/auth"
	"github.com/synapse-notes/backend/config"
	"github.com/synapse-notes/backend/internal/observability"
	"github.com/synapse-notes/backend/internal/router"
	"github.com/synapse-notes/backend/middleware"
	"github.com/synapse-notes/backend/repositories"
	"github.com/synapse-notes/backend/repositories/postgres"
	"github.com/synapse-notes/backend/services"
	"github.com/synapse-notes/backend/services/gateway"
	"github.com/synapse-notes/backend/services/notes"
	"github.com/synapse-notes/backend/services/providers"
	"github.com/synapse-notes/backend/services/ratelimit"
	"go.uber.org/zap"
)

// Dependencies holds all application dependencies.
// This is the central wiring point for dependency injection.
type Dependencies struct {
	// Infrastructure
	Config  *config.Config
	DB      *postgres.DB
	Logger  *zap.Logger
	Metrics *observability.Metrics

	// Repository Factory
	RepoFactory *postgres.RepositoryFactory

	// Repositories
	Users     repositories.UserRepository
	Folders   repositories.FolderRepository
	Notes     repositories.NoteRepository
	TxManager repositories.TransactionManager

	// Auth
	Tokens         *auth.TokenManager
	Passwords      *auth.PasswordHasher
	AuthService    *services.AuthService
	AuthMiddleware *middleware.AuthMiddleware

	// Notes
	NotesService *notes.Service

	// Inference gateway
	Providers *providers.Registry
	Gateway   *gateway.Service

	// RateLimit is nil when no Redis address is configured
	RateLimit *middleware.RateLimitMiddleware
	redis     *redis.Client
}

// NewDependencies connects to PostgreSQL and wires up all application dependencies
func NewDependencies(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Dependencies, error) {
	factory, err := postgres.NewRepositoryFactory(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	deps, err := NewDependenciesWithFactory(ctx, cfg, factory, logger)
	if err != nil {
		_ = factory.Close()
		return nil, err
	}
	return deps, nil
}

// NewDependenciesWithFactory wires everything on top of an existing repository factory
func NewDependenciesWithFactory(ctx context.Context, cfg *config.Config, factory *postgres.RepositoryFactory, logger *zap.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Config:      cfg,
		Logger:      logger,
		Metrics:     observability.NewMetrics(),
		RepoFactory: factory,
		DB:          factory.GetDB(),
	}

	deps.initRepositories()
	deps.initAuth(cfg)
	deps.NotesService = notes.NewService(deps.Folders, deps.Notes, deps.TxManager, logger.Named("notes"))

	if err := deps.initGateway(ctx, cfg); err != nil {
		return nil, fmt.Errorf("failed to initialize gateway: %w", err)
	}

	deps.initRateLimit(cfg)

	logger.Info("all dependencies initialized successfully",
		zap.Strings("providers", deps.Providers.List()),
		zap.Bool("rate_limit", deps.RateLimit != nil))
	return deps, nil
}

// initRepositories initializes all repository instances
func (d *Dependencies) initRepositories() {
	repos := d.RepoFactory.NewRepositories()

	d.Users = repos.Users
	d.Folders = repos.Folders
	d.Notes = repos.Notes
	d.TxManager = d.RepoFactory.GetTransactionManager()

	d.Logger.Debug("repositories initialized")
}

func (d *Dependencies) initAuth(cfg *config.Config) {
	d.Tokens = auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	d.Passwords = auth.NewPasswordHasher(cfg.Auth.BcryptCost)
	d.AuthService = services.NewAuthService(d.Users, d.Passwords, d.Tokens, d.Logger.Named("auth"))
	d.AuthMiddleware = middleware.NewAuthMiddleware(d.Tokens, d.Logger.Named("auth"))
}

func (d *Dependencies) initGateway(ctx context.Context, cfg *config.Config) error {
	registry, ids, err := BuildProviders(ctx, cfg, nil)
	if err != nil {
		return err
	}

	adapters, err := gateway.ResolveAdapters(registry, ids)
	if err != nil {
		return err
	}

	guard := gateway.NewGuard(gateway.Limits{
		SummarizeMinChars:   cfg.Gateway.SummarizeMinChars,
		SummarizeMaxChars:   cfg.Gateway.SummarizeMaxChars,
		TranscribeMinChars:  cfg.Gateway.TranscribeMinChars,
		ChatContextMaxChars: cfg.Gateway.ChatContextMaxChars,
	})
	executor := router.NewExecutor(d.Logger.Named("router"), d.Metrics, cfg.Providers.Timeout)

	d.Providers = registry
	d.Gateway = gateway.NewService(guard, executor, adapters, d.Metrics, d.Logger.Named("gateway"))
	return nil
}

func (d *Dependencies) initRateLimit(cfg *config.Config) {
	if !cfg.RateLimit.Enabled() {
		d.Logger.Warn("REDIS_ADDR not set, AI rate limiting disabled")
		return
	}

	d.redis = redis.NewClient(&redis.Options{
		Addr:     cfg.RateLimit.RedisAddr,
		Password: cfg.RateLimit.RedisPassword,
		DB:       cfg.RateLimit.RedisDB,
	})
	limiter := ratelimit.NewLimiter(
		ratelimit.NewRedisCounter(d.redis),
		cfg.RateLimit.RequestsPerMinute,
		ratelimit.DefaultWindow,
		d.Logger.Named("ratelimit"),
	)
	d.RateLimit = middleware.NewRateLimitMiddleware(limiter, d.Logger.Named("ratelimit"))
}

// Close gracefully shuts down all dependencies
func (d *Dependencies) Close(ctx context.Context) error {
	d.Logger.Info("shutting down dependencies")

	var errs []error

	if d.redis != nil {
		if err := d.redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close redis: %w", err))
		}
		d.redis = nil
	}

	if d.RepoFactory != nil {
		if err := d.RepoFactory.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database: %w", err))
		} else {
			d.Logger.Info("database connection closed")
		}
		d.RepoFactory = nil
	}

	_ = d.Logger.Sync()

	return errors.Join(errs...)
}
