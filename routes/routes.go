package routes

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/synapse-notes/backend/app"
	"github.com/synapse-notes/backend/handlers"
	"github.com/synapse-notes/backend/middleware"
	"github.com/synapse-notes/backend/utils"
	"go.uber.org/zap"
)

// requestTimeout bounds a whole request. The AI chains may run several
// provider calls back to back, each with its own timeout.
const requestTimeout = 3 * time.Minute

// Middlewares are the per-route-group middlewares
type Middlewares struct {
	RequireAuth func(http.Handler) http.Handler
	// RateLimit guards /api/ai; nil disables it
	RateLimit func(http.Handler) http.Handler
}

// Options configure the router
type Options struct {
	AllowedOrigins []string
	// Metrics serves /metrics; nil disables the endpoint
	Metrics http.Handler
}

// SetupRoutes builds the application router from the dependency container
func SetupRoutes(deps *app.Dependencies) http.Handler {
	cfg := deps.Config

	h := handlers.New(handlers.Config{
		Version:        cfg.Version,
		Environment:    cfg.Environment,
		MaxUploadBytes: cfg.Gateway.MaxUploadBytes,
	}, handlers.Services{
		Auth:      deps.AuthService,
		Notes:     deps.NotesService,
		Gateway:   deps.Gateway,
		DB:        deps.DB,
		Providers: deps.Providers,
	}, deps.Logger)

	mw := Middlewares{RequireAuth: deps.AuthMiddleware.RequireAuth}
	if deps.RateLimit != nil {
		mw.RateLimit = deps.RateLimit.Limit
	}

	opts := Options{AllowedOrigins: cfg.CORS.AllowedOrigins}
	if cfg.Observability.MetricsEnabled {
		opts.Metrics = deps.Metrics.Handler()
	}

	return NewRouter(h, mw, opts, deps.Logger)
}

// NewRouter configures all application routes and middleware
func NewRouter(h *handlers.Handlers, mw Middlewares, opts Options, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	// Core middleware
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger(logger.Named("http")))
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(requestTimeout))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"X-Request-ID", handlers.DegradedHeader, "Retry-After", "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check endpoints
	r.Get("/healthz", h.Health.HandleHealth)
	r.Get("/readyz", h.Health.HandleReadiness)
	if opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", opts.Metrics)
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/status", h.Health.HandleStatus)

		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", h.Auth.HandleRegister)
			r.Post("/login", h.Auth.HandleLogin)
			r.With(mw.RequireAuth).Get("/me", h.Auth.HandleMe)
		})

		r.Route("/notes", func(r chi.Router) {
			r.Use(mw.RequireAuth)
			r.Get("/folders", h.Notes.HandleListFolders)
			r.Post("/folders", h.Notes.HandleCreateFolder)
			r.Put("/folders/{id}", h.Notes.HandleRenameFolder)
			r.Delete("/folders/{id}", h.Notes.HandleDeleteFolder)
			r.Get("/folders/{folderId}/notes", h.Notes.HandleListNotes)
			r.Post("/notes", h.Notes.HandleCreateNote)
			r.Get("/notes/{id}", h.Notes.HandleGetNote)
			r.Put("/notes/{id}", h.Notes.HandleUpdateNote)
			r.Delete("/notes/{id}", h.Notes.HandleDeleteNote)
		})

		r.Route("/ai", func(r chi.Router) {
			r.Use(mw.RequireAuth)
			if mw.RateLimit != nil {
				r.Use(mw.RateLimit)
			}
			r.Post("/summarize", h.AI.HandleSummarize)
			r.Post("/transcribe", h.AI.HandleTranscribe)
			r.Post("/image-to-notes", h.AI.HandleImageToNotes)
			r.Post("/chat", h.AI.HandleChat)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		_ = utils.WriteNotFound(w, "endpoint not found")
	})

	return r
}
