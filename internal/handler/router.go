package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/taskdeck/taskdeck/internal/auth"
	"github.com/taskdeck/taskdeck/internal/config"
	"github.com/taskdeck/taskdeck/internal/metrics"
)

// Router assembles the HTTP API.
type Router struct {
	authHandler *AuthHandler
	taskHandler *TaskHandler
	authMW      func(http.Handler) http.Handler
	rateLimiter *LoginRateLimiter
	metrics     *metrics.Metrics
	cfg         *config.Config
	logger      zerolog.Logger
}

// RouterConfig contains the router's dependencies.
type RouterConfig struct {
	AuthHandler    *AuthHandler
	TaskHandler    *TaskHandler
	AuthMiddleware func(http.Handler) http.Handler
	RateLimiter    *LoginRateLimiter
	Metrics        *metrics.Metrics
	Config         *config.Config
	Logger         zerolog.Logger
}

// NewRouter creates a new Router.
func NewRouter(rc RouterConfig) *Router {
	return &Router{
		authHandler: rc.AuthHandler,
		taskHandler: rc.TaskHandler,
		authMW:      rc.AuthMiddleware,
		rateLimiter: rc.RateLimiter,
		metrics:     rc.Metrics,
		cfg:         rc.Config,
		logger:      rc.Logger.With().Str("component", "router").Logger(),
	}
}

// Handler returns the main HTTP handler.
func (rt *Router) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(RequestID)
	r.Use(RequestLogger(rt.logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(CORS(rt.cfg.CORS.AllowedOrigins))
	if rt.metrics != nil {
		r.Use(rt.metrics.Middleware)
	}

	// Service metadata and health (no auth)
	r.Get("/", rt.handleRoot)
	r.Get("/health", rt.handleHealth)
	if rt.metrics != nil && rt.cfg.Metrics.Enabled {
		r.Handle(rt.cfg.Metrics.Path, rt.metrics.Handler())
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			if rt.rateLimiter != nil {
				r.With(rt.rateLimiter.Middleware).Post("/login", rt.authHandler.Login)
			} else {
				r.Post("/login", rt.authHandler.Login)
			}
			r.Post("/register", rt.authHandler.Register)

			// Creating admins requires an existing admin.
			r.With(rt.authMW, auth.RequireAdmin()).Post("/register-admin", rt.authHandler.RegisterAdmin)
		})

		r.Route("/tasks", func(r chi.Router) {
			r.Use(rt.authMW)
			r.Get("/", rt.taskHandler.List)
			r.Post("/", rt.taskHandler.Create)
			r.Get("/{id}", rt.taskHandler.Get)
			r.Put("/{id}", rt.taskHandler.Update)
			r.Delete("/{id}", rt.taskHandler.Delete)
		})
	})

	return r
}

// handleRoot returns service metadata.
func (rt *Router) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Welcome to " + rt.cfg.App.Name,
		"version": rt.cfg.App.Version,
	})
}

// handleHealth returns service health.
func (rt *Router) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"version": rt.cfg.App.Version,
	})
}
