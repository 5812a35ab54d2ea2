package rest

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
	"metadata-scanner/interfaces/http/rest/handlers"
	"metadata-scanner/interfaces/http/rest/middleware"
	"metadata-scanner/pkg/common"
	pkgerrors "metadata-scanner/pkg/errors"
	"metadata-scanner/pkg/observability"
)

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// RouterOptions configures optional router behaviour.
type RouterOptions struct {
	CORSOrigins []string
	Debug       bool
}

// Router creates and configures the HTTP router
type Router struct {
	commands  handlers.CommandSender
	queries   handlers.QueryAsker
	readiness Pinger
	metrics   http.Handler
	tracer    *observability.Tracer
	validator middleware.TokenValidator
	opts      RouterOptions
	errors    *pkgerrors.ErrorHandler
	logger    *zap.Logger
}

// NewRouter creates a new router instance. readiness, metrics, tracer and
// validator may be nil.
func NewRouter(
	commands handlers.CommandSender,
	queries handlers.QueryAsker,
	readiness Pinger,
	metrics http.Handler,
	tracer *observability.Tracer,
	validator middleware.TokenValidator,
	opts RouterOptions,
	logger *zap.Logger,
) *Router {
	return &Router{
		commands:  commands,
		queries:   queries,
		readiness: readiness,
		metrics:   metrics,
		tracer:    tracer,
		validator: validator,
		opts:      opts,
		errors:    pkgerrors.NewErrorHandler(logger, opts.Debug),
		logger:    logger,
	}
}

// Setup configures all routes and middleware
func (rt *Router) Setup() http.Handler {
	router := chi.NewRouter()

	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.Logger(rt.logger))
	router.Use(rt.tracer.Middleware)

	if len(rt.opts.CORSOrigins) > 0 {
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins: rt.opts.CORSOrigins,
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
			ExposedHeaders: []string{"X-Request-ID"},
			MaxAge:         300,
		}))
	}

	router.Get("/health", rt.healthCheck)
	router.Get("/ready", rt.readinessCheck)
	if rt.metrics != nil {
		router.Method(http.MethodGet, "/metrics", rt.metrics)
	}

	scanHandler := handlers.NewScanHandler(rt.commands, rt.errors, rt.logger)
	catalogHandler := handlers.NewCatalogHandler(rt.queries, rt.errors, rt.logger)

	router.Route("/api/v1/apps/{appID}", func(r chi.Router) {
		r.Use(middleware.Authenticate(rt.validator, rt.logger))
		r.Post("/scans", scanHandler.StartScan)
		r.Get("/events/{name}", catalogHandler.GetEvent)
		r.Get("/parameters/{category}/{name}/{valueType}", catalogHandler.GetParameter)
		r.Get("/attributes/{category}/{name}/{valueType}", catalogHandler.GetUserAttribute)
	})

	return router
}

func (rt *Router) healthCheck(w http.ResponseWriter, r *http.Request) {
	common.RespondJSON(w, r, http.StatusOK, map[string]string{"status": "healthy"})
}

func (rt *Router) readinessCheck(w http.ResponseWriter, r *http.Request) {
	if rt.readiness != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := rt.readiness.Ping(ctx); err != nil {
			appErr := pkgerrors.NewUnavailableError("warehouse")
			if errors.Is(err, context.DeadlineExceeded) {
				appErr = pkgerrors.NewTimeoutError("warehouse ping")
			}
			rt.errors.Handle(w, r, appErr.WithCause(err))
			return
		}
	}
	common.RespondJSON(w, r, http.StatusOK, map[string]string{"status": "ready"})
}
