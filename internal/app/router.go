package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/filaflow/filaflow/internal/auth"
	"github.com/filaflow/filaflow/internal/clients"
	"github.com/filaflow/filaflow/internal/observability"
	"github.com/filaflow/filaflow/internal/queueinstances"
	"github.com/filaflow/filaflow/internal/queues"
	"github.com/filaflow/filaflow/internal/queueusers"
	"github.com/filaflow/filaflow/internal/unities"
	"github.com/filaflow/filaflow/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger               *slog.Logger
	Config               *Config
	AuthMiddleware       *auth.Middleware
	AuthHandler          *auth.Handler
	ClientHandler        *clients.Handler
	UnityHandler         *unities.Handler
	QueueUserHandler     *queueusers.Handler
	QueueHandler         *queues.Handler
	QueueInstanceHandler *queueinstances.Handler
	JobHandler           *jobs.Handler
	Metrics              *observability.Metrics
}

// NewRouter constructs the chi.Router. Client onboarding, end-user
// registration and login stay public; everything else requires an identity.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/auth", params.AuthHandler.MountRoutes)
	r.Route("/clients", params.ClientHandler.MountRoutes)
	r.Route("/queue-users", params.QueueUserHandler.MountRoutes)

	r.Group(func(r chi.Router) {
		r.Use(params.AuthMiddleware.RequireIdentity)
		r.Route("/unities", params.UnityHandler.MountRoutes)
		r.Route("/queues", params.QueueHandler.MountRoutes)
		r.Route("/queue-instances", params.QueueInstanceHandler.MountRoutes)
	})

	if params.JobHandler != nil {
		r.Route("/jobs", params.JobHandler.MountRoutes)
	}
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	return r
}
