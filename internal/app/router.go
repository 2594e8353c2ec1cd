package app

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/venuedesk/venuedesk/internal/audit"
	"github.com/venuedesk/venuedesk/internal/observability"
	"github.com/venuedesk/venuedesk/internal/overrides"
	"github.com/venuedesk/venuedesk/internal/permissions"
	"github.com/venuedesk/venuedesk/internal/platform/httpx"
	"github.com/venuedesk/venuedesk/internal/rbac"
	"github.com/venuedesk/venuedesk/internal/roles"
	"github.com/venuedesk/venuedesk/internal/shared"
	"github.com/venuedesk/venuedesk/internal/staff"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger             *slog.Logger
	Config             *Config
	Pool               *pgxpool.Pool
	Redis              *redis.Client
	Metrics            *observability.Metrics
	RBACMiddleware     rbac.Middleware
	PermissionsHandler *permissions.Handler
	RolesHandler       *roles.Handler
	StaffHandler       *staff.Handler
	OverridesHandler   *overrides.Handler
	ResolutionHandler  *rbac.Handler
	AuditHandler       *audit.Handler
}

// NewRouter constructs the chi.Router with VenueDesk defaults.
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

	r.Get("/healthz", healthz(params.Pool, params.Redis))
	r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Use(requireActor)

		r.Route("/permissions", func(r chi.Router) {
			params.PermissionsHandler.MountRoutes(r)
		})

		r.Route("/venues/{venueID}", func(r chi.Router) {
			r.Route("/roles", func(r chi.Router) {
				r.Use(params.RBACMiddleware.RequirePermission("manage_roles"))
				params.RolesHandler.MountRoutes(r)
			})
			r.Route("/staff", func(r chi.Router) {
				r.Use(params.RBACMiddleware.RequireAny("manage_staff", "manage_roles"))
				params.StaffHandler.MountRoutes(r)
			})
			r.Route("/overrides", func(r chi.Router) {
				r.Use(params.RBACMiddleware.RequirePermission("manage_roles"))
				params.OverridesHandler.MountRoutes(r)
			})
			r.Route("/users/{userID}/permissions", func(r chi.Router) {
				params.ResolutionHandler.MountRoutes(r)
			})
			r.Route("/audit", func(r chi.Router) {
				r.Use(params.RBACMiddleware.RequireAny("view_audit_log", "manage_roles"))
				params.AuditHandler.MountRoutes(r)
			})
		})
	})

	return r
}

// requireActor rejects requests that carry no verified identity. The
// upstream proxy authenticates; this only refuses anonymous traffic.
func requireActor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := shared.ActorFromContext(r.Context()); !ok {
			httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "missing actor identity")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func healthz(pool *pgxpool.Pool, redisClient *redis.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		status := map[string]string{"status": "ok", "postgres": "ok", "redis": "ok"}
		code := http.StatusOK
		if pool != nil {
			if err := pool.Ping(ctx); err != nil {
				status["status"] = "degraded"
				status["postgres"] = "unreachable"
				code = http.StatusServiceUnavailable
			}
		}
		if redisClient != nil {
			if err := redisClient.Ping(ctx).Err(); err != nil {
				status["status"] = "degraded"
				status["redis"] = "unreachable"
				code = http.StatusServiceUnavailable
			}
		}
		httpx.JSON(w, code, status)
	}
}
