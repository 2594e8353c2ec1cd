package rbac

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/venuedesk/venuedesk/internal/shared"
)

func middlewareRouter(svc *Service, actor uuid.UUID, withActor bool) http.Handler {
	mw := Middleware{Service: svc, Logger: slog.Default()}
	r := chi.NewRouter()
	if withActor {
		r.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
				next.ServeHTTP(w, req.WithContext(shared.ContextWithActor(req.Context(), actor)))
			})
		})
	}
	r.Route("/venues/{venueID}", func(r chi.Router) {
		r.With(mw.RequirePermission("manage_roles")).Get("/roles", func(w http.ResponseWriter, req *http.Request) {
			w.WriteHeader(http.StatusOK)
		})
	})
	return r
}

func TestMiddlewareAllowsPermittedActor(t *testing.T) {
	repo := newMemoryResolverRepo()
	repo.addRole(1, "manage_roles")
	venueID, actor := uuid.New(), uuid.New()
	repo.assign(venueID, actor, 1)
	svc, _ := newResolver(repo)

	router := middlewareRouter(svc, actor, true)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/venues/"+venueID.String()+"/roles", nil))

	require.Equal(t, http.StatusOK, rec.Code)
}

func TestMiddlewareDeniesMissingPermission(t *testing.T) {
	repo := newMemoryResolverRepo()
	venueID, actor := uuid.New(), uuid.New()
	svc, _ := newResolver(repo)

	router := middlewareRouter(svc, actor, true)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/venues/"+venueID.String()+"/roles", nil))

	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestMiddlewareDeniesAnonymous(t *testing.T) {
	repo := newMemoryResolverRepo()
	repo.addRole(1, "manage_roles")
	venueID := uuid.New()
	svc, _ := newResolver(repo)

	router := middlewareRouter(svc, uuid.Nil, false)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/venues/"+venueID.String()+"/roles", nil))

	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestMiddlewareFailsClosedOnStoreError(t *testing.T) {
	repo := newMemoryResolverRepo()
	repo.addRole(1, "manage_roles")
	venueID, actor := uuid.New(), uuid.New()
	repo.assign(venueID, actor, 1)
	repo.failing = true
	svc, _ := newResolver(repo)

	router := middlewareRouter(svc, actor, true)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/venues/"+venueID.String()+"/roles", nil))

	require.Equal(t, http.StatusForbidden, rec.Code)
}
