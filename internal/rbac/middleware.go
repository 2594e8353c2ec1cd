package rbac

import (
	"net/http"

	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/venuedesk/venuedesk/internal/shared"
)

// Middleware wires RBAC authorization helpers for HTTP handlers. Routes
// using it must carry a {venueID} URL parameter; the actor comes from the
// identity middleware. Resolution failures deny: a broken store must never
// open a gate.
type Middleware struct {
	Service *Service
	Logger  *slog.Logger
}

// RequirePermission ensures the current actor holds the named permission
// in the venue addressed by the route.
func (m Middleware) RequirePermission(permission string) func(http.Handler) http.Handler {
	return m.RequireAny(permission)
}

// RequireAny ensures the current actor holds at least one of the required
// permissions.
func (m Middleware) RequireAny(perms ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(perms) == 0 {
				next.ServeHTTP(w, r)
				return
			}
			venueID, err := uuid.Parse(chi.URLParam(r, "venueID"))
			if err != nil {
				http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
				return
			}
			actor, ok := shared.ActorFromContext(r.Context())
			if !ok {
				http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
				return
			}
			for _, perm := range perms {
				if m.Service.UserHasPermission(r.Context(), venueID, actor, perm) {
					next.ServeHTTP(w, r)
					return
				}
			}
			if m.Logger != nil {
				m.Logger.Warn("request denied",
					slog.String("path", r.URL.Path),
					slog.String("actor_id", actor.String()),
					slog.String("venue_id", venueID.String()))
			}
			http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
		})
	}
}
