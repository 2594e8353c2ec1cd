package rbac

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/venuedesk/venuedesk/internal/platform/httpx"
)

// Handler serves permission resolution reads for administrative UIs.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers resolution routes under
// /venues/{venueID}/users/{userID}/permissions.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.resolved)
	r.Get("/data", h.data)
	r.Get("/check", h.check)
}

func (h *Handler) resolved(w http.ResponseWriter, r *http.Request) {
	venueID, userID, ok := params(w, r)
	if !ok {
		return
	}
	perms, err := h.service.GetUserPermissions(r.Context(), venueID, userID)
	if err != nil {
		h.logger.Error("resolve permissions failed", slog.Any("error", err), slog.String("user_id", userID.String()))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"permissions": perms})
}

func (h *Handler) data(w http.ResponseWriter, r *http.Request) {
	venueID, userID, ok := params(w, r)
	if !ok {
		return
	}
	data, err := h.service.GetUserPermissionsData(r.Context(), venueID, userID)
	if err != nil {
		h.logger.Error("permissions data failed", slog.Any("error", err), slog.String("user_id", userID.String()))
		httpx.RespondError(w, err)
		return
	}

	roleList := make([]map[string]any, 0, len(data.Roles))
	for _, item := range data.Roles {
		roleList = append(roleList, map[string]any{
			"role_id":     item.Role.ID,
			"role_name":   item.Role.Name,
			"level":       item.Role.Level,
			"assigned_by": item.AssignedBy,
			"assigned_at": item.AssignedAt,
		})
	}
	overrideList := make([]map[string]any, 0, len(data.Overrides))
	for _, item := range data.Overrides {
		entry := map[string]any{
			"permission_name": item.Permission.Name,
			"is_granted":      item.IsGranted,
			"reason":          item.Reason,
		}
		if item.ExpiresAt != nil {
			entry["expires_at"] = item.ExpiresAt.UTC()
		}
		overrideList = append(overrideList, entry)
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"roles":       roleList,
		"overrides":   overrideList,
		"permissions": data.Permissions,
	})
}

// check answers one gating question for the UI. The decision is boolean by
// contract, never an error.
func (h *Handler) check(w http.ResponseWriter, r *http.Request) {
	venueID, userID, ok := params(w, r)
	if !ok {
		return
	}
	name := r.URL.Query().Get("name")
	if name == "" {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "name query parameter is required")
		return
	}
	allowed := h.service.UserHasPermission(r.Context(), venueID, userID, name)
	httpx.JSON(w, http.StatusOK, map[string]any{"permission": name, "allowed": allowed})
}

func params(w http.ResponseWriter, r *http.Request) (uuid.UUID, uuid.UUID, bool) {
	venueID, err := uuid.Parse(chi.URLParam(r, "venueID"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Venue", "venue id must be a UUID")
		return uuid.Nil, uuid.Nil, false
	}
	userID, err := uuid.Parse(chi.URLParam(r, "userID"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid User", "user id must be a UUID")
		return uuid.Nil, uuid.Nil, false
	}
	return venueID, userID, true
}
