package overrides

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/venuedesk/venuedesk/internal/platform/httpx"
	"github.com/venuedesk/venuedesk/internal/shared"
)

// Handler serves the permission override API for a venue.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New()}
}

// MountRoutes registers override routes under /venues/{venueID}/overrides.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/users/{userID}", func(r chi.Router) {
		r.Get("/", h.list)
		r.Put("/", h.grant)
		r.Delete("/{permissionID}", h.remove)
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	venueID, userID, ok := params(w, r)
	if !ok {
		return
	}
	items, err := h.service.GetUserPermissionOverrides(r.Context(), venueID, userID)
	if err != nil {
		h.logger.Error("list overrides failed", slog.Any("error", err), slog.String("user_id", userID.String()))
		httpx.RespondError(w, err)
		return
	}
	out := make([]map[string]any, 0, len(items))
	for _, item := range items {
		entry := map[string]any{
			"permission_id":   item.PermissionID,
			"permission_name": item.Permission.Name,
			"is_granted":      item.IsGranted,
			"reason":          item.Reason,
			"granted_by":      item.GrantedBy,
		}
		if item.ExpiresAt != nil {
			entry["expires_at"] = item.ExpiresAt.UTC()
		}
		out = append(out, entry)
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"overrides": out})
}

type grantOverrideRequest struct {
	PermissionID int64      `json:"permission_id" validate:"required,gt=0"`
	IsGranted    *bool      `json:"is_granted" validate:"required"`
	Reason       string     `json:"reason" validate:"max=1000"`
	ExpiresAt    *time.Time `json:"expires_at"`
}

func (h *Handler) grant(w http.ResponseWriter, r *http.Request) {
	venueID, userID, ok := params(w, r)
	if !ok {
		return
	}
	actor, ok := shared.ActorFromContext(r.Context())
	if !ok {
		httpx.Problem(w, http.StatusForbidden, "Forbidden", "no authenticated actor")
		return
	}
	var req grantOverrideRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	override, err := h.service.GrantPermissionOverride(r.Context(), GrantOverrideInput{
		VenueID:      venueID,
		UserID:       userID,
		PermissionID: req.PermissionID,
		IsGranted:    *req.IsGranted,
		Reason:       req.Reason,
		ExpiresAt:    req.ExpiresAt,
	}, actor)
	if err != nil {
		h.logger.Error("grant override failed", slog.Any("error", err), slog.String("user_id", userID.String()))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"id":         override.ID,
		"is_granted": override.IsGranted,
		"updated_at": override.UpdatedAt,
	})
}

func (h *Handler) remove(w http.ResponseWriter, r *http.Request) {
	venueID, userID, ok := params(w, r)
	if !ok {
		return
	}
	permissionID, err := strconv.ParseInt(chi.URLParam(r, "permissionID"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Permission", "permission id must be an integer")
		return
	}
	actor, ok := shared.ActorFromContext(r.Context())
	if !ok {
		httpx.Problem(w, http.StatusForbidden, "Forbidden", "no authenticated actor")
		return
	}
	if err := h.service.RemovePermissionOverride(r.Context(), venueID, userID, permissionID, actor); err != nil {
		h.logger.Error("remove override failed", slog.Any("error", err), slog.String("user_id", userID.String()))
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
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
