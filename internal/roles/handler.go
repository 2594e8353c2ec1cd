package roles

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/venuedesk/venuedesk/internal/platform/httpx"
	"github.com/venuedesk/venuedesk/internal/shared"
)

// Handler serves the role management API for a venue.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New()}
}

// MountRoutes registers role routes under /venues/{venueID}/roles.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Post("/defaults", h.createDefaults)
	r.Route("/{roleID}", func(r chi.Router) {
		r.Get("/", h.show)
		r.Patch("/", h.update)
		r.Delete("/", h.remove)
		r.Post("/permissions", h.assignPermissions)
		r.Delete("/permissions", h.removePermissions)
	})
}

type roleResponse struct {
	ID          int64     `json:"id"`
	VenueID     uuid.UUID `json:"venue_id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Level       int       `json:"level"`
	IsActive    bool      `json:"is_active"`
}

func toRoleResponse(role Role) roleResponse {
	return roleResponse{
		ID:          role.ID,
		VenueID:     role.VenueID,
		Name:        role.Name,
		Description: role.Description,
		Level:       role.Level,
		IsActive:    role.IsActive,
	}
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	venueID, ok := venueParam(w, r)
	if !ok {
		return
	}
	list, err := h.service.ListRoles(r.Context(), venueID)
	if err != nil {
		h.logger.Error("list roles failed", slog.Any("error", err), slog.String("venue_id", venueID.String()))
		httpx.RespondError(w, err)
		return
	}
	out := make([]roleResponse, 0, len(list))
	for _, role := range list {
		out = append(out, toRoleResponse(role))
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"roles": out})
}

type createRoleRequest struct {
	Name        string `json:"name" validate:"required,min=2,max=100"`
	Description string `json:"description" validate:"max=500"`
	Level       int    `json:"level" validate:"min=0,max=1000"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	venueID, ok := venueParam(w, r)
	if !ok {
		return
	}
	actor, ok := actorOrForbidden(w, r)
	if !ok {
		return
	}
	var req createRoleRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	role, err := h.service.CreateRole(r.Context(), CreateRoleInput{
		VenueID:     venueID,
		Name:        req.Name,
		Description: req.Description,
		Level:       req.Level,
		CreatedBy:   actor,
	})
	if err != nil {
		h.logger.Error("create role failed", slog.Any("error", err), slog.String("venue_id", venueID.String()))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toRoleResponse(role))
}

func (h *Handler) createDefaults(w http.ResponseWriter, r *http.Request) {
	venueID, ok := venueParam(w, r)
	if !ok {
		return
	}
	actor, ok := actorOrForbidden(w, r)
	if !ok {
		return
	}
	created, err := h.service.CreateDefaultRoles(r.Context(), venueID, actor)
	if err != nil {
		h.logger.Error("seed default roles failed", slog.Any("error", err), slog.String("venue_id", venueID.String()))
		httpx.RespondError(w, err)
		return
	}
	out := make([]roleResponse, 0, len(created))
	for _, role := range created {
		out = append(out, toRoleResponse(role))
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{"roles": out})
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	roleID, ok := roleParam(w, r)
	if !ok {
		return
	}
	role, err := h.service.GetRoleWithPermissions(r.Context(), roleID)
	if err != nil {
		h.logger.Error("get role failed", slog.Any("error", err), slog.Int64("role_id", roleID))
		httpx.RespondError(w, err)
		return
	}
	perms := make([]map[string]any, 0, len(role.Permissions))
	for _, perm := range role.Permissions {
		perms = append(perms, map[string]any{
			"id":       perm.ID,
			"name":     perm.Name,
			"category": perm.Category,
		})
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"role":        toRoleResponse(role.Role),
		"permissions": perms,
	})
}

type updateRoleRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=2,max=100"`
	Description *string `json:"description" validate:"omitempty,max=500"`
	Level       *int    `json:"level" validate:"omitempty,min=0,max=1000"`
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	roleID, ok := roleParam(w, r)
	if !ok {
		return
	}
	var req updateRoleRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	role, err := h.service.UpdateRole(r.Context(), roleID, RolePatch{
		Name:        req.Name,
		Description: req.Description,
		Level:       req.Level,
	})
	if err != nil {
		h.logger.Error("update role failed", slog.Any("error", err), slog.Int64("role_id", roleID))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toRoleResponse(role))
}

func (h *Handler) remove(w http.ResponseWriter, r *http.Request) {
	roleID, ok := roleParam(w, r)
	if !ok {
		return
	}
	if err := h.service.DeleteRole(r.Context(), roleID); err != nil {
		h.logger.Error("delete role failed", slog.Any("error", err), slog.Int64("role_id", roleID))
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type bindingRequest struct {
	PermissionIDs []int64 `json:"permission_ids" validate:"required,min=1,dive,gt=0"`
}

func (h *Handler) assignPermissions(w http.ResponseWriter, r *http.Request) {
	roleID, ok := roleParam(w, r)
	if !ok {
		return
	}
	actor, ok := actorOrForbidden(w, r)
	if !ok {
		return
	}
	var req bindingRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	if err := h.service.AssignPermissionsToRole(r.Context(), roleID, req.PermissionIDs, actor); err != nil {
		h.logger.Error("assign permissions failed", slog.Any("error", err), slog.Int64("role_id", roleID))
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) removePermissions(w http.ResponseWriter, r *http.Request) {
	roleID, ok := roleParam(w, r)
	if !ok {
		return
	}
	actor, ok := actorOrForbidden(w, r)
	if !ok {
		return
	}
	var req bindingRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	if err := h.service.RemovePermissionsFromRole(r.Context(), roleID, req.PermissionIDs, actor); err != nil {
		h.logger.Error("remove permissions failed", slog.Any("error", err), slog.Int64("role_id", roleID))
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func venueParam(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	venueID, err := uuid.Parse(chi.URLParam(r, "venueID"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Venue", "venue id must be a UUID")
		return uuid.Nil, false
	}
	return venueID, true
}

func roleParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	roleID, err := strconv.ParseInt(chi.URLParam(r, "roleID"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Role", "role id must be an integer")
		return 0, false
	}
	return roleID, true
}

func actorOrForbidden(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	actor, ok := shared.ActorFromContext(r.Context())
	if !ok {
		httpx.Problem(w, http.StatusForbidden, "Forbidden", "no authenticated actor")
		return uuid.Nil, false
	}
	return actor, true
}
