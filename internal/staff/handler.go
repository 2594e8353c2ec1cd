package staff

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

// Handler serves the staff assignment API for a venue.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New()}
}

// MountRoutes registers staff routes under /venues/{venueID}/staff.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.listMembers)
	r.Route("/{userID}", func(r chi.Router) {
		r.Get("/roles", h.listUserRoles)
		r.Post("/roles", h.assignRole)
		r.Delete("/roles/{roleID}", h.removeRole)
	})
}

func (h *Handler) listMembers(w http.ResponseWriter, r *http.Request) {
	venueID, ok := venueParam(w, r)
	if !ok {
		return
	}
	members, err := h.service.GetUsersWithRoles(r.Context(), venueID)
	if err != nil {
		h.logger.Error("list members failed", slog.Any("error", err), slog.String("venue_id", venueID.String()))
		httpx.RespondError(w, err)
		return
	}
	out := make([]map[string]any, 0, len(members))
	for _, member := range members {
		roleList := make([]map[string]any, 0, len(member.Roles))
		for _, role := range member.Roles {
			roleList = append(roleList, map[string]any{
				"id":    role.ID,
				"name":  role.Name,
				"level": role.Level,
			})
		}
		out = append(out, map[string]any{
			"user_id":     member.UserID,
			"roles":       roleList,
			"permissions": member.Permissions,
		})
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"members": out})
}

func (h *Handler) listUserRoles(w http.ResponseWriter, r *http.Request) {
	venueID, ok := venueParam(w, r)
	if !ok {
		return
	}
	userID, ok := userParam(w, r)
	if !ok {
		return
	}
	assignments, err := h.service.GetUserRoles(r.Context(), venueID, userID)
	if err != nil {
		h.logger.Error("list user roles failed", slog.Any("error", err), slog.String("user_id", userID.String()))
		httpx.RespondError(w, err)
		return
	}
	out := make([]map[string]any, 0, len(assignments))
	for _, item := range assignments {
		out = append(out, map[string]any{
			"assignment_id": item.ID,
			"role_id":       item.Role.ID,
			"role_name":     item.Role.Name,
			"level":         item.Role.Level,
			"assigned_by":   item.AssignedBy,
			"assigned_at":   item.AssignedAt,
			"notes":         item.Notes,
		})
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"assignments": out})
}

type assignRoleRequest struct {
	RoleID int64  `json:"role_id" validate:"required,gt=0"`
	Notes  string `json:"notes" validate:"max=1000"`
}

func (h *Handler) assignRole(w http.ResponseWriter, r *http.Request) {
	venueID, ok := venueParam(w, r)
	if !ok {
		return
	}
	userID, ok := userParam(w, r)
	if !ok {
		return
	}
	actor, ok := shared.ActorFromContext(r.Context())
	if !ok {
		httpx.Problem(w, http.StatusForbidden, "Forbidden", "no authenticated actor")
		return
	}
	var req assignRoleRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	assignment, err := h.service.AssignUserRole(r.Context(), AssignUserRoleInput{
		VenueID: venueID,
		UserID:  userID,
		RoleID:  req.RoleID,
		Notes:   req.Notes,
	}, actor)
	if err != nil {
		h.logger.Error("assign role failed", slog.Any("error", err), slog.String("user_id", userID.String()))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{
		"assignment_id": assignment.ID,
		"role_id":       assignment.RoleID,
		"assigned_at":   assignment.AssignedAt,
	})
}

func (h *Handler) removeRole(w http.ResponseWriter, r *http.Request) {
	venueID, ok := venueParam(w, r)
	if !ok {
		return
	}
	userID, ok := userParam(w, r)
	if !ok {
		return
	}
	roleID, err := strconv.ParseInt(chi.URLParam(r, "roleID"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Role", "role id must be an integer")
		return
	}
	actor, ok := shared.ActorFromContext(r.Context())
	if !ok {
		httpx.Problem(w, http.StatusForbidden, "Forbidden", "no authenticated actor")
		return
	}
	if err := h.service.RemoveUserRole(r.Context(), venueID, userID, roleID, actor); err != nil {
		h.logger.Error("remove role failed", slog.Any("error", err), slog.String("user_id", userID.String()))
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

func userParam(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	userID, err := uuid.Parse(chi.URLParam(r, "userID"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid User", "user id must be a UUID")
		return uuid.Nil, false
	}
	return userID, true
}
